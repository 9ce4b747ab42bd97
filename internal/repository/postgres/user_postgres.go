package postgres

import (
	"context"
	"database/sql"

	"medvault/internal/model"
	"medvault/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = "id, email, first_name, last_name, password_hash, role, created_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	q := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		u.Role,
		u.CreatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a single user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// FindPatientByID fetches a user only when the id belongs to a patient.
// A doctor id falls through to sql.ErrNoRows so callers cannot tell a
// non-patient apart from a missing account.
func (r *UserPostgres) FindPatientByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND role = $2`
	return scanUser(r.db.QueryRowContext(ctx, q, id, model.RolePatient))
}

// ListPatients returns role=patient users matching the filter.
func (r *UserPostgres) ListPatients(ctx context.Context, f repository.PatientFilter) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE role = $1`
	args := []any{model.RolePatient}

	if f.Search != "" {
		q += ` AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)`
		args = append(args, "%"+f.Search+"%")
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountPatients returns the number of role=patient users.
func (r *UserPostgres) CountPatients(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE role = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, q, model.RolePatient).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
