package repository

import (
	"context"

	"medvault/internal/model"
)

// PatientFilter is the named filter specification for doctor-side patient
// queries. Search matches case-insensitive substrings of first name, last
// name, or email, OR-combined.
type PatientFilter struct {
	Search string
}

// UserRepository defines data access for user accounts.
// Roles are written once at creation; there is deliberately no update path
// that can change a stored role.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID, or sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email, or sql.ErrNoRows if absent.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindPatientByID returns the user only if the id resolves to a
	// role=patient account; any other id yields sql.ErrNoRows.
	FindPatientByID(ctx context.Context, id string) (*model.User, error)

	// ListPatients returns all role=patient users matching the filter,
	// ordered by creation time.
	ListPatients(ctx context.Context, f PatientFilter) ([]model.User, error)

	// CountPatients returns the number of role=patient users.
	CountPatients(ctx context.Context) (int, error)
}
