package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"medvault/internal/model"
	"medvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = "id, owner_id, doc_type, title, description, tags, filename, storage_path, size, content_type, uploaded_at"

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.DocType,
		&d.Title,
		&d.Description,
		&d.Tags,
		&d.Filename,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&d.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// buildDocumentWhere translates a DocumentFilter into a WHERE clause.
// All filter dimensions AND together; the free-text search ORs across
// title, tags, and description with case-insensitive substring match.
func buildDocumentWhere(f repository.DocumentFilter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OwnerID != "" {
		conds = append(conds, "owner_id = "+arg(f.OwnerID))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR tags ILIKE %s OR description ILIKE %s)", p, p, p))
	}
	if f.DocType != "" {
		conds = append(conds, "doc_type = "+arg(string(f.DocType)))
	}
	if f.DateFrom != nil {
		conds = append(conds, "uploaded_at::date >= "+arg(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "uploaded_at::date <= "+arg(*f.DateTo))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	q := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.OwnerID,
		doc.DocType,
		doc.Title,
		doc.Description,
		doc.Tags,
		doc.Filename,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		doc.UploadedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents matching the filter, newest first.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter) ([]model.Document, error) {
	where, args := buildDocumentWhere(f)
	q := `SELECT ` + documentColumns + ` FROM documents` + where + ` ORDER BY uploaded_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the number of documents matching the filter, ignoring Limit.
func (r *DocumentPostgres) Count(ctx context.Context, f repository.DocumentFilter) (int, error) {
	f.Limit = 0
	where, args := buildDocumentWhere(f)
	q := `SELECT COUNT(*) FROM documents` + where

	var total int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
