package repository

import (
	"context"
	"time"

	"medvault/internal/model"
)

// DocumentFilter is the single reusable filter specification for document
// queries. Dimensions compose with logical AND; the free-text Search matches
// case-insensitive substrings of title, tags, and description, OR-combined.
// Zero values mean "dimension not applied".
type DocumentFilter struct {
	// OwnerID scopes the query to one patient's documents. Empty means all
	// owners (doctor-scope queries only; callers enforce that).
	OwnerID string
	// Search is a case-insensitive substring matched against title OR tags
	// OR description.
	Search string
	// DocType is an exact category match.
	DocType model.DocumentType
	// DateFrom / DateTo bound uploaded_at inclusively by date.
	DateFrom *time.Time
	DateTo   *time.Time
	// Limit caps the result set when > 0 (dashboards show recent uploads).
	Limit int
}

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns documents matching the filter, newest first.
	List(ctx context.Context, f DocumentFilter) ([]model.Document, error)

	// Count returns the number of documents matching the filter, ignoring Limit.
	Count(ctx context.Context, f DocumentFilter) (int, error)

	// Delete removes a document by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
