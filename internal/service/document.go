package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"medvault/internal/model"
	"medvault/internal/repository"
	"medvault/internal/storage"
)

var (
	// ErrNotFound covers both a genuinely missing document and one the
	// caller is not allowed to see. The two cases are deliberately
	// indistinguishable so existence is never leaked.
	ErrNotFound = errors.New("document not found")

	// ErrValidation marks bad form input; wrap it with a detail message.
	ErrValidation = errors.New("validation error")
)

// Caller identifies the authenticated user an operation runs on behalf of.
// Every document operation re-derives its visibility rule from the role.
type Caller struct {
	UserID string
	Role   model.Role
}

// UploadInput is the multipart form payload for a document upload.
type UploadInput struct {
	File        io.Reader
	Filename    string
	ContentType string
	Size        int64
	Title       string
	Description string
	Tags        string
	DocType     string
}

// ListQuery carries the raw document list filters as received from the
// query string. The service validates and converts them.
type ListQuery struct {
	Search   string
	DocType  string
	DateFrom string // inclusive lower bound, YYYY-MM-DD
	DateTo   string // inclusive upper bound, YYYY-MM-DD
}

// PatientDashboard is the patient dashboard payload: the most recent
// uploads plus the total count.
type PatientDashboard struct {
	Documents      []model.Document `json:"documents"`
	TotalDocuments int              `json:"total_documents"`
}

// DocumentService defines the role-aware document use cases.
type DocumentService interface {
	// Upload persists the blob then the record, owned by the caller.
	// The route gate guarantees the caller is a patient.
	Upload(ctx context.Context, caller Caller, in UploadInput) (*model.Document, error)

	// List returns documents visible to the caller: a patient's own, or all
	// documents for a doctor. Filters compose with AND across dimensions.
	List(ctx context.Context, caller Caller, q ListQuery) ([]model.Document, error)

	// Get returns a single document if the caller may see it.
	Get(ctx context.Context, caller Caller, id string) (*model.Document, error)

	// Download returns the document plus a streaming reader over its blob.
	// A record whose blob is missing from storage reports ErrNotFound.
	Download(ctx context.Context, caller Caller, id string) (*model.Document, io.ReadCloser, error)

	// Delete removes the caller's own document. Blob removal is best-effort;
	// the record is deleted regardless.
	Delete(ctx context.Context, caller Caller, id string) error

	// Dashboard returns the caller's recent uploads and total count.
	Dashboard(ctx context.Context, caller Caller) (*PatientDashboard, error)
}

const dashboardRecentLimit = 5

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository) DocumentService {
	return &documentService{store: store, repo: repo}
}

func (s *documentService) Upload(ctx context.Context, caller Caller, in UploadInput) (*model.Document, error) {
	if in.File == nil || in.Filename == "" {
		return nil, fmt.Errorf("%w: file is required", ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	docType, err := model.ParseDocumentType(in.DocType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Blob key is internally generated; the original filename survives only
	// as record metadata for download naming.
	ext := filepath.Ext(in.Filename)
	key := filepath.ToSlash(filepath.Join("documents", uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, in.File, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		OwnerID:     caller.UserID,
		DocType:     docType,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Tags:        strings.TrimSpace(in.Tags),
		Filename:    filepath.Base(in.Filename),
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the blob so a failed insert leaves no orphan.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// filterFor converts a raw ListQuery into a repository filter scoped to the
// caller's visibility.
func (s *documentService) filterFor(caller Caller, q ListQuery) (repository.DocumentFilter, error) {
	f := repository.DocumentFilter{Search: strings.TrimSpace(q.Search)}

	if !caller.Role.SeesAllDocuments() {
		f.OwnerID = caller.UserID
	}
	if q.DocType != "" {
		dt, err := model.ParseDocumentType(q.DocType)
		if err != nil {
			return f, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		f.DocType = dt
	}
	if q.DateFrom != "" {
		from, err := time.Parse("2006-01-02", q.DateFrom)
		if err != nil {
			return f, fmt.Errorf("%w: invalid date_from", ErrValidation)
		}
		f.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := time.Parse("2006-01-02", q.DateTo)
		if err != nil {
			return f, fmt.Errorf("%w: invalid date_to", ErrValidation)
		}
		f.DateTo = &to
	}
	return f, nil
}

func (s *documentService) List(ctx context.Context, caller Caller, q ListQuery) ([]model.Document, error) {
	f, err := s.filterFor(caller, q)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, f)
}

// visibleTo fetches a document and applies the role visibility rule:
// owner always, any doctor always, any other patient never.
func (s *documentService) visibleTo(ctx context.Context, caller Caller, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !caller.Role.SeesAllDocuments() && doc.OwnerID != caller.UserID {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, caller Caller, id string) (*model.Document, error) {
	return s.visibleTo(ctx, caller, id)
}

func (s *documentService) Download(ctx context.Context, caller Caller, id string) (*model.Document, io.ReadCloser, error) {
	doc, err := s.visibleTo(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			// Record exists but the blob is gone; hide the dangling record.
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("read storage: %w", err)
	}
	return doc, rc, nil
}

func (s *documentService) Delete(ctx context.Context, caller Caller, id string) error {
	if id == "" {
		return ErrNotFound
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete is owner-only regardless of role; doctors have read rights.
	if doc.OwnerID != caller.UserID {
		return ErrNotFound
	}
	// Best-effort blob removal: the record goes away even if the blob
	// cannot be removed right now.
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		log.Printf("delete blob %s: %v", doc.StoragePath, err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *documentService) Dashboard(ctx context.Context, caller Caller) (*PatientDashboard, error) {
	scope := repository.DocumentFilter{OwnerID: caller.UserID}

	total, err := s.repo.Count(ctx, scope)
	if err != nil {
		return nil, err
	}
	scope.Limit = dashboardRecentLimit
	recent, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &PatientDashboard{Documents: recent, TotalDocuments: total}, nil
}
