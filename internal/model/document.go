package model

import (
	"fmt"
	"time"
)

// DocumentType is the fixed set of document categories a patient can file
// an upload under.
type DocumentType string

const (
	DocTypeLabReport    DocumentType = "lab_report"
	DocTypePrescription DocumentType = "prescription"
	DocTypeImaging      DocumentType = "imaging"
	DocTypeInsurance    DocumentType = "insurance"
	DocTypeVaccination  DocumentType = "vaccination"
	DocTypeOther        DocumentType = "other"
)

// DocumentTypes lists every valid category, in form-display order.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeLabReport,
		DocTypePrescription,
		DocTypeImaging,
		DocTypeInsurance,
		DocTypeVaccination,
		DocTypeOther,
	}
}

// ParseDocumentType validates a raw doc type string against the closed set.
func ParseDocumentType(s string) (DocumentType, error) {
	for _, dt := range DocumentTypes() {
		if DocumentType(s) == dt {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Document represents a stored medical document owned by a patient.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	DocType     DocumentType `json:"doc_type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        string       `json:"tags"`
	Filename    string       `json:"filename"`
	StoragePath string       `json:"storage_path"`
	Size        int64        `json:"size"`
	ContentType string       `json:"content_type"`
	UploadedAt  time.Time    `json:"uploaded_at"`
}
