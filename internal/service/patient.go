package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"medvault/internal/model"
	"medvault/internal/repository"
)

// PatientDetail is the doctor-side view of one patient: the account plus
// their documents, optionally narrowed by category.
type PatientDetail struct {
	Patient        model.User       `json:"patient"`
	Documents      []model.Document `json:"documents"`
	TotalDocuments int              `json:"total_documents"`
}

// DoctorDashboard is the doctor dashboard payload: portal-wide counts and
// the most recent uploads across all patients.
type DoctorDashboard struct {
	TotalPatients   int              `json:"total_patients"`
	TotalDocuments  int              `json:"total_documents"`
	RecentDocuments []model.Document `json:"recent_documents"`
}

// PatientService defines the doctor-only patient browsing use cases.
// Every operation runs behind the doctor gate; none of them consult
// document ownership because doctors read everything.
type PatientService interface {
	// ListPatients returns all patient accounts, optionally filtered by a
	// case-insensitive substring over first name, last name, or email.
	ListPatients(ctx context.Context, search string) ([]model.User, error)

	// PatientDetail resolves a patient id and returns their documents.
	// Ids of doctors or unknown accounts report ErrNotFound alike.
	PatientDetail(ctx context.Context, patientID, docType string) (*PatientDetail, error)

	// PatientDocument returns one document only if it belongs to that
	// specific patient.
	PatientDocument(ctx context.Context, patientID, documentID string) (*model.Document, error)

	// Dashboard returns the doctor dashboard overview.
	Dashboard(ctx context.Context) (*DoctorDashboard, error)
}

type patientService struct {
	users repository.UserRepository
	docs  repository.DocumentRepository
}

// NewPatientService constructs a new PatientService.
func NewPatientService(users repository.UserRepository, docs repository.DocumentRepository) PatientService {
	return &patientService{users: users, docs: docs}
}

func (s *patientService) ListPatients(ctx context.Context, search string) ([]model.User, error) {
	return s.users.ListPatients(ctx, repository.PatientFilter{Search: strings.TrimSpace(search)})
}

func (s *patientService) PatientDetail(ctx context.Context, patientID, docType string) (*PatientDetail, error) {
	if patientID == "" {
		return nil, ErrNotFound
	}
	patient, err := s.users.FindPatientByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	f := repository.DocumentFilter{OwnerID: patient.ID}
	if docType != "" {
		dt, err := model.ParseDocumentType(docType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		f.DocType = dt
	}

	docs, err := s.docs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &PatientDetail{
		Patient:        *patient,
		Documents:      docs,
		TotalDocuments: len(docs),
	}, nil
}

func (s *patientService) PatientDocument(ctx context.Context, patientID, documentID string) (*model.Document, error) {
	if patientID == "" || documentID == "" {
		return nil, ErrNotFound
	}
	patient, err := s.users.FindPatientByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.OwnerID != patient.ID {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *patientService) Dashboard(ctx context.Context) (*DoctorDashboard, error) {
	patients, err := s.users.CountPatients(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.Count(ctx, repository.DocumentFilter{})
	if err != nil {
		return nil, err
	}
	recent, err := s.docs.List(ctx, repository.DocumentFilter{Limit: dashboardRecentLimit})
	if err != nil {
		return nil, err
	}
	return &DoctorDashboard{
		TotalPatients:   patients,
		TotalDocuments:  docs,
		RecentDocuments: recent,
	}, nil
}
