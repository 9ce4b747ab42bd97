package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medvault/internal/model"
	"medvault/internal/service"
)

type MockPatientService struct {
	mock.Mock
}

func (m *MockPatientService) ListPatients(ctx context.Context, search string) ([]model.User, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockPatientService) PatientDetail(ctx context.Context, patientID, docType string) (*service.PatientDetail, error) {
	args := m.Called(ctx, patientID, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PatientDetail), args.Error(1)
}

func (m *MockPatientService) PatientDocument(ctx context.Context, patientID, documentID string) (*model.Document, error) {
	args := m.Called(ctx, patientID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockPatientService) Dashboard(ctx context.Context) (*service.DoctorDashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DoctorDashboard), args.Error(1)
}
