package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"medvault/internal/model"
	"medvault/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, caller service.Caller, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, caller service.Caller, q service.ListQuery) ([]model.Document, error) {
	args := m.Called(ctx, caller, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, caller service.Caller, id string) (*model.Document, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, caller service.Caller, id string) (*model.Document, io.ReadCloser, error) {
	args := m.Called(ctx, caller, id)
	var doc *model.Document
	if args.Get(0) != nil {
		doc = args.Get(0).(*model.Document)
	}
	var rc io.ReadCloser
	if args.Get(1) != nil {
		rc = args.Get(1).(io.ReadCloser)
	}
	return doc, rc, args.Error(2)
}

func (m *MockDocumentService) Delete(ctx context.Context, caller service.Caller, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockDocumentService) Dashboard(ctx context.Context, caller service.Caller) (*service.PatientDashboard, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PatientDashboard), args.Error(1)
}
