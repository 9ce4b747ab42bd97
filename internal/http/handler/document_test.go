package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medvault/internal/model"
	"medvault/internal/service"
	serviceMocks "medvault/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "results.pdf")
	require.NoError(t, err)
	part.Write([]byte("hello world"))
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/upload/", withCaller(callerPatient), UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartUpload(t, map[string]string{
			"title":    "Blood Test",
			"doc_type": "lab_report",
			"tags":     "blood",
		})

		expectedDoc := &model.Document{ID: uuid.New().String(), Filename: "results.pdf"}
		mockSvc.On("Upload", mock.Anything, callerPatient, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Filename == "results.pdf" &&
				in.Title == "Blood Test" &&
				in.DocType == "lab_report" &&
				in.Tags == "blood"
		})).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/upload/", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expectedDoc.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("browser upload redirects to the dashboard", func(t *testing.T) {
		body, contentType := multipartUpload(t, map[string]string{
			"title": "Blood Test", "doc_type": "lab_report",
		})

		mockSvc.On("Upload", mock.Anything, callerPatient, mock.Anything).
			Return(&model.Document{ID: "doc-1"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/upload/", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "text/html")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/accounts/patient-dashboard/", resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/upload/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("service validation error", func(t *testing.T) {
		body, contentType := multipartUpload(t, nil)

		mockSvc.On("Upload", mock.Anything, callerPatient, mock.Anything).
			Return(nil, service.ErrValidation).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/upload/", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/", withCaller(callerPatient), ListDocuments(mockSvc))

	t.Run("success with filters", func(t *testing.T) {
		expected := []model.Document{{ID: "doc-1", Title: "Blood Test"}}
		mockSvc.On("List", mock.Anything, callerPatient, service.ListQuery{
			Search:   "blood",
			DocType:  "lab_report",
			DateFrom: "2026-01-01",
			DateTo:   "2026-06-30",
		}).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/documents/?search=blood&doc_type=lab_report&date_from=2026-01-01&date_to=2026-06-30", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Documents []model.Document `json:"documents"`
			Total     int              `json:"total"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Documents, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid filter", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, callerPatient, mock.Anything).
			Return(nil, service.ErrValidation).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/?doc_type=selfie", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, callerPatient, mock.Anything).
			Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/", withCaller(callerPatient), GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, callerPatient, id).
			Return(&model.Document{ID: id, Title: "Blood Test"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, callerPatient, id).
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download/", withCaller(callerPatient), DownloadDocument(mockSvc))

	t.Run("attachment headers and body", func(t *testing.T) {
		doc := &model.Document{ID: "doc-1", Filename: "results.pdf", Size: 7}
		mockSvc.On("Download", mock.Anything, callerPatient, "doc-1").
			Return(doc, io.NopCloser(strings.NewReader("content")), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/doc-1/download/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="results.pdf"`, resp.Header.Get("Content-Disposition"))

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "content", string(body))
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing blob", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, callerPatient, "doc-1").
			Return(nil, nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/doc-1/download/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/:id/delete/", withCaller(callerPatient), DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, callerPatient, "doc-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/delete/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("browser delete redirects back to the list", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, callerPatient, "doc-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/delete/", nil)
		req.Header.Set("Accept", "text/html")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/documents/", resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not owned", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, callerPatient, "doc-9").
			Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/doc-9/delete/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestPatientDashboard(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/accounts/patient-dashboard/", withCaller(callerPatient), PatientDashboard(mockSvc))

	mockSvc.On("Dashboard", mock.Anything, callerPatient).
		Return(&service.PatientDashboard{
			Documents:      []model.Document{{ID: "doc-1"}},
			TotalDocuments: 9,
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/accounts/patient-dashboard/", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var dash service.PatientDashboard
	json.NewDecoder(resp.Body).Decode(&dash)
	assert.Equal(t, 9, dash.TotalDocuments)
	assert.Len(t, dash.Documents, 1)
	mockSvc.AssertExpectations(t)
}
