package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medvault/internal/model"
	"medvault/internal/service"
	serviceMocks "medvault/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListPatients(t *testing.T) {
	mockSvc := new(serviceMocks.MockPatientService)
	app := fiber.New()
	app.Get("/accounts/patients/", withCaller(callerDoctor), ListPatients(mockSvc))

	mockSvc.On("ListPatients", mock.Anything, "ngu").
		Return([]model.User{{ID: "patient-a", LastName: "Nguyen"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/accounts/patients/?search=ngu", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Patients []model.User `json:"patients"`
		Total    int          `json:"total"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Len(t, result.Patients, 1)
	assert.Equal(t, 1, result.Total)
	mockSvc.AssertExpectations(t)
}

func TestPatientDetail(t *testing.T) {
	mockSvc := new(serviceMocks.MockPatientService)
	app := fiber.New()
	app.Get("/accounts/patients/:patient_id/", withCaller(callerDoctor), PatientDetail(mockSvc))

	t.Run("success with doc_type filter", func(t *testing.T) {
		mockSvc.On("PatientDetail", mock.Anything, "patient-a", "lab_report").
			Return(&service.PatientDetail{
				Patient:        model.User{ID: "patient-a"},
				Documents:      []model.Document{{ID: "doc-1"}},
				TotalDocuments: 1,
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/accounts/patients/patient-a/?doc_type=lab_report", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var detail service.PatientDetail
		json.NewDecoder(resp.Body).Decode(&detail)
		assert.Equal(t, "patient-a", detail.Patient.ID)
		assert.Equal(t, 1, detail.TotalDocuments)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown patient", func(t *testing.T) {
		mockSvc.On("PatientDetail", mock.Anything, "ghost", "").
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/accounts/patients/ghost/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestPatientDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockPatientService)
	app := fiber.New()
	app.Get("/accounts/patients/:patient_id/documents/:document_id/", withCaller(callerDoctor), PatientDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("PatientDocument", mock.Anything, "patient-a", "doc-1").
			Return(&model.Document{ID: "doc-1", OwnerID: "patient-a"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/accounts/patients/patient-a/documents/doc-1/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var doc model.Document
		json.NewDecoder(resp.Body).Decode(&doc)
		assert.Equal(t, "doc-1", doc.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("document of another patient", func(t *testing.T) {
		mockSvc.On("PatientDocument", mock.Anything, "patient-a", "doc-9").
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/accounts/patients/patient-a/documents/doc-9/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDoctorDashboard(t *testing.T) {
	mockSvc := new(serviceMocks.MockPatientService)
	app := fiber.New()
	app.Get("/accounts/doctor-dashboard/", withCaller(callerDoctor), DoctorDashboard(mockSvc))

	mockSvc.On("Dashboard", mock.Anything).
		Return(&service.DoctorDashboard{
			TotalPatients:   3,
			TotalDocuments:  17,
			RecentDocuments: []model.Document{{ID: "doc-1"}},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/accounts/doctor-dashboard/", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var dash service.DoctorDashboard
	json.NewDecoder(resp.Body).Decode(&dash)
	assert.Equal(t, 3, dash.TotalPatients)
	assert.Equal(t, 17, dash.TotalDocuments)
	mockSvc.AssertExpectations(t)
}
