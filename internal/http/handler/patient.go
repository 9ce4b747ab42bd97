package handler

import (
	"github.com/gofiber/fiber/v2"

	"medvault/internal/service"
)

// ListPatients returns all patient accounts for the doctor patient browser,
// optionally narrowed by a name/email search.
func ListPatients(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		patients, err := svc.ListPatients(c.UserContext(), c.Query("search"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"patients": patients,
			"total":    len(patients),
		})
	}
}

// PatientDetail returns one patient and their documents, optionally narrowed
// by doc_type.
func PatientDetail(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		detail, err := svc.PatientDetail(c.UserContext(), c.Params("patient_id"), c.Query("doc_type"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(detail)
	}
}

// PatientDocument returns one document scoped to a specific patient.
func PatientDocument(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.PatientDocument(c.UserContext(), c.Params("patient_id"), c.Params("document_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DoctorDashboard returns the portal-wide overview for doctors.
func DoctorDashboard(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dash, err := svc.Dashboard(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(dash)
	}
}
