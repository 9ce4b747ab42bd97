package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"medvault/internal/http/middleware"
	"medvault/internal/model"
	"medvault/internal/service"
)

// UploadForm describes the upload form for API clients.
func UploadForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"doc_types": model.DocumentTypes(),
			"fields":    []string{"file", "title", "description", "tags", "doc_type"},
		})
	}
}

// UploadDocument accepts a multipart document upload from the owning patient.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), caller, service.UploadInput{
			File:        f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Tags:        c.FormValue("tags"),
			DocType:     c.FormValue("doc_type"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		if middleware.WantsHTML(c) {
			return c.Redirect(caller.Role.DashboardPath(), fiber.StatusSeeOther)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments lists the documents visible to the caller with optional
// search, doc_type, and upload-date filters.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		docs, err := svc.List(c.UserContext(), caller, service.ListQuery{
			Search:   c.Query("search"),
			DocType:  c.Query("doc_type"),
			DateFrom: c.Query("date_from"),
			DateTo:   c.Query("date_to"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"documents": docs,
			"total":     len(docs),
		})
	}
}

// GetDocument returns one document the caller may see.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		doc, err := svc.Get(c.UserContext(), caller, c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument streams a document blob as an attachment.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		doc, rc, err := svc.Download(c.UserContext(), caller, c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}

		// The body stream is closed by the server after the response is sent.
		c.Set(fiber.HeaderContentType, "application/octet-stream")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
		if doc.Size > 0 {
			return c.SendStream(rc, int(doc.Size))
		}
		return c.SendStream(rc)
	}
}

// DeleteDocument removes the caller's own document.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		if err := svc.Delete(c.UserContext(), caller, c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}

		if middleware.WantsHTML(c) {
			return c.Redirect("/documents/", fiber.StatusSeeOther)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PatientDashboard returns the caller's recent uploads and total count.
func PatientDashboard(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		dash, err := svc.Dashboard(c.UserContext(), caller)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(dash)
	}
}
