package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"medvault/internal/auth"
	"medvault/internal/config"
	"medvault/internal/http/middleware"
	"medvault/internal/service"
)

// Deps bundles everything the route table needs.
type Deps struct {
	DB        *sql.DB
	Sessions  *auth.Sessions
	AuthCfg   config.AuthConfig
	Auth      service.AuthService
	Documents service.DocumentService
	Patients  service.PatientService
}

// RegisterRoutes attaches the HTTP routes to the provided Fiber app. Role
// gates are declared here, next to the paths they protect, so the whole
// access policy is readable in one place.
func RegisterRoutes(app *fiber.App, deps Deps) {
	authed := middleware.Authenticate(deps.Sessions, deps.AuthCfg.SessionCookie)
	patientOnly := middleware.RequirePatient()
	doctorOnly := middleware.RequireDoctor()

	// Probes
	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())

	// Account lifecycle
	accounts := app.Group("/accounts")
	accounts.Get("/register/", RegisterForm())
	accounts.Post("/register/", Register(deps.Auth))
	accounts.Get("/login/", LoginForm())
	accounts.Post("/login/", Login(deps.Auth, deps.AuthCfg))
	accounts.Get("/logout/", Logout(deps.AuthCfg))
	accounts.Get("/profile/", authed, Profile(deps.Auth))

	// Role dashboards
	accounts.Get("/patient-dashboard/", authed, patientOnly, PatientDashboard(deps.Documents))
	accounts.Get("/doctor-dashboard/", authed, doctorOnly, DoctorDashboard(deps.Patients))

	// Doctor patient browser
	accounts.Get("/patients/", authed, doctorOnly, ListPatients(deps.Patients))
	accounts.Get("/patients/:patient_id/", authed, doctorOnly, PatientDetail(deps.Patients))
	accounts.Get("/patients/:patient_id/documents/:document_id/", authed, doctorOnly, PatientDocument(deps.Patients))

	// Document lifecycle; upload/ must be registered before the :id routes
	docs := app.Group("/documents", authed)
	docs.Get("/upload/", patientOnly, UploadForm())
	docs.Post("/upload/", patientOnly, UploadDocument(deps.Documents))
	docs.Get("/", ListDocuments(deps.Documents))
	docs.Get("/:id/", GetDocument(deps.Documents))
	docs.Get("/:id/download/", DownloadDocument(deps.Documents))
	docs.Post("/:id/delete/", DeleteDocument(deps.Documents))

	// Role-aware dashboard dispatch plus a root convenience redirect
	app.Get("/dashboard/", authed, Dashboard())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard/", fiber.StatusSeeOther)
	})
}
