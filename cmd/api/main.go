package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medvault/docs"
	"medvault/internal/auth"
	"medvault/internal/config"
	"medvault/internal/database"
	"medvault/internal/database/migration"
	handlers "medvault/internal/http/handler"
	"medvault/internal/http/middleware"
	"medvault/internal/otel"
	"medvault/internal/repository/postgres"
	"medvault/internal/service"
	"medvault/internal/storage"
)

// @title MedVault API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	// OTLP tracing; degrades to a noop provider when the exporter is unreachable
	shutdownTracing, err := otel.Init(context.Background(), loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	// PostgreSQL connection (pooled database/sql over pgx, traced by otelsql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	objStore, err := newStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize blob storage: %v", err)
	}

	sessions, err := auth.NewSessions(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize sessions: %v", err)
	}

	// Repositories and services
	userRepo := postgres.NewUserPostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)
	authSvc := service.NewAuthService(userRepo, sessions, cfg.Auth.MinPasswordLen)
	docSvc := service.NewDocumentService(objStore, docRepo)
	patientSvc := service.NewPatientService(userRepo, docRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Global middleware: request id, JSON request log, metrics, tracing
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Use(otelfiber.Middleware())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:        db,
		Sessions:  sessions,
		AuthCfg:   cfg.Auth,
		Auth:      authSvc,
		Documents: docSvc,
		Patients:  patientSvc,
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	if cfg.Backend == "minio" {
		return storage.NewMinIO(cfg.MinIO)
	}
	return storage.NewLocal(cfg.LocalRoot)
}
