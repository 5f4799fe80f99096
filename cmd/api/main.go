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

	"pdfgate/docs"
	"pdfgate/internal/access"
	"pdfgate/internal/config"
	"pdfgate/internal/database"
	"pdfgate/internal/database/migration"
	handlers "pdfgate/internal/http/handler"
	"pdfgate/internal/http/middleware"
	"pdfgate/internal/otel"
	"pdfgate/internal/pdfurl"
	"pdfgate/internal/renderer"
	"pdfgate/internal/repository/postgres"
	"pdfgate/internal/resolver"
	"pdfgate/internal/service"
	"pdfgate/internal/signing"
	"pdfgate/internal/storage"
)

// @title PDF Gate API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()
	loc := time.UTC

	// Initialize OTLP tracing; shutdown flushes remaining spans
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	// backing the render cache
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// The signing secret guards every signed URL; refuse to start without one
	signer, err := signing.New(cfg.Security.SigningSecret)
	if err != nil {
		log.Fatalf("failed to initialize url signer: %v", err)
	}

	// Initialize stores, the resolver and the authorization pipeline
	configStore := postgres.NewConfigPostgres(db)
	entryStore := postgres.NewEntryPostgres(db)
	capabilityStore := postgres.NewCapabilityPostgres(db)
	res := resolver.New(configStore)

	pipeline, err := access.NewPipeline(access.Options{
		Entries:      entryStore,
		Resolver:     res,
		Signer:       signer,
		Capabilities: capabilityStore,
		Settings: access.Settings{
			LogoutTimeoutMinutes: cfg.Security.LogoutTimeoutMinutes,
			RestrictToAdmin:      cfg.Security.RestrictToAdmin,
			AdminCapabilities:    cfg.Security.AdminCapabilities,
		},
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		log.Fatalf("failed to build authorization pipeline: %v", err)
	}

	builder := pdfurl.NewBuilder(cfg.BaseURL, cfg.PrettyPermalinks, signer,
		time.Duration(cfg.Security.SignedURLExpiryHours)*time.Hour)
	rend := renderer.NewHTTP(cfg.Renderer.Endpoint, time.Duration(cfg.Renderer.TimeoutSec)*time.Second)
	pdfSvc := service.NewPDFService(pipeline, res, entryStore, objStore, rend, builder)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// Client IP resolution feeds both logging and ownership checks
	app.Use(middleware.ClientIP())
	// Optional bearer-token identity; absent or invalid tokens stay anonymous
	app.Use(middleware.Auth(cfg.Security.AuthTokenSecret))
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Distributed tracing for inbound requests
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to initialize prometheus middleware: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, pdfSvc, cfg.Security.ServerIP)

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
