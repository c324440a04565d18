package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/safeloop/moderation-backend/internal/config"
	"github.com/safeloop/moderation-backend/internal/content"
	"github.com/safeloop/moderation-backend/internal/counters"
	"github.com/safeloop/moderation-backend/internal/database"
	"github.com/safeloop/moderation-backend/internal/events"
	"github.com/safeloop/moderation-backend/internal/handlers"
	"github.com/safeloop/moderation-backend/internal/jobs"
	"github.com/safeloop/moderation-backend/internal/logging"
	"github.com/safeloop/moderation-backend/internal/middleware"
	"github.com/safeloop/moderation-backend/internal/moderation"
	"github.com/safeloop/moderation-backend/internal/push"
	"github.com/safeloop/moderation-backend/internal/ratelimit"
	"github.com/safeloop/moderation-backend/internal/routes"
	"github.com/safeloop/moderation-backend/internal/settings"
	"github.com/safeloop/moderation-backend/internal/store"
	"github.com/safeloop/moderation-backend/internal/toxicity"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	jobsDone := make(chan struct{})
	logging.StartCleanup(database.DB, jobsDone)

	// Runtime pipeline settings (env defaults + DB overrides)
	settingsSvc := settings.NewService(database.DB, cfg)
	if err := settingsSvc.Reload(context.Background()); err != nil {
		slog.Error("settings load failed, using env defaults", "error", err)
	}

	// Pipeline components
	st := store.New(database.DB)

	var scorer toxicity.Scorer
	if cfg.ToxicityAPIKey != "" {
		scorer = toxicity.NewPerspectiveClient(cfg.ToxicityAPIURL, cfg.ToxicityAPIKey, cfg.ToxicityTimeout)
	} else {
		slog.Info("no toxicity API key configured, running heuristics only")
	}
	analyzer := toxicity.NewAnalyzer(scorer, settingsSvc)

	limiter := ratelimit.NewLimiter(st, settingsSvc)
	pipeline := moderation.NewPipeline(st, analyzer, limiter, settingsSvc, cfg.RecheckPageSize)
	aggregator := counters.NewAggregator(st)

	gateway := push.NewFCMClient(cfg.PushGatewayURL, cfg.PushGatewayKey, cfg.PushTimeout)
	fanout := push.NewFanout(st, gateway, cfg.InboxCap, cfg.InboxPruneTarget)

	// Event router: moderation, counters and push all react to the same
	// dispatched events.
	bus := events.NewRouter()
	pipeline.Bind(bus)
	aggregator.Bind(bus)
	fanout.Bind(bus)

	contentSvc := content.NewService(database.DB, bus)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	contentHandler := handlers.NewContentHandler(contentSvc)
	moderationHandler := handlers.NewModerationHandler(analyzer, limiter, pipeline, bus, st)
	eventsHandler := handlers.NewEventsHandler(cfg, bus)
	devicesHandler := handlers.NewDevicesHandler(database.DB)
	settingsHandler := handlers.NewSettingsHandler(settingsSvc)

	// Background jobs
	jobs.StartRecheck(pipeline, cfg.RecheckInterval, jobsDone)
	jobs.StartTeamSweep(aggregator, cfg.SweepInterval, jobsDone)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, healthHandler, contentHandler, moderationHandler, eventsHandler, devicesHandler, settingsHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(jobsDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
