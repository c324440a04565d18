package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/safeloop/moderation-backend/internal/config"
	"github.com/safeloop/moderation-backend/internal/handlers"
	"github.com/safeloop/moderation-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	contentHandler *handlers.ContentHandler,
	moderationHandler *handlers.ModerationHandler,
	eventsHandler *handlers.EventsHandler,
	devicesHandler *handlers.DevicesHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	api.Get("/health", healthHandler.Check)

	// Toxicity scoring without persistence (protected)
	api.Post("/moderation/analyze", middleware.JWTProtected(cfg), moderationHandler.AnalyzeText)

	// Reports (protected; per-user report window enforced in the handler)
	api.Post("/reports", middleware.JWTProtected(cfg), moderationHandler.ReportAbuse)

	// Content (protected except reads)
	api.Get("/posts/:id", contentHandler.Get)
	api.Post("/posts", middleware.JWTProtected(cfg), contentHandler.CreatePost)
	api.Post("/posts/:id/replies", middleware.JWTProtected(cfg), contentHandler.CreateReply)
	api.Post("/posts/:id/like", middleware.JWTProtected(cfg), contentHandler.Like)
	api.Delete("/posts/:id/like", middleware.JWTProtected(cfg), contentHandler.Unlike)
	api.Put("/teams/:id/minutes", middleware.JWTProtected(cfg), contentHandler.RecordMinutes)

	// Push targets and notification preferences (protected)
	api.Post("/devices", middleware.JWTProtected(cfg), devicesHandler.Register)
	api.Delete("/devices/:token", middleware.JWTProtected(cfg), devicesHandler.Unregister)
	api.Put("/notifications/prefs", middleware.JWTProtected(cfg), devicesHandler.UpdatePrefs)

	// Admin moderation panel (JWT or X-Admin-Token, plus the admin check)
	admin := api.Group("/admin", middleware.AdminTokenOrJWT(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/moderation/reports", moderationHandler.ListReports)
	admin.Put("/moderation/reports/:id", moderationHandler.ActionReport)
	admin.Post("/moderation/recheck", moderationHandler.Recheck)

	// Admin pipeline settings
	admin.Get("/settings", settingsHandler.List)
	admin.Put("/settings/:key", settingsHandler.Set)
	admin.Delete("/settings/:key", settingsHandler.Delete)

	// Store lifecycle triggers, shared-secret auth (no JWT)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/events/:source", eventsHandler.Handle)
}
