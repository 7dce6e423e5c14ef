package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/konverge-api/internal/config"
	"github.com/noah-isme/konverge-api/internal/handler"
	"github.com/noah-isme/konverge-api/internal/middleware"
	"github.com/noah-isme/konverge-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProjectHandler       *handler.ProjectHandler
	MatchHandler         *handler.MatchHandler
	RatingHandler        *handler.RatingHandler
	CollaborationHandler *handler.CollaborationHandler
	EngagementHandler    *handler.EngagementHandler
	EventHandler         *handler.EventHandler
	UserStatusHandler    *handler.UserStatusHandler
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ProjectHandler != nil {
		deps.ProjectHandler.Register(api.Group("/projects", jwtMiddleware))
	}

	if deps.MatchHandler != nil {
		limit := cfg.DecisionsPerMinute
		if limit <= 0 {
			limit = 30
		}
		deps.MatchHandler.Register(api.Group("/matches", jwtMiddleware), middleware.RateLimit("match_decisions", limit, time.Minute))
	}

	if deps.RatingHandler != nil {
		deps.RatingHandler.Register(api.Group("/ratings", jwtMiddleware))
	}

	if deps.CollaborationHandler != nil {
		deps.CollaborationHandler.Register(api.Group("/collaborations", jwtMiddleware))
	}

	if deps.EngagementHandler != nil {
		deps.EngagementHandler.Register(api.Group("/engagement", jwtMiddleware))
	}

	if deps.UserStatusHandler != nil {
		deps.UserStatusHandler.Register(api.Group("/user-status", jwtMiddleware))
	}

	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events", jwtMiddleware))
	}
}
