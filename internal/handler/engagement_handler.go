package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/konverge-api/internal/middleware"
	"github.com/noah-isme/konverge-api/internal/service"
	"github.com/noah-isme/konverge-api/internal/utils"
)

// EngagementHandler serves the caller's engagement ledger.
type EngagementHandler struct {
	service service.EngagementService
	logger  zerolog.Logger
}

// NewEngagementHandler constructs an engagement handler.
func NewEngagementHandler(service service.EngagementService, logger zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		service: service,
		logger:  logger.With().Str("component", "engagement_handler").Logger(),
	}
}

// Register binds the engagement routes.
func (h *EngagementHandler) Register(router fiber.Router) {
	router.Get("/history", middleware.RequireUser(h.history))
}

func (h *EngagementHandler) history(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_limit", "invalid limit")
	}

	history, err := h.service.History(requestContext(c), userID, limit)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load engagement history")
	}

	return utils.SendSuccess(c, "engagement history", history)
}
