package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/konverge-api/internal/middleware"
	"github.com/noah-isme/konverge-api/internal/service"
	"github.com/noah-isme/konverge-api/internal/utils"
)

// UserStatusHandler exposes the account freeze lifecycle. The freeze sweep is
// meant to be triggered by an external scheduler.
type UserStatusHandler struct {
	service service.UserStatusService
	logger  zerolog.Logger
}

// NewUserStatusHandler constructs a user status handler.
func NewUserStatusHandler(service service.UserStatusService, logger zerolog.Logger) *UserStatusHandler {
	return &UserStatusHandler{
		service: service,
		logger:  logger.With().Str("component", "user_status_handler").Logger(),
	}
}

// Register binds the user status routes.
func (h *UserStatusHandler) Register(router fiber.Router) {
	router.Get("/pending-decisions", middleware.RequireUser(h.pending))
	router.Post("/freeze-inactive", middleware.RequireUser(h.freeze))
	router.Post("/:id/unfreeze", middleware.RequireUser(h.unfreeze))
}

func (h *UserStatusHandler) pending(c *fiber.Ctx) error {
	items, err := h.service.ListPendingDecisions(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list pending decisions")
	}

	return utils.OK(c, items, "users with pending decisions", fiber.Map{"total": len(items)})
}

func (h *UserStatusHandler) freeze(c *fiber.Ctx) error {
	result, err := h.service.FreezeInactive(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to freeze inactive users")
	}

	return utils.SendSuccess(c, "inactive users frozen", result)
}

func (h *UserStatusHandler) unfreeze(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_id", "invalid user id")
	}

	result, err := h.service.Unfreeze(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to unfreeze user")
	}

	return utils.SendSuccess(c, "user unfrozen", result)
}
