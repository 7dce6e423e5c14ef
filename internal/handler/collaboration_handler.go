package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/middleware"
	"github.com/noah-isme/konverge-api/internal/service"
	"github.com/noah-isme/konverge-api/internal/utils"
)

// CollaborationHandler exposes collaboration status and lifecycle endpoints.
type CollaborationHandler struct {
	service   service.CollaborationService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCollaborationHandler constructs a collaboration handler.
func NewCollaborationHandler(service service.CollaborationService, validate *validator.Validate, logger zerolog.Logger) *CollaborationHandler {
	return &CollaborationHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "collaboration_handler").Logger(),
	}
}

// Register binds the collaboration routes.
func (h *CollaborationHandler) Register(router fiber.Router) {
	router.Get("/", middleware.RequireUser(h.list))
	router.Get("/status", middleware.RequireUser(h.status))
	router.Get("/users/:id/status", h.userStatus)
	router.Post("/finish", middleware.RequireUser(h.finish))
}

func (h *CollaborationHandler) list(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)

	items, err := h.service.ListForUser(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list collaborations")
	}

	return utils.OK(c, items, "collaborations retrieved", fiber.Map{"total": len(items)})
}

func (h *CollaborationHandler) status(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	return h.writeStatus(c, userID)
}

func (h *CollaborationHandler) userStatus(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_id", "invalid user id")
	}
	return h.writeStatus(c, userID)
}

func (h *CollaborationHandler) writeStatus(c *fiber.Ctx, userID uint) error {
	status, err := h.service.Status(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load collaboration status")
	}

	return utils.OK(c, status, "collaboration status", fiber.Map{"cache_hit": status.CacheHit})
}

func (h *CollaborationHandler) finish(c *fiber.Ctx) error {
	actorID, _ := middleware.CurrentUserID(c)

	var payload dto.FinishCollaborationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_payload", "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	}

	userID := payload.UserID
	if userID == 0 {
		userID = actorID
	}

	collaboration, err := h.service.Finish(requestContext(c), actorID, payload.ProjectID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to finish collaboration")
	}

	return utils.SendSuccess(c, "collaboration completed", collaboration)
}
