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

// RatingHandler handles peer rating submission.
type RatingHandler struct {
	service   service.RatingService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRatingHandler constructs a rating handler.
func NewRatingHandler(service service.RatingService, validate *validator.Validate, logger zerolog.Logger) *RatingHandler {
	return &RatingHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "rating_handler").Logger(),
	}
}

// Register binds the rating routes.
func (h *RatingHandler) Register(router fiber.Router) {
	router.Get("/pending", middleware.RequireUser(h.listPending))
	router.Post("/:id/submit", h.submit)
}

func (h *RatingHandler) listPending(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)

	ratings, err := h.service.ListPending(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list pending ratings")
	}

	return utils.OK(c, ratings, "pending ratings", fiber.Map{"total": len(ratings)})
}

func (h *RatingHandler) submit(c *fiber.Ctx) error {
	ratingID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_id", "invalid rating id")
	}

	var payload dto.RatingSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_payload", "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	}

	raterID, ok := actingUser(c, payload.RaterID)
	if !ok {
		return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthorized", "rater not identified")
	}

	rating, err := h.service.Submit(requestContext(c), ratingID, raterID, *payload.Score, payload.Feedback)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to submit rating")
	}

	return utils.SendSuccess(c, "rating submitted", rating)
}
