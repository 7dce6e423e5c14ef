package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/service"
	"github.com/noah-isme/konverge-api/internal/utils"
)

// ProjectHandler exposes recommendation generation, applications and match
// listings for a project.
type ProjectHandler struct {
	recommendations service.RecommendationService
	applications    service.ApplicationService
	matches         service.MatchService
	validator       *validator.Validate
	logger          zerolog.Logger
}

// NewProjectHandler constructs a project handler.
func NewProjectHandler(recommendations service.RecommendationService, applications service.ApplicationService, matches service.MatchService, validate *validator.Validate, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		recommendations: recommendations,
		applications:    applications,
		matches:         matches,
		validator:       validate,
		logger:          logger.With().Str("component", "project_handler").Logger(),
	}
}

// Register binds the project routes.
func (h *ProjectHandler) Register(router fiber.Router) {
	router.Post("/:id/recommendations", h.generate)
	router.Post("/:id/apply", h.apply)
	router.Get("/:id/matches", h.listMatches)
}

func (h *ProjectHandler) generate(c *fiber.Ctx) error {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_id", "invalid project id")
	}

	result, err := h.recommendations.Generate(requestContext(c), projectID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to generate recommendations")
	}

	return utils.SendSuccess(c, "recommendations generated", result)
}

func (h *ProjectHandler) apply(c *fiber.Ctx) error {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_id", "invalid project id")
	}

	var payload dto.ApplyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_payload", "invalid payload")
		}
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	}

	userID, ok := actingUser(c, payload.UserID)
	if !ok {
		return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthorized", "applicant not identified")
	}

	match, err := h.applications.Apply(requestContext(c), projectID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to apply to project")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", match)
}

func (h *ProjectHandler) listMatches(c *fiber.Ctx) error {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_id", "invalid project id")
	}

	matches, err := h.matches.ListForProject(requestContext(c), projectID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list project matches")
	}

	return utils.OK(c, matches, "matches retrieved", fiber.Map{"total": len(matches)})
}
