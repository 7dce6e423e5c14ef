package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/middleware"
	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/service"
	"github.com/noah-isme/konverge-api/internal/utils"
)

// MatchHandler records decisions and lists the caller's matches.
type MatchHandler struct {
	decisions service.DecisionService
	matches   service.MatchService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMatchHandler constructs a match handler.
func NewMatchHandler(decisions service.DecisionService, matches service.MatchService, validate *validator.Validate, logger zerolog.Logger) *MatchHandler {
	return &MatchHandler{
		decisions: decisions,
		matches:   matches,
		validator: validate,
		logger:    logger.With().Str("component", "match_handler").Logger(),
	}
}

// Register binds the match routes. Guards run in front of the decision
// endpoints only.
func (h *MatchHandler) Register(router fiber.Router, decisionGuards ...fiber.Handler) {
	router.Get("/mine", middleware.RequireUser(h.listMine))

	owner := append(append([]fiber.Handler{}, decisionGuards...), middleware.RequireUser(h.decide(models.ActorOwner)))
	router.Patch("/:id/owner", owner...)

	user := append(append([]fiber.Handler{}, decisionGuards...), middleware.RequireUser(h.decide(models.ActorUser)))
	router.Patch("/:id/user", user...)
}

func (h *MatchHandler) decide(actor models.DecisionActor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matchID, err := parseIDParam(c, "id")
		if err != nil {
			return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_id", "invalid match id")
		}

		var payload dto.DecisionRequest
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_payload", "invalid payload")
		}
		if err := h.validator.Struct(payload); err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
		}

		actorID, _ := middleware.CurrentUserID(c)

		var result dto.DecisionResponse
		if actor == models.ActorOwner {
			result, err = h.decisions.RecordOwnerDecision(requestContext(c), actorID, matchID, payload.Decision, payload.Reason)
		} else {
			result, err = h.decisions.RecordUserDecision(requestContext(c), actorID, matchID, payload.Decision, payload.Reason)
		}
		if err != nil {
			return sendServiceError(c, h.logger, err, "failed to record decision")
		}

		message := "decision recorded"
		if !result.Changed {
			message = "decision unchanged"
		}
		return utils.SendSuccess(c, message, result)
	}
}

func (h *MatchHandler) listMine(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)

	matches, err := h.matches.ListForUser(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list user matches")
	}

	return utils.OK(c, matches, "matches retrieved", fiber.Map{"total": len(matches)})
}
