package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/matching"
	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/observability"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// ApplicationService handles user-initiated applications to projects.
type ApplicationService interface {
	Apply(ctx context.Context, projectID, userID uint) (dto.MatchResponse, error)
}

type applicationService struct {
	store       repository.Store
	feedback    *FeedbackLedger
	broadcaster Broadcaster
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewApplicationService constructs the application service.
func NewApplicationService(store repository.Store, feedback *FeedbackLedger, broadcaster Broadcaster, logger zerolog.Logger) ApplicationService {
	return &applicationService{
		store:       store,
		feedback:    feedback,
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "application_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/konverge-api/internal/service/application"),
	}
}

// Apply creates a manual match scored against the project's whole skill set.
// Manual rows survive regeneration and never feed the feedback ledger.
func (s *applicationService) Apply(ctx context.Context, projectID, userID uint) (dto.MatchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "matches.apply", trace.WithAttributes(
		attribute.Int64("project.id", int64(projectID)),
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()

	var (
		project models.Project
		match   models.Match
	)

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		project, err = tx.Projects().GetByID(ctx, projectID)
		if err != nil {
			return notFoundOr(err, ErrProjectNotFound, "load project")
		}
		if project.OwnerID == userID {
			return ErrSelfApplication
		}

		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound, "load applicant")
		}

		exists, err := tx.Matches().HasManualApplication(ctx, project.ID, user.ID)
		if err != nil {
			return fmt.Errorf("check existing application: %w", err)
		}
		if exists {
			return ErrDuplicateApplication
		}

		acceptRate, err := s.feedback.Resolve(ctx, tx, user.ID, matching.GeneralSkill)
		if err != nil {
			return err
		}

		skillMatch := matching.SkillMatchPercentage(project.RequiredSkills, user.Skills)
		engagement := float64(user.EngagementScore)
		match = models.Match{
			ProjectID:          project.ID,
			UserID:             user.ID,
			SkillMatch:         skillMatch,
			CompositeScore:     matching.CompositeScore(skillMatch, engagement, user.Rating, acceptRate),
			EngagementSnapshot: engagement,
			RatingSnapshot:     user.Rating,
			OwnerDecision:      models.DecisionPending,
			UserDecision:       models.DecisionPending,
			Source:             models.MatchSourceManual,
		}
		if err := tx.Matches().Create(ctx, &match); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateApplication
			}
			return fmt.Errorf("create application: %w", err)
		}

		match.User = user
		match.Project = project
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply_failed")
		observability.Applications().WithLabelValues(ErrorCode(err)).Inc()
		return dto.MatchResponse{}, err
	}

	observability.Applications().WithLabelValues("created").Inc()
	if s.broadcaster != nil {
		s.broadcaster.Publish(ctx, Event{
			Type:       EventMatchApplied,
			ProjectID:  project.ID,
			MatchID:    match.ID,
			Recipients: []uint{project.OwnerID},
			Data: map[string]interface{}{
				"user_id":         match.UserID,
				"composite_score": match.CompositeScore,
			},
		})
	}

	s.logger.Info().Uint("project_id", project.ID).Uint("user_id", match.UserID).Msg("manual application created")
	return dto.NewMatchResponse(match), nil
}
