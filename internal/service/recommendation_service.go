package service

import (
	"context"
	"fmt"
	"time"

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

// RecommendationService rebuilds the ranked automated match list of a project.
type RecommendationService interface {
	Generate(ctx context.Context, projectID uint) (dto.RecommendationResponse, error)
}

type recommendationService struct {
	store       repository.Store
	selector    *CandidateSelector
	feedback    *FeedbackLedger
	broadcaster Broadcaster
	topN        int
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewRecommendationService constructs the recommendation generator.
func NewRecommendationService(store repository.Store, selector *CandidateSelector, feedback *FeedbackLedger, broadcaster Broadcaster, policy Policy, logger zerolog.Logger) RecommendationService {
	policy = policy.withDefaults()
	return &recommendationService{
		store:       store,
		selector:    selector,
		feedback:    feedback,
		broadcaster: broadcaster,
		topN:        policy.TopPerSkill,
		logger:      logger.With().Str("component", "recommendation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/konverge-api/internal/service/recommendation"),
		now:         time.Now,
	}
}

// Generate replaces the project's automated matches with a fresh ranking.
// Manual applications are kept. Either the whole set is replaced or nothing
// changes.
func (s *recommendationService) Generate(ctx context.Context, projectID uint) (dto.RecommendationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "recommendations.generate", trace.WithAttributes(
		attribute.Int64("project.id", int64(projectID)),
	))
	defer span.End()

	started := s.now()
	var (
		project  models.Project
		matches  []models.Match
		replaced int64
	)

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		project, err = tx.Projects().GetByID(ctx, projectID)
		if err != nil {
			return notFoundOr(err, ErrProjectNotFound, "load project")
		}

		required := matching.RequiredSkills(project.RequiredSkills)

		replaced, err = tx.Matches().DeleteAutomated(ctx, project.ID)
		if err != nil {
			return fmt.Errorf("delete automated matches: %w", err)
		}

		users, err := s.selector.Select(ctx, tx, project)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(users))
		byID := make(map[uint]models.User, len(users))
		for _, user := range users {
			ids = append(ids, user.ID)
			byID[user.ID] = user
		}

		rates, err := s.feedback.Snapshot(ctx, tx, ids)
		if err != nil {
			return err
		}

		results := matching.SelectTop(required, candidatesFromUsers(users), rates, s.topN)
		matches = make([]models.Match, 0, len(results))
		for _, result := range results {
			skill := result.Skill
			matches = append(matches, models.Match{
				ProjectID:          project.ID,
				UserID:             result.UserID,
				RequiredSkill:      &skill,
				SkillMatch:         result.SkillMatch,
				CompositeScore:     result.CompositeScore,
				EngagementSnapshot: result.Engagement,
				RatingSnapshot:     result.Rating,
				OwnerDecision:      models.DecisionPending,
				UserDecision:       models.DecisionPending,
				Source:             models.MatchSourceAutomated,
			})
		}

		if err := tx.Matches().CreateBatch(ctx, matches); err != nil {
			return fmt.Errorf("insert matches: %w", err)
		}
		for i := range matches {
			matches[i].User = byID[matches[i].UserID]
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate_recommendations_failed")
		return dto.RecommendationResponse{}, err
	}

	observability.RecommendationsGenerated().WithLabelValues("created").Add(float64(len(matches)))
	observability.RecommendationsGenerated().WithLabelValues("replaced").Add(float64(replaced))
	observability.RecommendationDuration().Observe(s.now().Sub(started).Seconds())
	span.SetAttributes(
		attribute.Int("recommendations.created", len(matches)),
		attribute.Int64("recommendations.replaced", replaced),
	)

	s.publish(ctx, project, matches)

	s.logger.Info().
		Uint("project_id", project.ID).
		Int("created", len(matches)).
		Int64("replaced", replaced).
		Msg("recommendations generated")

	return dto.RecommendationResponse{
		ProjectID:   project.ID,
		Replaced:    replaced,
		Matches:     dto.NewMatchResponseSlice(matches),
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *recommendationService) publish(ctx context.Context, project models.Project, matches []models.Match) {
	if s.broadcaster == nil {
		return
	}

	events := make([]Event, 0, len(matches)+1)
	for _, match := range matches {
		events = append(events, Event{
			Type:       EventMatchRecommended,
			ProjectID:  project.ID,
			MatchID:    match.ID,
			Recipients: []uint{match.UserID},
			Data: map[string]interface{}{
				"required_skill":  match.RequiredSkill,
				"composite_score": match.CompositeScore,
			},
		})
	}
	events = append(events, Event{
		Type:       EventMatchRecommended,
		ProjectID:  project.ID,
		Recipients: []uint{project.OwnerID},
		Data:       map[string]interface{}{"count": len(matches)},
	})

	s.broadcaster.Publish(ctx, events...)
}
