package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/observability"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// DecisionService records owner and user decisions on matches. The actor
// must be the project owner for owner decisions and the matched user for
// user decisions.
type DecisionService interface {
	RecordOwnerDecision(ctx context.Context, actorID, matchID uint, decision string, reason map[string]interface{}) (dto.DecisionResponse, error)
	RecordUserDecision(ctx context.Context, actorID, matchID uint, decision string, reason map[string]interface{}) (dto.DecisionResponse, error)
}

type decisionService struct {
	store        repository.Store
	feedback     *FeedbackLedger
	engagement   *EngagementLedger
	sync         *CollaborationSynchronizer
	broadcaster  Broadcaster
	cache        Cache
	acceptPoints int
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewDecisionService constructs the decision state machine.
func NewDecisionService(store repository.Store, feedback *FeedbackLedger, engagement *EngagementLedger, sync *CollaborationSynchronizer, broadcaster Broadcaster, cache Cache, policy Policy, logger zerolog.Logger) DecisionService {
	policy = policy.withDefaults()
	if cache == nil {
		cache = NoopCache()
	}
	return &decisionService{
		store:        store,
		feedback:     feedback,
		engagement:   engagement,
		sync:         sync,
		broadcaster:  broadcaster,
		cache:        cache,
		acceptPoints: policy.AcceptPoints,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "decision_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/konverge-api/internal/service/decision"),
		now:          time.Now,
	}
}

func (s *decisionService) RecordOwnerDecision(ctx context.Context, actorID, matchID uint, decision string, reason map[string]interface{}) (dto.DecisionResponse, error) {
	return s.record(ctx, models.ActorOwner, actorID, matchID, decision, reason)
}

func (s *decisionService) RecordUserDecision(ctx context.Context, actorID, matchID uint, decision string, reason map[string]interface{}) (dto.DecisionResponse, error) {
	return s.record(ctx, models.ActorUser, actorID, matchID, decision, reason)
}

func (s *decisionService) record(ctx context.Context, actor models.DecisionActor, actorID, matchID uint, raw string, reason map[string]interface{}) (dto.DecisionResponse, error) {
	decision, err := models.ParseDecision(raw)
	if err != nil {
		observability.MatchDecisions().WithLabelValues(string(actor), "invalid", "rejected").Inc()
		return dto.DecisionResponse{}, ErrInvalidDecision
	}

	ctx, span := s.tracer.Start(ctx, "matches.record_decision", trace.WithAttributes(
		attribute.Int64("match.id", int64(matchID)),
		attribute.String("decision.actor", string(actor)),
		attribute.String("decision.value", string(decision)),
	))
	defer span.End()

	var (
		changed bool
		synced  SyncResult
	)

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		match, err := tx.Matches().GetForUpdate(ctx, matchID)
		if err != nil {
			return notFoundOr(err, ErrMatchNotFound, "load match")
		}
		if err := authorizeDecision(ctx, tx, actor, actorID, match); err != nil {
			return err
		}

		changed, err = match.DecisionOf(actor).Transition(decision)
		if err != nil {
			return fmt.Errorf("match %d holds an unknown %s decision: %w", match.ID, actor, err)
		}
		if !changed {
			return nil
		}

		now := s.now().UTC()
		firstAcceptance := false
		if actor == models.ActorUser && decision == models.DecisionAccepted {
			previous, err := tx.Matches().CountDecisionLogs(ctx, match.ID, models.ActorUser, models.DecisionAccepted)
			if err != nil {
				return fmt.Errorf("count prior acceptances: %w", err)
			}
			firstAcceptance = previous == 0
		}

		match.ApplyDecision(actor, decision, now)
		if err := tx.Matches().SaveDecision(ctx, &match); err != nil {
			return fmt.Errorf("save decision: %w", err)
		}

		entry := models.MatchDecisionLog{
			MatchID:   match.ID,
			ActorType: actor,
			Decision:  decision,
			Reason:    s.sanitizeReason(reason),
			CreatedAt: now,
		}
		if err := tx.Matches().AppendDecisionLog(ctx, &entry); err != nil {
			return fmt.Errorf("append decision log: %w", err)
		}

		if match.IsAutomated() {
			if _, err := s.feedback.Record(ctx, tx, match.UserID, match.RequiredSkill, decision == models.DecisionAccepted); err != nil {
				return err
			}
		}

		if firstAcceptance {
			if _, err := s.engagement.Award(ctx, tx, match.UserID, s.acceptPoints, ReasonMatchAccepted); err != nil {
				return err
			}
		}

		synced, err = s.sync.Sync(ctx, tx, match)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record_decision_failed")
		observability.MatchDecisions().WithLabelValues(string(actor), string(decision), decisionOutcome(err)).Inc()
		return dto.DecisionResponse{}, err
	}

	match, err := s.store.Matches().GetByID(ctx, matchID)
	if err != nil {
		span.RecordError(err)
		return dto.DecisionResponse{}, notFoundOr(err, ErrMatchNotFound, "reload match")
	}

	response := dto.DecisionResponse{
		Match:   dto.NewMatchResponse(match),
		Changed: changed,
	}

	if !changed {
		observability.MatchDecisions().WithLabelValues(string(actor), string(decision), "noop").Inc()
		return response, nil
	}

	observability.MatchDecisions().WithLabelValues(string(actor), string(decision), "applied").Inc()
	span.SetAttributes(attribute.Bool("collaboration.started", synced.Started()))

	events := []Event{{
		Type:       EventMatchDecision,
		ProjectID:  match.ProjectID,
		MatchID:    match.ID,
		Recipients: []uint{match.Project.OwnerID, match.UserID},
		Data: map[string]interface{}{
			"actor":          string(actor),
			"decision":       string(decision),
			"owner_decision": string(match.OwnerDecision),
			"user_decision":  string(match.UserDecision),
		},
	}}

	if synced.Started() {
		collaboration := dto.NewCollaborationResponse(*synced.Collaboration)
		response.Collaboration = &collaboration

		observability.CollaborationsStarted().WithLabelValues(synced.Kind).Inc()
		events = append(events, Event{
			Type:       EventCollaborationStarted,
			ProjectID:  match.ProjectID,
			MatchID:    match.ID,
			Recipients: []uint{synced.OwnerID, match.UserID},
			Data: map[string]interface{}{
				"collaboration_id": synced.Collaboration.ID,
				"kind":             synced.Kind,
			},
		})

		if err := s.cache.Invalidate(ctx, collaborationStatusKey(match.UserID)); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", match.UserID).Msg("failed to invalidate collaboration status cache")
		}

		s.logger.Info().
			Uint("match_id", match.ID).
			Uint("project_id", match.ProjectID).
			Uint("user_id", match.UserID).
			Str("kind", synced.Kind).
			Msg("collaboration started")
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(ctx, events...)
	}

	return response, nil
}

// authorizeDecision checks that actorID speaks for the given side of the match.
func authorizeDecision(ctx context.Context, tx repository.Store, actor models.DecisionActor, actorID uint, match models.Match) error {
	if actor == models.ActorUser {
		if actorID == 0 || actorID != match.UserID {
			return ErrDecisionForbidden
		}
		return nil
	}

	project, err := tx.Projects().GetByID(ctx, match.ProjectID)
	if err != nil {
		return notFoundOr(err, ErrProjectNotFound, "load match project")
	}
	if actorID == 0 || actorID != project.OwnerID {
		return ErrDecisionForbidden
	}
	return nil
}

func decisionOutcome(err error) string {
	if errors.Is(err, ErrForbidden) {
		return "forbidden"
	}
	return "error"
}

// sanitizeReason strips markup from every string in the submitted reason.
func (s *decisionService) sanitizeReason(reason map[string]interface{}) datatypes.JSONMap {
	if len(reason) == 0 {
		return nil
	}
	return datatypes.JSONMap(s.sanitizeMap(reason))
}

func (s *decisionService) sanitizeMap(values map[string]interface{}) map[string]interface{} {
	clean := make(map[string]interface{}, len(values))
	for key, value := range values {
		clean[key] = s.sanitizeValue(value)
	}
	return clean
}

func (s *decisionService) sanitizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(s.sanitizer.Sanitize(v))
	case map[string]interface{}:
		return s.sanitizeMap(v)
	case []interface{}:
		items := make([]interface{}, 0, len(v))
		for _, item := range v {
			items = append(items, s.sanitizeValue(item))
		}
		return items
	default:
		return v
	}
}
