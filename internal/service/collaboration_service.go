package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// CollaborationService exposes collaboration lifecycle and capacity views.
type CollaborationService interface {
	Status(ctx context.Context, userID uint) (dto.CollaborationStatusResponse, error)
	ListForUser(ctx context.Context, userID uint) ([]dto.CollaborationResponse, error)
	Finish(ctx context.Context, actorID, projectID, userID uint) (dto.CollaborationResponse, error)
}

type collaborationService struct {
	store    repository.Store
	cache    Cache
	cacheTTL time.Duration
	ceiling  int
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCollaborationService constructs the collaboration service. A nil cache
// disables status caching.
func NewCollaborationService(store repository.Store, cache Cache, policy Policy, logger zerolog.Logger) CollaborationService {
	policy = policy.withDefaults()
	if cache == nil {
		cache = NoopCache()
	}
	return &collaborationService{
		store:    store,
		cache:    cache,
		cacheTTL: policy.StatusTTL,
		ceiling:  policy.CapacityCeiling,
		logger:   logger.With().Str("component", "collaboration_service").Logger(),
		now:      time.Now,
	}
}

func collaborationStatusKey(userID uint) string {
	return fmt.Sprintf("collaboration:status:%d", userID)
}

func (s *collaborationService) Status(ctx context.Context, userID uint) (dto.CollaborationStatusResponse, error) {
	cacheKey := collaborationStatusKey(userID)
	tracer := otel.Tracer("github.com/noah-isme/konverge-api/internal/service/collaboration")
	ctx, span := tracer.Start(ctx, "collaborations.status")
	span.SetAttributes(attribute.String("collaboration.cache_key", cacheKey))
	defer span.End()

	var cached dto.CollaborationStatusResponse
	hit, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read collaboration status cache")
		span.RecordError(err)
	}
	if hit {
		s.logger.Debug().Uint("user_id", userID).Msg("collaboration status cache hit")
		span.SetAttributes(attribute.Bool("collaboration.cache_hit", true))
		cached.CacheHit = true
		return cached, nil
	}

	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_user_failed")
		return dto.CollaborationStatusResponse{}, notFoundOr(err, ErrUserNotFound, "load user")
	}

	counts, err := s.store.Collaborations().CountByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_collaborations_failed")
		return dto.CollaborationStatusResponse{}, fmt.Errorf("count collaborations: %w", err)
	}

	openProjects, err := s.store.Projects().CountOpenByOwner(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_open_projects_failed")
		return dto.CollaborationStatusResponse{}, fmt.Errorf("count open projects: %w", err)
	}

	total := counts.Active + openProjects
	status := dto.CollaborationStatusResponse{
		UserID:                  userID,
		ActiveCollaborations:    counts.Active,
		CompletedCollaborations: counts.Completed,
		OpenOwnedProjects:       openProjects,
		TotalCommitments:        total,
		CapacityCeiling:         s.ceiling,
		CanJoinNewProjects:      total < int64(s.ceiling),
	}

	if err := s.cache.Set(ctx, cacheKey, status, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store collaboration status cache")
		span.RecordError(err)
	}

	return status, nil
}

func (s *collaborationService) ListForUser(ctx context.Context, userID uint) ([]dto.CollaborationResponse, error) {
	collaborations, err := s.store.Collaborations().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collaborations: %w", err)
	}
	return dto.NewCollaborationResponseSlice(collaborations), nil
}

// Finish marks an active collaboration completed. A later mutual acceptance
// reactivates it.
func (s *collaborationService) Finish(ctx context.Context, actorID, projectID, userID uint) (dto.CollaborationResponse, error) {
	var collaboration models.Collaboration
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		project, err := tx.Projects().GetByID(ctx, projectID)
		if err != nil {
			return notFoundOr(err, ErrProjectNotFound, "load project")
		}
		if actorID != project.OwnerID && actorID != userID {
			return ErrCollaborationForbidden
		}

		collaboration, err = tx.Collaborations().GetByPairForUpdate(ctx, projectID, userID)
		if err != nil {
			return notFoundOr(err, ErrCollaborationNotFound, "load collaboration")
		}
		if !collaboration.IsActive() {
			return ErrCollaborationNotFound
		}

		completedAt := s.now().UTC()
		collaboration.Status = models.CollaborationStatusCompleted
		collaboration.CompletedAt = &completedAt
		if err := tx.Collaborations().Save(ctx, &collaboration); err != nil {
			return fmt.Errorf("finish collaboration: %w", err)
		}
		collaboration.Project = project
		return nil
	})
	if err != nil {
		return dto.CollaborationResponse{}, err
	}

	if err := s.cache.Invalidate(ctx, collaborationStatusKey(userID)); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate collaboration status cache")
	}

	s.logger.Info().Uint("project_id", projectID).Uint("user_id", userID).Msg("collaboration finished")
	return dto.NewCollaborationResponse(collaboration), nil
}
