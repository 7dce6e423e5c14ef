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

// UserStatusService freezes candidates who leave recommendations unanswered
// and lets operators reactivate them.
type UserStatusService interface {
	ListPendingDecisions(ctx context.Context) ([]dto.PendingDecisionUserResponse, error)
	FreezeInactive(ctx context.Context) (dto.FreezeInactiveResponse, error)
	Unfreeze(ctx context.Context, userID uint) (dto.AccountStatusResponse, error)
}

type userStatusService struct {
	store       repository.Store
	freezeAfter time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewUserStatusService constructs the account freeze service.
func NewUserStatusService(store repository.Store, policy Policy, logger zerolog.Logger) UserStatusService {
	policy = policy.withDefaults()
	return &userStatusService{
		store:       store,
		freezeAfter: policy.FreezeAfter,
		logger:      logger.With().Str("component", "user_status_service").Logger(),
		now:         time.Now,
	}
}

func (s *userStatusService) cutoff() time.Time {
	return s.now().UTC().Add(-s.freezeAfter)
}

func (s *userStatusService) ListPendingDecisions(ctx context.Context) ([]dto.PendingDecisionUserResponse, error) {
	summaries, err := s.store.Users().ListStalePending(ctx, s.cutoff())
	if err != nil {
		return nil, fmt.Errorf("list stale pending decisions: %w", err)
	}

	responses := make([]dto.PendingDecisionUserResponse, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, dto.PendingDecisionUserResponse{
			UserID:          summary.User.ID,
			Name:            summary.User.Name,
			Email:           summary.User.Email,
			AccountStatus:   summary.User.AccountStatus,
			PendingCount:    summary.PendingCount,
			OldestPendingAt: summary.OldestPendingAt,
		})
	}
	return responses, nil
}

// FreezeInactive freezes every active user with a recommendation older than
// the freeze window still waiting for their decision.
func (s *userStatusService) FreezeInactive(ctx context.Context) (dto.FreezeInactiveResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/konverge-api/internal/service/user_status")
	ctx, span := tracer.Start(ctx, "users.freeze_inactive")
	defer span.End()

	cutoff := s.cutoff()
	result := dto.FreezeInactiveResponse{Cutoff: cutoff, UserIDs: []uint{}}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		summaries, err := tx.Users().ListStalePending(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("list stale pending decisions: %w", err)
		}

		ids := make([]uint, 0, len(summaries))
		for _, summary := range summaries {
			if summary.User.IsActive() {
				ids = append(ids, summary.User.ID)
			}
		}

		frozen, err := tx.Users().TransitionAccountStatus(ctx, ids, models.AccountStatusActive, models.AccountStatusFrozen)
		if err != nil {
			return fmt.Errorf("freeze users: %w", err)
		}
		result.FrozenCount = frozen
		result.UserIDs = ids
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "freeze_failed")
		return dto.FreezeInactiveResponse{}, err
	}

	span.SetAttributes(attribute.Int64("users.frozen", result.FrozenCount))
	s.logger.Info().
		Int64("frozen", result.FrozenCount).
		Time("cutoff", cutoff).
		Msg("froze inactive users")

	return result, nil
}

func (s *userStatusService) Unfreeze(ctx context.Context, userID uint) (dto.AccountStatusResponse, error) {
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		changed, err := tx.Users().TransitionAccountStatus(ctx, []uint{userID}, models.AccountStatusFrozen, models.AccountStatusActive)
		if err != nil {
			return fmt.Errorf("unfreeze user: %w", err)
		}
		if changed == 0 {
			return ErrUserNotFrozen
		}
		return nil
	})
	if err != nil {
		return dto.AccountStatusResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Msg("unfroze user")
	return dto.AccountStatusResponse{UserID: userID, AccountStatus: models.AccountStatusActive}, nil
}
