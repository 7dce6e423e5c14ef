package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// EngagementService reads the engagement ledger.
type EngagementService interface {
	History(ctx context.Context, userID uint, limit int) (dto.EngagementHistoryResponse, error)
}

type engagementService struct {
	store repository.Store
}

// NewEngagementService constructs the engagement history service.
func NewEngagementService(store repository.Store) EngagementService {
	return &engagementService{store: store}
}

func (s *engagementService) History(ctx context.Context, userID uint, limit int) (dto.EngagementHistoryResponse, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return dto.EngagementHistoryResponse{}, notFoundOr(err, ErrUserNotFound, "load user")
	}

	entries, err := s.store.Engagement().ListByUser(ctx, userID, limit)
	if err != nil {
		return dto.EngagementHistoryResponse{}, fmt.Errorf("list engagement entries: %w", err)
	}

	return dto.EngagementHistoryResponse{
		UserID:          user.ID,
		EngagementScore: user.EngagementScore,
		Entries:         dto.NewEngagementEntryResponseSlice(entries),
	}, nil
}
