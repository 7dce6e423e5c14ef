package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// MatchService lists matches for projects and users.
type MatchService interface {
	ListForProject(ctx context.Context, projectID uint) ([]dto.MatchResponse, error)
	ListForUser(ctx context.Context, userID uint) ([]dto.MatchResponse, error)
}

type matchService struct {
	store repository.Store
}

// NewMatchService constructs the match listing service.
func NewMatchService(store repository.Store) MatchService {
	return &matchService{store: store}
}

func (s *matchService) ListForProject(ctx context.Context, projectID uint) ([]dto.MatchResponse, error) {
	if _, err := s.store.Projects().GetByID(ctx, projectID); err != nil {
		return nil, notFoundOr(err, ErrProjectNotFound, "load project")
	}

	matches, err := s.store.Matches().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project matches: %w", err)
	}
	return dto.NewMatchResponseSlice(matches), nil
}

func (s *matchService) ListForUser(ctx context.Context, userID uint) ([]dto.MatchResponse, error) {
	matches, err := s.store.Matches().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user matches: %w", err)
	}
	return dto.NewMatchResponseSlice(matches), nil
}
