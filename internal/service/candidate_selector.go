package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/konverge-api/internal/matching"
	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// CandidateSelector produces the eligible pool for a project: active users
// other than the owner whose active collaborations plus open owned projects
// stay below the capacity ceiling.
type CandidateSelector struct {
	ceiling int
}

// NewCandidateSelector constructs a selector with the given capacity ceiling.
func NewCandidateSelector(ceiling int) *CandidateSelector {
	if ceiling <= 0 {
		ceiling = DefaultPolicy().CapacityCeiling
	}
	return &CandidateSelector{ceiling: ceiling}
}

// Select returns eligible users ordered by id. An empty pool is not an error.
func (s *CandidateSelector) Select(ctx context.Context, store repository.Store, project models.Project) ([]models.User, error) {
	users, err := store.Users().ListCandidates(ctx, repository.CandidateFilter{
		ExcludeUserID: project.OwnerID,
		Ceiling:       s.ceiling,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return users, nil
}

func candidatesFromUsers(users []models.User) []matching.Candidate {
	candidates := make([]matching.Candidate, 0, len(users))
	for _, user := range users {
		candidates = append(candidates, matching.Candidate{
			UserID:     user.ID,
			Skills:     []string(user.Skills),
			Engagement: float64(user.EngagementScore),
			Rating:     user.Rating,
		})
	}
	return candidates
}
