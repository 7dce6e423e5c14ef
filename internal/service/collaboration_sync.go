package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// Collaboration start kinds.
const (
	CollaborationCreated     = "created"
	CollaborationReactivated = "reactivated"
)

// SyncResult describes what CollaborationSynchronizer did for one match.
type SyncResult struct {
	// Kind is empty when nothing started.
	Kind          string
	Collaboration *models.Collaboration
	OwnerID       uint
	Ratings       []models.Rating
}

// Started reports whether a collaboration was created or reactivated.
func (r SyncResult) Started() bool {
	return r.Kind != ""
}

// CollaborationSynchronizer turns a mutually accepted match into an active
// collaboration exactly once. It must run inside the decision transaction.
type CollaborationSynchronizer struct {
	engagement *EngagementLedger
	bonus      int
	now        func() time.Time
}

// NewCollaborationSynchronizer constructs the synchronizer.
func NewCollaborationSynchronizer(engagement *EngagementLedger, bonus int) *CollaborationSynchronizer {
	return &CollaborationSynchronizer{
		engagement: engagement,
		bonus:      bonus,
		now:        time.Now,
	}
}

// Sync creates, reactivates or leaves alone the collaboration for the match's
// (project, candidate) pair. Only a creation or reactivation awards the bonus
// and seeds pending ratings.
func (s *CollaborationSynchronizer) Sync(ctx context.Context, tx repository.Store, match models.Match) (SyncResult, error) {
	if !match.MutuallyAccepted() {
		return SyncResult{}, nil
	}

	project, err := tx.Projects().GetByID(ctx, match.ProjectID)
	if err != nil {
		return SyncResult{}, notFoundOr(err, ErrProjectNotFound, "load project")
	}

	now := s.now().UTC()
	result := SyncResult{OwnerID: project.OwnerID}

	collaboration, err := tx.Collaborations().GetByPairForUpdate(ctx, match.ProjectID, match.UserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		collaboration = models.Collaboration{
			ProjectID:     match.ProjectID,
			UserID:        match.UserID,
			RequiredSkill: match.RequiredSkill,
			Status:        models.CollaborationStatusActive,
			JoinedAt:      now,
		}
		if err := tx.Collaborations().Create(ctx, &collaboration); err != nil {
			return SyncResult{}, fmt.Errorf("create collaboration: %w", err)
		}
		result.Kind = CollaborationCreated
	case err != nil:
		return SyncResult{}, fmt.Errorf("load collaboration: %w", err)
	case collaboration.IsActive():
		return result, nil
	default:
		collaboration.Status = models.CollaborationStatusActive
		collaboration.JoinedAt = now
		collaboration.CompletedAt = nil
		if match.RequiredSkill != nil {
			collaboration.RequiredSkill = match.RequiredSkill
		}
		if err := tx.Collaborations().Save(ctx, &collaboration); err != nil {
			return SyncResult{}, fmt.Errorf("reactivate collaboration: %w", err)
		}
		result.Kind = CollaborationReactivated
	}
	result.Collaboration = &collaboration

	for _, userID := range []uint{project.OwnerID, match.UserID} {
		if _, err := s.engagement.Award(ctx, tx, userID, s.bonus, ReasonCollaborationStarted); err != nil {
			return SyncResult{}, err
		}
	}

	ratings, err := s.ensureRatings(ctx, tx, project.ID, project.OwnerID, match.UserID, now)
	if err != nil {
		return SyncResult{}, err
	}
	result.Ratings = ratings

	return result, nil
}

func (s *CollaborationSynchronizer) ensureRatings(ctx context.Context, tx repository.Store, projectID, ownerID, candidateID uint, now time.Time) ([]models.Rating, error) {
	pairs := [][2]uint{{ownerID, candidateID}, {candidateID, ownerID}}
	created := make([]models.Rating, 0, len(pairs))

	for _, pair := range pairs {
		rater, ratee := pair[0], pair[1]
		if rater == ratee {
			continue
		}

		exists, err := tx.Ratings().Exists(ctx, projectID, rater, ratee)
		if err != nil {
			return nil, fmt.Errorf("check rating placeholder: %w", err)
		}
		if exists {
			continue
		}

		rating := models.Rating{
			ProjectID: projectID,
			RaterID:   rater,
			RateeID:   ratee,
			Status:    models.RatingStatusPending,
			CreatedAt: now,
		}
		if err := tx.Ratings().Create(ctx, &rating); err != nil {
			return nil, fmt.Errorf("create rating placeholder: %w", err)
		}
		created = append(created, rating)
	}

	return created, nil
}
