package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/konverge-api/internal/matching"
	"github.com/noah-isme/konverge-api/internal/models"
)

// FeedbackRepository stores per-user, per-skill recommendation feedback.
type FeedbackRepository interface {
	// IncrementFeedbackStat adds one observation to the (user, skill) bucket,
	// creating it on first write, and recomputes the accept-rate from the
	// updated counters. The read-modify-write is atomic when the repository
	// belongs to a Store passed to an InTx callback: the row is locked for
	// the rest of the transaction and concurrent first writes collide on the
	// primary key instead of double counting.
	IncrementFeedbackStat(ctx context.Context, userID uint, skill string, accepted bool, at time.Time) (models.FeedbackStat, error)
	Get(ctx context.Context, userID uint, skill string) (models.FeedbackStat, error)
	ListByUsers(ctx context.Context, userIDs []uint) ([]models.FeedbackStat, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository constructs a GORM-backed feedback repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) IncrementFeedbackStat(ctx context.Context, userID uint, skill string, accepted bool, at time.Time) (models.FeedbackStat, error) {
	var stat models.FeedbackStat
	err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("user_id = ? AND skill = ?", userID, skill).
		First(&stat).Error
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		stat = models.FeedbackStat{UserID: userID, Skill: skill}
		created = true
	case err != nil:
		return models.FeedbackStat{}, err
	}

	stat.TotalRecommendations++
	if accepted {
		stat.AcceptedCount++
	} else {
		stat.RejectedCount++
	}
	stat.AcceptRate = matching.AcceptRate(stat.AcceptedCount, stat.TotalRecommendations)
	stat.LastFeedbackAt = at

	if created {
		err = r.db.WithContext(ctx).Create(&stat).Error
	} else {
		err = r.db.WithContext(ctx).Save(&stat).Error
	}
	if err != nil {
		return models.FeedbackStat{}, err
	}
	return stat, nil
}

func (r *feedbackRepository) Get(ctx context.Context, userID uint, skill string) (models.FeedbackStat, error) {
	var stat models.FeedbackStat
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND skill = ?", userID, skill).
		First(&stat).Error; err != nil {
		return models.FeedbackStat{}, err
	}
	return stat, nil
}

func (r *feedbackRepository) ListByUsers(ctx context.Context, userIDs []uint) ([]models.FeedbackStat, error) {
	if len(userIDs) == 0 {
		return []models.FeedbackStat{}, nil
	}

	var stats []models.FeedbackStat
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id ASC").
		Order("skill ASC").
		Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
