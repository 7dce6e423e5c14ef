package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/konverge-api/internal/matching"
	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// FeedbackLedger learns from decisions on automated recommendations.
type FeedbackLedger struct {
	now func() time.Time
}

// NewFeedbackLedger constructs the ledger.
func NewFeedbackLedger() *FeedbackLedger {
	return &FeedbackLedger{now: time.Now}
}

// Record adds one decision to the user's bucket for the skill. A nil skill
// lands in the general bucket.
func (l *FeedbackLedger) Record(ctx context.Context, store repository.Store, userID uint, skill *string, accepted bool) (models.FeedbackStat, error) {
	stat, err := store.Feedback().IncrementFeedbackStat(ctx, userID, matching.Bucket(skill), accepted, l.now().UTC())
	if err != nil {
		return models.FeedbackStat{}, fmt.Errorf("increment feedback stat: %w", err)
	}
	return stat, nil
}

// Snapshot loads the accept-rates of all given users in one query.
func (l *FeedbackLedger) Snapshot(ctx context.Context, store repository.Store, userIDs []uint) (matching.AcceptRates, error) {
	stats, err := store.Feedback().ListByUsers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load feedback stats: %w", err)
	}

	rates := make(matching.AcceptRates, len(stats))
	for _, stat := range stats {
		rates[matching.AcceptRateKey{UserID: stat.UserID, Skill: stat.Skill}] = stat.AcceptRate
	}
	return rates, nil
}

// Resolve returns the accept-rate for one user and skill with the general
// bucket fallback.
func (l *FeedbackLedger) Resolve(ctx context.Context, store repository.Store, userID uint, skill string) (float64, error) {
	rates, err := l.Snapshot(ctx, store, []uint{userID})
	if err != nil {
		return 0, err
	}
	return rates.Resolve(userID, skill), nil
}
