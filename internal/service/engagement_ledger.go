package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/repository"
)

// EngagementLedger appends point awards and keeps the user's running score in
// step with the ledger.
type EngagementLedger struct {
	now func() time.Time
}

// NewEngagementLedger constructs the ledger.
func NewEngagementLedger() *EngagementLedger {
	return &EngagementLedger{now: time.Now}
}

// Award records points for the user. A zero user or non-positive points is a
// no-op and reports false.
func (l *EngagementLedger) Award(ctx context.Context, store repository.Store, userID uint, points int, reason string) (bool, error) {
	if userID == 0 || points <= 0 {
		return false, nil
	}

	err := store.InTx(ctx, func(tx repository.Store) error {
		entry := models.EngagementEntry{
			UserID:    userID,
			Points:    points,
			Reason:    reason,
			CreatedAt: l.now().UTC(),
		}
		if err := tx.Engagement().Append(ctx, &entry); err != nil {
			return fmt.Errorf("append engagement entry: %w", err)
		}
		if err := tx.Users().AddEngagement(ctx, userID, points); err != nil {
			return notFoundOr(err, ErrUserNotFound, "add engagement points")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
