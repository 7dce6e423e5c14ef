package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/konverge-api/internal/models"
)

func TestEngagementLedgerAward(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "member", 0, 5)
	ledger := NewEngagementLedger()
	ctx := context.Background()

	awarded, err := ledger.Award(ctx, f.store, user.ID, 0, "noop")
	require.NoError(t, err)
	require.False(t, awarded)

	awarded, err = ledger.Award(ctx, f.store, 0, 10, "noop")
	require.NoError(t, err)
	require.False(t, awarded)

	awarded, err = ledger.Award(ctx, f.store, user.ID, -3, "noop")
	require.NoError(t, err)
	require.False(t, awarded)

	awarded, err = ledger.Award(ctx, f.store, user.ID, 10, ReasonMatchAccepted)
	require.NoError(t, err)
	require.True(t, awarded)
	require.Equal(t, 15, f.reloadUser(t, user.ID).EngagementScore)

	_, err = ledger.Award(ctx, f.store, 404, 10, ReasonMatchAccepted)
	require.ErrorIs(t, err, ErrUserNotFound)

	var entries []models.EngagementEntry
	require.NoError(t, f.db.Find(&entries).Error)
	require.Len(t, entries, 1)

	history, err := NewEngagementService(f.store).History(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 15, history.EngagementScore)
	require.Len(t, history.Entries, 1)
	require.Equal(t, ReasonMatchAccepted, history.Entries[0].Reason)
}

func TestFeedbackLedgerResolveFallsBack(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "member", 0, 0)
	ledger := NewFeedbackLedger()
	ctx := context.Background()

	rate, err := ledger.Resolve(ctx, f.store, user.ID, "go")
	require.NoError(t, err)
	require.Zero(t, rate)

	_, err = ledger.Record(ctx, f.store, user.ID, nil, true)
	require.NoError(t, err)
	rate, err = ledger.Resolve(ctx, f.store, user.ID, "go")
	require.NoError(t, err)
	require.Equal(t, 1.0, rate)

	_, err = ledger.Record(ctx, f.store, user.ID, skillPtr(" Go "), false)
	require.NoError(t, err)
	rate, err = ledger.Resolve(ctx, f.store, user.ID, "GO")
	require.NoError(t, err)
	require.Zero(t, rate)
}
