package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/repository"
)

const week = 7 * 24 * time.Hour

func (f *fixture) userStatusService(now time.Time) *userStatusService {
	svc := NewUserStatusService(f.store, f.policy, testLogger()).(*userStatusService)
	svc.now = func() time.Time { return now }
	return svc
}

func (f *fixture) agedMatch(t *testing.T, projectID, userID uint, skill string, decision models.Decision, createdAt time.Time) {
	t.Helper()
	match := models.Match{
		ProjectID:     projectID,
		UserID:        userID,
		RequiredSkill: skillPtr(skill),
		OwnerDecision: models.DecisionPending,
		UserDecision:  decision,
		Source:        models.MatchSourceAutomated,
		CreatedAt:     createdAt,
	}
	require.NoError(t, f.db.Omit("User", "Project").Create(&match).Error)
}

func TestUserStatusServiceFreezeInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	owner := f.user(t, "owner", 4, 0)
	idle := f.user(t, "idle", 4, 0, "go")
	recent := f.user(t, "recent", 4, 0, "go")
	responsive := f.user(t, "responsive", 4, 0, "go")
	alreadyFrozen := f.user(t, "already", 4, 0, "go")
	require.NoError(t, f.db.Model(&alreadyFrozen).Update("account_status", models.AccountStatusFrozen).Error)

	project := f.project(t, owner.ID, "go", "sql")
	f.agedMatch(t, project.ID, idle.ID, "go", models.DecisionPending, now.Add(-6*week))
	f.agedMatch(t, project.ID, recent.ID, "go", models.DecisionPending, now.Add(-2*week))
	f.agedMatch(t, project.ID, responsive.ID, "go", models.DecisionRejected, now.Add(-9*week))
	f.agedMatch(t, project.ID, alreadyFrozen.ID, "sql", models.DecisionPending, now.Add(-8*week))

	svc := f.userStatusService(now)
	result, err := svc.FreezeInactive(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, result.FrozenCount)
	require.Equal(t, []uint{idle.ID}, result.UserIDs)
	require.True(t, result.Cutoff.Equal(now.Add(-5*week)))

	require.Equal(t, models.AccountStatusFrozen, f.reloadUser(t, idle.ID).AccountStatus)
	require.Equal(t, models.AccountStatusActive, f.reloadUser(t, recent.ID).AccountStatus)
	require.Equal(t, models.AccountStatusActive, f.reloadUser(t, responsive.ID).AccountStatus)

	again, err := svc.FreezeInactive(ctx)
	require.NoError(t, err)
	require.Zero(t, again.FrozenCount)
}

func TestUserStatusServiceListPendingDecisionsOrdersByOldest(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	owner := f.user(t, "owner", 4, 0)
	first := f.user(t, "first", 4, 0, "go")
	second := f.user(t, "second", 4, 0, "go")
	project := f.project(t, owner.ID, "go", "sql")

	f.agedMatch(t, project.ID, first.ID, "go", models.DecisionPending, now.Add(-6*week))
	f.agedMatch(t, project.ID, second.ID, "go", models.DecisionPending, now.Add(-12*week))
	f.agedMatch(t, project.ID, second.ID, "sql", models.DecisionPending, now.Add(-7*week))

	pending, err := f.userStatusService(now).ListPendingDecisions(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.Equal(t, second.ID, pending[0].UserID)
	require.EqualValues(t, 2, pending[0].PendingCount)
	require.Equal(t, "second@example.com", pending[0].Email)
	require.True(t, pending[0].OldestPendingAt.Equal(now.Add(-12*week)))

	require.Equal(t, first.ID, pending[1].UserID)
	require.EqualValues(t, 1, pending[1].PendingCount)
	require.Equal(t, models.AccountStatusActive, pending[1].AccountStatus)
}

func TestUserStatusServiceUnfreeze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.userStatusService(time.Now())

	active := f.user(t, "active", 4, 0)
	frozen := f.user(t, "frozen", 4, 0)
	require.NoError(t, f.db.Model(&frozen).Update("account_status", models.AccountStatusFrozen).Error)

	result, err := svc.Unfreeze(ctx, frozen.ID)
	require.NoError(t, err)
	require.Equal(t, frozen.ID, result.UserID)
	require.Equal(t, models.AccountStatusActive, result.AccountStatus)
	require.Equal(t, models.AccountStatusActive, f.reloadUser(t, frozen.ID).AccountStatus)

	tests := map[string]uint{
		"not frozen":   active.ID,
		"unknown user": 404,
	}
	for name, userID := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Unfreeze(ctx, userID)
			require.ErrorIs(t, err, ErrUserNotFrozen)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFrozenUsersLeaveTheCandidatePool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	owner := f.user(t, "owner", 4, 0)
	idle := f.user(t, "idle", 4, 0, "go")
	attentive := f.user(t, "attentive", 4, 0, "go")
	stale := f.project(t, owner.ID, "go")
	f.agedMatch(t, stale.ID, idle.ID, "go", models.DecisionPending, now.Add(-6*week))

	_, err := f.userStatusService(now).FreezeInactive(ctx)
	require.NoError(t, err)

	candidates, err := f.store.Users().ListCandidates(ctx, repository.CandidateFilter{ExcludeUserID: owner.ID, Ceiling: f.policy.CapacityCeiling})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, attentive.ID, candidates[0].ID)
}
