package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/konverge-api/internal/models"
)

func TestDecisionServiceRejectsInvalidDecisionBeforeLookup(t *testing.T) {
	f := newFixture(t)
	svc := f.decisionService(nil)

	_, err := svc.RecordOwnerDecision(context.Background(), 1, 999, "maybe", nil)
	require.ErrorIs(t, err, ErrInvalidDecision)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordUserDecision(context.Background(), 1, 999, "", nil)
	require.ErrorIs(t, err, ErrInvalidDecision)
}

func TestDecisionServiceMatchNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.decisionService(nil).RecordOwnerDecision(context.Background(), 1, 999, "accepted", nil)
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestDecisionServiceRepeatDecisionIsNoop(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 0, 0)
	member := f.user(t, "member", 0, 0, "go")
	project := f.project(t, owner.ID, "go")
	match := f.match(t, project.ID, member.ID, skillPtr("go"), models.MatchSourceAutomated)
	svc := f.decisionService(nil)
	ctx := context.Background()

	first, err := svc.RecordOwnerDecision(ctx, owner.ID, match.ID, "Accepted", map[string]interface{}{"note": "<b>great fit</b>"})
	require.NoError(t, err)
	require.True(t, first.Changed)
	require.Equal(t, "accepted", first.Match.OwnerDecision)
	require.NotNil(t, first.Match.OwnerDecidedAt)

	second, err := svc.RecordOwnerDecision(ctx, owner.ID, match.ID, "accepted", nil)
	require.NoError(t, err)
	require.False(t, second.Changed)
	require.True(t, first.Match.UpdatedAt.Equal(second.Match.UpdatedAt))

	var logs []models.MatchDecisionLog
	require.NoError(t, f.db.Where("match_id = ?", match.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "great fit", logs[0].Reason["note"])

	var stat models.FeedbackStat
	require.NoError(t, f.db.Where("user_id = ? AND skill = ?", member.ID, "go").First(&stat).Error)
	require.Equal(t, int64(1), stat.TotalRecommendations)
	require.Equal(t, int64(1), stat.AcceptedCount)

	require.Len(t, f.events.ofType(EventMatchDecision), 1)
}

func TestDecisionServiceMutualAcceptanceStartsCollaborationOnce(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 0, 0)
	member := f.user(t, "member", 0, 0, "go")
	project := f.project(t, owner.ID, "go")
	match := f.match(t, project.ID, member.ID, skillPtr("go"), models.MatchSourceAutomated)
	svc := f.decisionService(nil)
	ctx := context.Background()

	resp, err := svc.RecordOwnerDecision(ctx, owner.ID, match.ID, "accepted", nil)
	require.NoError(t, err)
	require.Nil(t, resp.Collaboration)

	resp, err = svc.RecordUserDecision(ctx, member.ID, match.ID, "accepted", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Collaboration)
	require.Equal(t, models.CollaborationStatusActive, resp.Collaboration.Status)

	require.Equal(t, 25, f.reloadUser(t, owner.ID).EngagementScore)
	require.Equal(t, 35, f.reloadUser(t, member.ID).EngagementScore)

	var ratings []models.Rating
	require.NoError(t, f.db.Where("project_id = ?", project.ID).Order("id ASC").Find(&ratings).Error)
	require.Len(t, ratings, 2)
	require.Equal(t, owner.ID, ratings[0].RaterID)
	require.Equal(t, member.ID, ratings[0].RateeID)
	require.Equal(t, member.ID, ratings[1].RaterID)
	require.Equal(t, models.RatingStatusPending, ratings[1].Status)

	_, err = svc.RecordUserDecision(ctx, member.ID, match.ID, "rejected", nil)
	require.NoError(t, err)
	resp, err = svc.RecordUserDecision(ctx, member.ID, match.ID, "accepted", nil)
	require.NoError(t, err)
	require.True(t, resp.Changed)
	require.Nil(t, resp.Collaboration)

	var collaborations int64
	require.NoError(t, f.db.Model(&models.Collaboration{}).Where("project_id = ? AND user_id = ?", project.ID, member.ID).Count(&collaborations).Error)
	require.Equal(t, int64(1), collaborations)
	require.Equal(t, 25, f.reloadUser(t, owner.ID).EngagementScore)
	require.Equal(t, 35, f.reloadUser(t, member.ID).EngagementScore)

	var entries int64
	require.NoError(t, f.db.Model(&models.EngagementEntry{}).Count(&entries).Error)
	require.Equal(t, int64(3), entries)

	var stat models.FeedbackStat
	require.NoError(t, f.db.Where("user_id = ? AND skill = ?", member.ID, "go").First(&stat).Error)
	require.Equal(t, int64(4), stat.TotalRecommendations)
	require.Equal(t, int64(3), stat.AcceptedCount)
	require.Equal(t, int64(1), stat.RejectedCount)
	require.InDelta(t, 0.75, stat.AcceptRate, 1e-9)

	require.Len(t, f.events.ofType(EventCollaborationStarted), 1)
}

func TestDecisionServiceReactivatesCompletedCollaboration(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 0, 0)
	member := f.user(t, "member", 0, 0, "go")
	project := f.project(t, owner.ID, "go")
	match := f.match(t, project.ID, member.ID, skillPtr("go"), models.MatchSourceAutomated)
	svc := f.decisionService(nil)
	collaborations := NewCollaborationService(f.store, nil, f.policy, testLogger())
	ctx := context.Background()

	_, err := svc.RecordOwnerDecision(ctx, owner.ID, match.ID, "accepted", nil)
	require.NoError(t, err)
	_, err = svc.RecordUserDecision(ctx, member.ID, match.ID, "accepted", nil)
	require.NoError(t, err)

	finished, err := collaborations.Finish(ctx, owner.ID, project.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, models.CollaborationStatusCompleted, finished.Status)
	require.NotNil(t, finished.CompletedAt)

	_, err = svc.RecordOwnerDecision(ctx, owner.ID, match.ID, "rejected", nil)
	require.NoError(t, err)
	resp, err := svc.RecordOwnerDecision(ctx, owner.ID, match.ID, "accepted", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Collaboration)
	require.Equal(t, models.CollaborationStatusActive, resp.Collaboration.Status)
	require.Nil(t, resp.Collaboration.CompletedAt)

	require.Equal(t, 50, f.reloadUser(t, owner.ID).EngagementScore)

	var ratings int64
	require.NoError(t, f.db.Model(&models.Rating{}).Count(&ratings).Error)
	require.Equal(t, int64(2), ratings)
}

func TestDecisionServiceManualMatchesDoNotFeedLedger(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 0, 0)
	member := f.user(t, "member", 0, 0)
	project := f.project(t, owner.ID, "go")
	match := f.match(t, project.ID, member.ID, nil, models.MatchSourceManual)
	svc := f.decisionService(nil)

	_, err := svc.RecordOwnerDecision(context.Background(), owner.ID, match.ID, "accepted", nil)
	require.NoError(t, err)
	_, err = svc.RecordUserDecision(context.Background(), member.ID, match.ID, "accepted", nil)
	require.NoError(t, err)

	var stats int64
	require.NoError(t, f.db.Model(&models.FeedbackStat{}).Count(&stats).Error)
	require.Zero(t, stats)

	var collaboration models.Collaboration
	require.NoError(t, f.db.Where("project_id = ? AND user_id = ?", project.ID, member.ID).First(&collaboration).Error)
	require.Nil(t, collaboration.RequiredSkill)
}

func TestDecisionServiceRejectsCallerOutsideMatch(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 0, 0)
	member := f.user(t, "member", 0, 0, "go")
	stranger := f.user(t, "stranger", 0, 0)
	project := f.project(t, owner.ID, "go")
	match := f.match(t, project.ID, member.ID, skillPtr("go"), models.MatchSourceAutomated)
	svc := f.decisionService(nil)
	ctx := context.Background()

	cases := map[string]func() error{
		"stranger as owner": func() error {
			_, err := svc.RecordOwnerDecision(ctx, stranger.ID, match.ID, "accepted", nil)
			return err
		},
		"candidate as owner": func() error {
			_, err := svc.RecordOwnerDecision(ctx, member.ID, match.ID, "accepted", nil)
			return err
		},
		"owner as candidate": func() error {
			_, err := svc.RecordUserDecision(ctx, owner.ID, match.ID, "accepted", nil)
			return err
		},
		"anonymous": func() error {
			_, err := svc.RecordUserDecision(ctx, 0, match.ID, "accepted", nil)
			return err
		},
	}

	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.ErrorIs(t, err, ErrDecisionForbidden)
			require.ErrorIs(t, err, ErrForbidden)
			require.Equal(t, "decision_forbidden", ErrorCode(err))
		})
	}

	reloaded, err := f.store.Matches().GetByID(ctx, match.ID)
	require.NoError(t, err)
	require.Equal(t, models.DecisionPending, reloaded.OwnerDecision)
	require.Equal(t, models.DecisionPending, reloaded.UserDecision)

	var logs int64
	require.NoError(t, f.db.Model(&models.MatchDecisionLog{}).Count(&logs).Error)
	require.Zero(t, logs)
	require.Empty(t, f.events.ofType(EventMatchDecision))
}
