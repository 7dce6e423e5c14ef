package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/konverge-api/internal/models"
)

func TestNormalizeScore(t *testing.T) {
	cases := []struct {
		in      float64
		want    float64
		wantErr bool
	}{
		{in: 4.96, want: 5.0},
		{in: 4.44, want: 4.4},
		{in: 0, want: 0},
		{in: 5, want: 5},
		{in: 6.0, wantErr: true},
		{in: -0.1, wantErr: true},
	}

	for _, tc := range cases {
		got, err := NormalizeScore(tc.in)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidScore)
			continue
		}
		require.NoError(t, err)
		require.InDelta(t, tc.want, got, 1e-9, "score %v", tc.in)
	}
}

func seedRating(t *testing.T, f *fixture, projectID, raterID, rateeID uint) models.Rating {
	t.Helper()
	rating := models.Rating{ProjectID: projectID, RaterID: raterID, RateeID: rateeID, Status: models.RatingStatusPending}
	require.NoError(t, f.db.Omit("Project", "Ratee").Create(&rating).Error)
	return rating
}

func TestRatingServiceSubmitRecomputesAverage(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 0, 0)
	member := f.user(t, "member", 0, 0)
	peer := f.user(t, "peer", 0, 0)
	project := f.project(t, owner.ID)
	first := seedRating(t, f, project.ID, owner.ID, member.ID)
	second := seedRating(t, f, project.ID, peer.ID, member.ID)
	svc := NewRatingService(f.store, f.events, testLogger())

	resp, err := svc.Submit(context.Background(), first.ID, owner.ID, 4.96, "<script>x</script>solid work")
	require.NoError(t, err)
	require.Equal(t, models.RatingStatusCompleted, resp.Status)
	require.NotNil(t, resp.Score)
	require.InDelta(t, 5.0, *resp.Score, 1e-9)
	require.Equal(t, "solid work", resp.Feedback)
	require.NotNil(t, resp.CompletedAt)
	require.InDelta(t, 5.0, f.reloadUser(t, member.ID).Rating, 1e-9)

	_, err = svc.Submit(context.Background(), second.ID, peer.ID, 3, "")
	require.NoError(t, err)
	require.InDelta(t, 4.0, f.reloadUser(t, member.ID).Rating, 1e-9)

	require.Len(t, f.events.ofType(EventRatingCompleted), 2)
}

func TestRatingServiceSubmitFailures(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 0, 0)
	member := f.user(t, "member", 0, 0)
	project := f.project(t, owner.ID)
	rating := seedRating(t, f, project.ID, owner.ID, member.ID)
	svc := NewRatingService(f.store, f.events, testLogger())
	ctx := context.Background()

	_, err := svc.Submit(ctx, rating.ID, owner.ID, 6.0, "")
	require.ErrorIs(t, err, ErrInvalidScore)

	_, err = svc.Submit(ctx, 404, owner.ID, 4, "")
	require.ErrorIs(t, err, ErrRatingNotFound)

	_, err = svc.Submit(ctx, rating.ID, member.ID, 4, "")
	require.ErrorIs(t, err, ErrRatingForbidden)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Submit(ctx, rating.ID, owner.ID, 4, "")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, rating.ID, owner.ID, 3, "")
	require.ErrorIs(t, err, ErrRatingAlreadyCompleted)
	require.InDelta(t, 4.0, f.reloadUser(t, member.ID).Rating, 1e-9)
}

func TestRatingServiceListPending(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", 0, 0)
	member := f.user(t, "member", 0, 0)
	project := f.project(t, owner.ID)
	seedRating(t, f, project.ID, owner.ID, member.ID)
	seedRating(t, f, project.ID, member.ID, owner.ID)
	svc := NewRatingService(f.store, f.events, testLogger())

	pending, err := svc.ListPending(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, member.ID, pending[0].RateeID)
	require.NotNil(t, pending[0].Ratee)
}
