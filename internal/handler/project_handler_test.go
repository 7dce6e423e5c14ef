package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/handler"
	"github.com/noah-isme/konverge-api/internal/service"
)

type stubRecommendationService struct {
	result    dto.RecommendationResponse
	err       error
	projectID uint
}

func (s *stubRecommendationService) Generate(_ context.Context, projectID uint) (dto.RecommendationResponse, error) {
	s.projectID = projectID
	return s.result, s.err
}

type stubApplicationService struct {
	projectID uint
	userID    uint
	err       error
}

func (s *stubApplicationService) Apply(_ context.Context, projectID, userID uint) (dto.MatchResponse, error) {
	s.projectID = projectID
	s.userID = userID
	if s.err != nil {
		return dto.MatchResponse{}, s.err
	}
	return dto.MatchResponse{ID: 11, ProjectID: projectID, UserID: userID, Source: "manual"}, nil
}

type stubMatchService struct {
	byProject []dto.MatchResponse
	byUser    []dto.MatchResponse
	err       error
	userID    uint
}

func (s *stubMatchService) ListForProject(context.Context, uint) ([]dto.MatchResponse, error) {
	return s.byProject, s.err
}

func (s *stubMatchService) ListForUser(_ context.Context, userID uint) ([]dto.MatchResponse, error) {
	s.userID = userID
	return s.byUser, s.err
}

func newProjectHandler(recs *stubRecommendationService, apps *stubApplicationService, matches *stubMatchService) *handler.ProjectHandler {
	return handler.NewProjectHandler(recs, apps, matches, validator.New(), zerolog.Nop())
}

func TestProjectHandlerGenerate(t *testing.T) {
	recs := &stubRecommendationService{result: dto.RecommendationResponse{
		ProjectID:   5,
		Replaced:    2,
		Matches:     []dto.MatchResponse{{ID: 1, ProjectID: 5, UserID: 9}},
		GeneratedAt: time.Now(),
	}}
	app := newTestApp(1)
	newProjectHandler(recs, &stubApplicationService{}, &stubMatchService{}).Register(app.Group("/projects"))

	resp, body := doJSON(t, app, http.MethodPost, "/projects/5/recommendations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, body.Success)
	require.Equal(t, uint(5), recs.projectID)

	var result dto.RecommendationResponse
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Len(t, result.Matches, 1)
	require.Equal(t, int64(2), result.Replaced)
}

func TestProjectHandlerGenerateMapsNotFound(t *testing.T) {
	recs := &stubRecommendationService{err: service.ErrProjectNotFound}
	app := newTestApp(1)
	newProjectHandler(recs, &stubApplicationService{}, &stubMatchService{}).Register(app.Group("/projects"))

	resp, body := doJSON(t, app, http.MethodPost, "/projects/5/recommendations", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "project_not_found", body.Code)
}

func TestProjectHandlerGenerateHidesInternalErrors(t *testing.T) {
	recs := &stubRecommendationService{err: errors.New("connection reset")}
	app := newTestApp(1)
	newProjectHandler(recs, &stubApplicationService{}, &stubMatchService{}).Register(app.Group("/projects"))

	resp, body := doJSON(t, app, http.MethodPost, "/projects/5/recommendations", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "internal_error", body.Code)
	require.NotContains(t, body.Message, "connection reset")
}

func TestProjectHandlerRejectsInvalidID(t *testing.T) {
	app := newTestApp(1)
	newProjectHandler(&stubRecommendationService{}, &stubApplicationService{}, &stubMatchService{}).Register(app.Group("/projects"))

	resp, body := doJSON(t, app, http.MethodPost, "/projects/abc/recommendations", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_id", body.Code)
}

func TestProjectHandlerApplyUsesAuthenticatedUser(t *testing.T) {
	apps := &stubApplicationService{}
	app := newTestApp(7)
	newProjectHandler(&stubRecommendationService{}, apps, &stubMatchService{}).Register(app.Group("/projects"))

	resp, body := doJSON(t, app, http.MethodPost, "/projects/3/apply", map[string]interface{}{"user_id": 99})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, body.Success)
	require.Equal(t, uint(3), apps.projectID)
	require.Equal(t, uint(7), apps.userID)
}

func TestProjectHandlerApplyFallsBackToBodyUser(t *testing.T) {
	apps := &stubApplicationService{}
	app := newTestApp(0)
	newProjectHandler(&stubRecommendationService{}, apps, &stubMatchService{}).Register(app.Group("/projects"))

	resp, _ := doJSON(t, app, http.MethodPost, "/projects/3/apply", map[string]interface{}{"user_id": 12})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(12), apps.userID)

	resp, body := doJSON(t, app, http.MethodPost, "/projects/3/apply", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "unauthorized", body.Code)
}

func TestProjectHandlerApplyMapsConflicts(t *testing.T) {
	cases := map[string]struct {
		err  error
		code string
	}{
		"duplicate": {err: service.ErrDuplicateApplication, code: "duplicate_application"},
		"self":      {err: service.ErrSelfApplication, code: "self_application"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(7)
			newProjectHandler(&stubRecommendationService{}, &stubApplicationService{err: tc.err}, &stubMatchService{}).Register(app.Group("/projects"))

			resp, body := doJSON(t, app, http.MethodPost, "/projects/3/apply", nil)
			require.Equal(t, http.StatusConflict, resp.StatusCode)
			require.Equal(t, tc.code, body.Code)
		})
	}
}

func TestProjectHandlerListMatches(t *testing.T) {
	matches := &stubMatchService{byProject: []dto.MatchResponse{{ID: 1}, {ID: 2}}}
	app := newTestApp(1)
	newProjectHandler(&stubRecommendationService{}, &stubApplicationService{}, matches).Register(app.Group("/projects"))

	resp, body := doJSON(t, app, http.MethodGet, "/projects/4/matches", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var meta map[string]int
	require.NoError(t, json.Unmarshal(body.Meta, &meta))
	require.Equal(t, 2, meta["total"])
}
