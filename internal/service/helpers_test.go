package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingBroadcaster) Publish(_ context.Context, events ...Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recordingBroadcaster) Subscribe(uint) (<-chan Event, func()) {
	return make(chan Event), func() {}
}

func (r *recordingBroadcaster) Start(context.Context) {}

func (r *recordingBroadcaster) ofType(eventType string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []Event
	for _, event := range r.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

type fixture struct {
	db     *gorm.DB
	store  repository.Store
	events *recordingBroadcaster
	policy Policy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))

	return &fixture{
		db:     db,
		store:  repository.NewStore(db),
		events: &recordingBroadcaster{},
		policy: DefaultPolicy(),
	}
}

func (f *fixture) user(t *testing.T, name string, rating float64, engagement int, skills ...string) models.User {
	t.Helper()
	user := models.User{
		Name:            name,
		Email:           name + "@example.com",
		Skills:          datatypes.JSONSlice[string](skills),
		Rating:          rating,
		EngagementScore: engagement,
		AccountStatus:   models.AccountStatusActive,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) project(t *testing.T, ownerID uint, skills ...string) models.Project {
	t.Helper()
	project := models.Project{
		OwnerID:        ownerID,
		Title:          "Project",
		RequiredSkills: datatypes.JSONSlice[string](skills),
		Status:         models.ProjectStatusOpen,
	}
	require.NoError(t, f.db.Omit("Owner").Create(&project).Error)
	return project
}

func (f *fixture) match(t *testing.T, projectID, userID uint, skill *string, source models.MatchSource) models.Match {
	t.Helper()
	match := models.Match{
		ProjectID:     projectID,
		UserID:        userID,
		RequiredSkill: skill,
		OwnerDecision: models.DecisionPending,
		UserDecision:  models.DecisionPending,
		Source:        source,
	}
	require.NoError(t, f.db.Omit("User", "Project").Create(&match).Error)
	return match
}

func (f *fixture) feedbackStat(t *testing.T, userID uint, skill string, accepted, total int64) {
	t.Helper()
	stat := models.FeedbackStat{
		UserID:               userID,
		Skill:                skill,
		TotalRecommendations: total,
		AcceptedCount:        accepted,
		RejectedCount:        total - accepted,
		AcceptRate:           float64(accepted) / float64(total),
	}
	require.NoError(t, f.db.Create(&stat).Error)
}

func (f *fixture) reloadUser(t *testing.T, id uint) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, f.db.First(&user, id).Error)
	return user
}

func (f *fixture) recommendationService() RecommendationService {
	return NewRecommendationService(f.store, NewCandidateSelector(f.policy.CapacityCeiling), NewFeedbackLedger(), f.events, f.policy, testLogger())
}

func (f *fixture) decisionService(cache Cache) DecisionService {
	engagement := NewEngagementLedger()
	sync := NewCollaborationSynchronizer(engagement, f.policy.CollaborationBonus)
	return NewDecisionService(f.store, NewFeedbackLedger(), engagement, sync, f.events, cache, f.policy, testLogger())
}

func skillPtr(skill string) *string {
	return &skill
}

// failingInsertStore behaves like the wrapped store except that batch match
// inserts inside transactions fail with err.
type failingInsertStore struct {
	repository.Store
	err error
}

func (s failingInsertStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(failingInsertStore{Store: tx, err: s.err})
	})
}

func (s failingInsertStore) Matches() repository.MatchRepository {
	return failingInsertMatches{MatchRepository: s.Store.Matches(), err: s.err}
}

type failingInsertMatches struct {
	repository.MatchRepository
	err error
}

func (m failingInsertMatches) CreateBatch(context.Context, []models.Match) error {
	return m.err
}
