package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Store groups the repositories of one unit of work. The root store runs
// against the connection pool; the store handed to InTx callbacks shares a
// single transaction.
type Store interface {
	Projects() ProjectRepository
	Users() UserRepository
	Matches() MatchRepository
	Feedback() FeedbackRepository
	Collaborations() CollaborationRepository
	Engagement() EngagementRepository
	Ratings() RatingRepository

	// InTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back on error or panic. Nested calls become
	// savepoints of the outer transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// StoreOption customises the store.
type StoreOption func(*gormStore)

// WithIsolation sets the isolation level used for transactions started by InTx.
func WithIsolation(level sql.IsolationLevel) StoreOption {
	return func(s *gormStore) {
		s.isolation = level
	}
}

type gormStore struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
	inTx      bool
}

// NewStore constructs a GORM-backed store.
func NewStore(db *gorm.DB, opts ...StoreOption) Store {
	store := &gormStore{db: db, isolation: sql.LevelDefault}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *gormStore) Projects() ProjectRepository {
	return NewProjectRepository(s.db)
}

func (s *gormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *gormStore) Matches() MatchRepository {
	return NewMatchRepository(s.db)
}

func (s *gormStore) Feedback() FeedbackRepository {
	return NewFeedbackRepository(s.db)
}

func (s *gormStore) Collaborations() CollaborationRepository {
	return NewCollaborationRepository(s.db)
}

func (s *gormStore) Engagement() EngagementRepository {
	return NewEngagementRepository(s.db)
}

func (s *gormStore) Ratings() RatingRepository {
	return NewRatingRepository(s.db)
}

func (s *gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if fn == nil {
		return nil
	}

	var opts []*sql.TxOptions
	if !s.inTx && s.isolation != sql.LevelDefault {
		opts = append(opts, &sql.TxOptions{Isolation: s.isolation})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, isolation: s.isolation, inTx: true})
	}, opts...)
}
