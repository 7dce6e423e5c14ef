package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/noah-isme/konverge-api/internal/models"
)

// CandidateFilter narrows the candidate pool for one project.
type CandidateFilter struct {
	ExcludeUserID uint
	// Ceiling is the exclusive upper bound on active collaborations plus
	// open owned projects.
	Ceiling int
}

// PendingDecisionSummary aggregates the recommendations a user has left
// unanswered past a cutoff.
type PendingDecisionSummary struct {
	User            models.User
	PendingCount    int64
	OldestPendingAt time.Time
}

// UserRepository exposes the profile data the matching core needs.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.User, error)
	AddEngagement(ctx context.Context, id uint, points int) error
	UpdateRating(ctx context.Context, id uint, rating float64) error
	ListStalePending(ctx context.Context, cutoff time.Time) ([]PendingDecisionSummary, error)
	TransitionAccountStatus(ctx context.Context, ids []uint, from, to string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.User, error) {
	query, args, err := candidateQuery(filter)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) AddEngagement(ctx context.Context, id uint, points int) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("engagement_score", gorm.Expr("engagement_score + ?", points))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UpdateRating(ctx context.Context, id uint, rating float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("rating", rating)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListStalePending groups automated recommendations created before cutoff
// that still wait for the candidate, oldest wait first.
func (r *userRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]PendingDecisionSummary, error) {
	var rows []struct {
		UserID    uint
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Select("user_id", "created_at").
		Where("user_decision = ?", models.DecisionPending).
		Where("source = ?", models.MatchSourceAutomated).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []PendingDecisionSummary{}, nil
	}

	// rows arrive oldest first, so first sight order is the result order.
	byUser := make(map[uint]*PendingDecisionSummary)
	order := make([]uint, 0)
	for _, row := range rows {
		summary, ok := byUser[row.UserID]
		if !ok {
			summary = &PendingDecisionSummary{OldestPendingAt: row.CreatedAt}
			byUser[row.UserID] = summary
			order = append(order, row.UserID)
		}
		summary.PendingCount++
	}

	users, err := r.ListByIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		byUser[user.ID].User = user
	}

	summaries := make([]PendingDecisionSummary, 0, len(order))
	for _, id := range order {
		if byUser[id].User.ID == 0 {
			continue
		}
		summaries = append(summaries, *byUser[id])
	}
	return summaries, nil
}

// TransitionAccountStatus moves the listed users from one account status to
// another and reports how many rows changed. Users already past from are
// left untouched.
func (r *userRepository) TransitionAccountStatus(ctx context.Context, ids []uint, from, to string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", ids).
		Where("account_status = ?", from).
		UpdateColumn("account_status", to)
	return result.RowsAffected, result.Error
}

// candidateQuery selects active users other than the excluded one whose
// active collaborations plus open owned projects stay below the ceiling.
// Rows come back in id order.
func candidateQuery(filter CandidateFilter) (string, []interface{}, error) {
	activeSQL, activeArgs, err := sq.Select("COUNT(*)").
		From("collaborations c").
		Where("c.user_id = u.id").
		Where(sq.Eq{"c.status": models.CollaborationStatusActive}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build active collaboration count: %w", err)
	}

	openSQL, openArgs, err := sq.Select("COUNT(*)").
		From("projects p").
		Where("p.owner_id = u.id").
		Where(sq.Eq{"p.status": models.ProjectStatusOpen}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build open project count: %w", err)
	}

	loadArgs := make([]interface{}, 0, len(activeArgs)+len(openArgs)+1)
	loadArgs = append(loadArgs, activeArgs...)
	loadArgs = append(loadArgs, openArgs...)
	loadArgs = append(loadArgs, filter.Ceiling)

	query, args, err := sq.Select("u.*").
		From("users u").
		Where(sq.Eq{"u.account_status": models.AccountStatusActive}).
		Where(sq.NotEq{"u.id": filter.ExcludeUserID}).
		Where(sq.Expr("(("+activeSQL+") + ("+openSQL+")) < ?", loadArgs...)).
		OrderBy("u.id ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build candidate query: %w", err)
	}
	return query, args, nil
}
