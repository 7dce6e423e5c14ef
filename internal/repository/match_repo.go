package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/konverge-api/internal/models"
)

// MatchRepository persists matches and their decision audit trail.
type MatchRepository interface {
	GetByID(ctx context.Context, id uint) (models.Match, error)
	GetForUpdate(ctx context.Context, id uint) (models.Match, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Match, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Match, error)
	DeleteAutomated(ctx context.Context, projectID uint) (int64, error)
	CreateBatch(ctx context.Context, matches []models.Match) error
	Create(ctx context.Context, match *models.Match) error
	HasManualApplication(ctx context.Context, projectID, userID uint) (bool, error)
	SaveDecision(ctx context.Context, match *models.Match) error
	AppendDecisionLog(ctx context.Context, entry *models.MatchDecisionLog) error
	CountDecisionLogs(ctx context.Context, matchID uint, actor models.DecisionActor, decision models.Decision) (int64, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository constructs a GORM-backed match repository.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) GetByID(ctx context.Context, id uint) (models.Match, error) {
	var match models.Match
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Project").
		First(&match, id).Error; err != nil {
		return models.Match{}, err
	}
	return match, nil
}

func (r *matchRepository) GetForUpdate(ctx context.Context, id uint) (models.Match, error) {
	var match models.Match
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&match, id).Error; err != nil {
		return models.Match{}, err
	}
	return match, nil
}

func (r *matchRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Match, error) {
	var matches []models.Match
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("composite_score DESC").
		Order("id ASC").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) ListByUser(ctx context.Context, userID uint) ([]models.Match, error) {
	var matches []models.Match
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) DeleteAutomated(ctx context.Context, projectID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND source = ?", projectID, models.MatchSourceAutomated).
		Delete(&models.Match{})
	return result.RowsAffected, result.Error
}

func (r *matchRepository) CreateBatch(ctx context.Context, matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&matches).Error
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(match).Error
}

func (r *matchRepository) HasManualApplication(ctx context.Context, projectID, userID uint) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("project_id = ? AND user_id = ? AND source = ?", projectID, userID, models.MatchSourceManual).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *matchRepository) SaveDecision(ctx context.Context, match *models.Match) error {
	return r.db.WithContext(ctx).
		Model(match).
		Omit(clause.Associations).
		Select("owner_decision", "user_decision", "owner_decided_at", "user_decided_at", "updated_at").
		Updates(match).Error
}

func (r *matchRepository) AppendDecisionLog(ctx context.Context, entry *models.MatchDecisionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *matchRepository) CountDecisionLogs(ctx context.Context, matchID uint, actor models.DecisionActor, decision models.Decision) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.MatchDecisionLog{}).
		Where("match_id = ? AND actor_type = ? AND decision = ?", matchID, actor, decision).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
