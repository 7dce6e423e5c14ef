package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/konverge-api/internal/models"
)

// CollaborationCounts summarises a user's collaborations by status.
type CollaborationCounts struct {
	Active    int64
	Completed int64
}

// CollaborationRepository persists project collaborations.
type CollaborationRepository interface {
	GetByPairForUpdate(ctx context.Context, projectID, userID uint) (models.Collaboration, error)
	Create(ctx context.Context, collaboration *models.Collaboration) error
	Save(ctx context.Context, collaboration *models.Collaboration) error
	CountByUser(ctx context.Context, userID uint) (CollaborationCounts, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Collaboration, error)
	ListActiveByProject(ctx context.Context, projectID uint) ([]models.Collaboration, error)
}

type collaborationRepository struct {
	db *gorm.DB
}

// NewCollaborationRepository constructs a GORM-backed collaboration repository.
func NewCollaborationRepository(db *gorm.DB) CollaborationRepository {
	return &collaborationRepository{db: db}
}

func (r *collaborationRepository) GetByPairForUpdate(ctx context.Context, projectID, userID uint) (models.Collaboration, error) {
	var collaboration models.Collaboration
	if err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&collaboration).Error; err != nil {
		return models.Collaboration{}, err
	}
	return collaboration, nil
}

func (r *collaborationRepository) Create(ctx context.Context, collaboration *models.Collaboration) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(collaboration).Error
}

func (r *collaborationRepository) Save(ctx context.Context, collaboration *models.Collaboration) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(collaboration).Error
}

func (r *collaborationRepository) CountByUser(ctx context.Context, userID uint) (CollaborationCounts, error) {
	type row struct {
		Status string
		Total  int64
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Collaboration{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return CollaborationCounts{}, err
	}

	var counts CollaborationCounts
	for _, item := range rows {
		switch item.Status {
		case models.CollaborationStatusActive:
			counts.Active = item.Total
		case models.CollaborationStatusCompleted:
			counts.Completed = item.Total
		}
	}
	return counts, nil
}

func (r *collaborationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Collaboration, error) {
	var collaborations []models.Collaboration
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Order("id DESC").
		Find(&collaborations).Error; err != nil {
		return nil, err
	}
	return collaborations, nil
}

func (r *collaborationRepository) ListActiveByProject(ctx context.Context, projectID uint) ([]models.Collaboration, error) {
	var collaborations []models.Collaboration
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, models.CollaborationStatusActive).
		Order("id ASC").
		Find(&collaborations).Error; err != nil {
		return nil, err
	}
	return collaborations, nil
}
