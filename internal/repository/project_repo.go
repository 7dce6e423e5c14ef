package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/konverge-api/internal/models"
)

// ProjectRepository reads projects owned by the surrounding application.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (models.Project, error)
	CountOpenByOwner(ctx context.Context, ownerID uint) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository constructs a GORM-backed project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (r *projectRepository) CountOpenByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("owner_id = ? AND status = ?", ownerID, models.ProjectStatusOpen).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
