package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/konverge-api/internal/models"
)

const defaultEngagementHistoryLimit = 50

// EngagementRepository appends to and reads the engagement ledger.
type EngagementRepository interface {
	Append(ctx context.Context, entry *models.EngagementEntry) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.EngagementEntry, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository constructs a GORM-backed engagement repository.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) Append(ctx context.Context, entry *models.EngagementEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *engagementRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.EngagementEntry, error) {
	if limit <= 0 {
		limit = defaultEngagementHistoryLimit
	}

	var entries []models.EngagementEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
