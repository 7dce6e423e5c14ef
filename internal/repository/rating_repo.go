package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/konverge-api/internal/models"
)

// RatingRepository persists peer ratings.
type RatingRepository interface {
	GetByID(ctx context.Context, id uint) (models.Rating, error)
	GetForUpdate(ctx context.Context, id uint) (models.Rating, error)
	Exists(ctx context.Context, projectID, raterID, rateeID uint) (bool, error)
	Create(ctx context.Context, rating *models.Rating) error
	Save(ctx context.Context, rating *models.Rating) error
	// AverageCompleted returns the mean score of the ratee's completed
	// ratings, or zero when there are none.
	AverageCompleted(ctx context.Context, rateeID uint) (float64, error)
	ListPendingByRater(ctx context.Context, raterID uint) ([]models.Rating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository constructs a GORM-backed rating repository.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) GetByID(ctx context.Context, id uint) (models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Ratee").
		First(&rating, id).Error; err != nil {
		return models.Rating{}, err
	}
	return rating, nil
}

func (r *ratingRepository) GetForUpdate(ctx context.Context, id uint) (models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&rating, id).Error; err != nil {
		return models.Rating{}, err
	}
	return rating, nil
}

func (r *ratingRepository) Exists(ctx context.Context, projectID, raterID, rateeID uint) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("project_id = ? AND rater_id = ? AND ratee_id = ?", projectID, raterID, rateeID).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rating).Error
}

func (r *ratingRepository) Save(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rating).Error
}

func (r *ratingRepository) AverageCompleted(ctx context.Context, rateeID uint) (float64, error) {
	var average sql.NullFloat64
	if err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("AVG(score)").
		Where("ratee_id = ? AND status = ? AND score IS NOT NULL", rateeID, models.RatingStatusCompleted).
		Row().
		Scan(&average); err != nil {
		return 0, err
	}
	if !average.Valid {
		return 0, nil
	}
	return average.Float64, nil
}

func (r *ratingRepository) ListPendingByRater(ctx context.Context, raterID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Ratee").
		Where("rater_id = ? AND status = ?", raterID, models.RatingStatusPending).
		Order("created_at DESC").
		Order("id DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
