package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/konverge-api/internal/dto"
	"github.com/noah-isme/konverge-api/internal/models"
	"github.com/noah-isme/konverge-api/internal/observability"
	"github.com/noah-isme/konverge-api/internal/repository"
)

const (
	minRatingScore = 0.0
	maxRatingScore = 5.0
)

// RatingService completes peer ratings and maintains the ratee's average.
type RatingService interface {
	Submit(ctx context.Context, ratingID, raterID uint, score float64, feedback string) (dto.RatingResponse, error)
	ListPending(ctx context.Context, raterID uint) ([]dto.RatingResponse, error)
}

type ratingService struct {
	store       repository.Store
	broadcaster Broadcaster
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewRatingService constructs the rating aggregator.
func NewRatingService(store repository.Store, broadcaster Broadcaster, logger zerolog.Logger) RatingService {
	return &ratingService{
		store:       store,
		broadcaster: broadcaster,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "rating_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/konverge-api/internal/service/rating"),
		now:         time.Now,
	}
}

// NormalizeScore validates a submitted score and rounds it half away from
// zero to one decimal.
func NormalizeScore(score float64) (float64, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < minRatingScore || score > maxRatingScore {
		return 0, ErrInvalidScore
	}
	rounded := math.Round(score*10) / 10
	return math.Max(minRatingScore, math.Min(maxRatingScore, rounded)), nil
}

func (s *ratingService) Submit(ctx context.Context, ratingID, raterID uint, score float64, feedback string) (dto.RatingResponse, error) {
	normalized, err := NormalizeScore(score)
	if err != nil {
		return dto.RatingResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "ratings.submit", trace.WithAttributes(
		attribute.Int64("rating.id", int64(ratingID)),
		attribute.Int64("rating.rater_id", int64(raterID)),
		attribute.Float64("rating.score", normalized),
	))
	defer span.End()

	var (
		rating  models.Rating
		average float64
	)
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		rating, err = tx.Ratings().GetForUpdate(ctx, ratingID)
		if err != nil {
			return notFoundOr(err, ErrRatingNotFound, "load rating")
		}
		if rating.RaterID != raterID {
			return ErrRatingForbidden
		}
		if rating.IsCompleted() {
			return ErrRatingAlreadyCompleted
		}
		if rating.RaterID == rating.RateeID {
			return ErrInvalidParticipants
		}

		completedAt := s.now().UTC()
		rating.Score = &normalized
		rating.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(feedback))
		rating.Status = models.RatingStatusCompleted
		rating.CompletedAt = &completedAt
		if err := tx.Ratings().Save(ctx, &rating); err != nil {
			return fmt.Errorf("save rating: %w", err)
		}

		average, err = tx.Ratings().AverageCompleted(ctx, rating.RateeID)
		if err != nil {
			return fmt.Errorf("average ratings: %w", err)
		}
		if err := tx.Users().UpdateRating(ctx, rating.RateeID, average); err != nil {
			return notFoundOr(err, ErrUserNotFound, "update ratee rating")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit_rating_failed")
		return dto.RatingResponse{}, err
	}

	observability.RatingsSubmitted().Inc()
	span.SetAttributes(attribute.Float64("rating.ratee_average", average))

	reloaded, err := s.store.Ratings().GetByID(ctx, rating.ID)
	if err != nil {
		span.RecordError(err)
		return dto.RatingResponse{}, notFoundOr(err, ErrRatingNotFound, "reload rating")
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(ctx, Event{
			Type:       EventRatingCompleted,
			ProjectID:  reloaded.ProjectID,
			Recipients: []uint{reloaded.RateeID},
			Data: map[string]interface{}{
				"rating_id": reloaded.ID,
				"score":     normalized,
				"average":   average,
			},
		})
	}

	return dto.NewRatingResponse(reloaded), nil
}

func (s *ratingService) ListPending(ctx context.Context, raterID uint) ([]dto.RatingResponse, error) {
	ratings, err := s.store.Ratings().ListPendingByRater(ctx, raterID)
	if err != nil {
		return nil, fmt.Errorf("list pending ratings: %w", err)
	}
	return dto.NewRatingResponseSlice(ratings), nil
}
