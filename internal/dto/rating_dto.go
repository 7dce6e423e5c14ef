package dto

import (
	"time"

	"github.com/noah-isme/konverge-api/internal/models"
)

// RatingSubmitRequest submits a peer rating. The rater defaults to the
// authenticated user.
type RatingSubmitRequest struct {
	RaterID  uint     `json:"rater_id" validate:"omitempty,gt=0"`
	Score    *float64 `json:"score" validate:"required,gte=0,lte=5"`
	Feedback string   `json:"feedback" validate:"max=2000"`
}

// RatingResponse is returned for rating views.
type RatingResponse struct {
	ID          uint           `json:"id"`
	ProjectID   uint           `json:"project_id"`
	RaterID     uint           `json:"rater_id"`
	RateeID     uint           `json:"ratee_id"`
	Score       *float64       `json:"score"`
	Feedback    string         `json:"feedback"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	Project     *ProjectLite   `json:"project,omitempty"`
	Ratee       *CandidateLite `json:"ratee,omitempty"`
}

// NewRatingResponse converts a Rating model into a DTO.
func NewRatingResponse(model models.Rating) RatingResponse {
	response := RatingResponse{
		ID:          model.ID,
		ProjectID:   model.ProjectID,
		RaterID:     model.RaterID,
		RateeID:     model.RateeID,
		Score:       model.Score,
		Feedback:    model.Feedback,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		CompletedAt: model.CompletedAt,
	}
	if model.Project.ID != 0 {
		project := NewProjectLite(model.Project)
		response.Project = &project
	}
	if model.Ratee.ID != 0 {
		ratee := NewCandidateLite(model.Ratee)
		response.Ratee = &ratee
	}
	return response
}

// NewRatingResponseSlice converts a slice of ratings.
func NewRatingResponseSlice(items []models.Rating) []RatingResponse {
	responses := make([]RatingResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewRatingResponse(item))
	}
	return responses
}
