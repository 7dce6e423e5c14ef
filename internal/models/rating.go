package models

import "time"

const (
	// RatingStatusPending is the placeholder created when a collaboration begins.
	RatingStatusPending = "pending"
	// RatingStatusCompleted is set once the rater submits a score.
	RatingStatusCompleted = "completed"
)

// Rating is a peer rating between two collaborators of a project.
type Rating struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProjectID   uint       `gorm:"not null;uniqueIndex:idx_ratings_project_rater_ratee" json:"project_id"`
	RaterID     uint       `gorm:"not null;uniqueIndex:idx_ratings_project_rater_ratee;index" json:"rater_id"`
	RateeID     uint       `gorm:"not null;uniqueIndex:idx_ratings_project_rater_ratee;index" json:"ratee_id"`
	Score       *float64   `json:"score"`
	Feedback    string     `gorm:"type:text" json:"feedback"`
	Status      string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Project     Project    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"project"`
	Ratee       User       `gorm:"foreignKey:RateeID" json:"ratee"`
}

// IsCompleted reports whether the rating was already submitted.
func (r Rating) IsCompleted() bool {
	return r.Status == RatingStatusCompleted
}
