package models

import "time"

// FeedbackStat accumulates how a user's recommendations were received for one
// skill bucket. AcceptRate is derived from the counters on every update.
type FeedbackStat struct {
	UserID               uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Skill                string    `gorm:"primaryKey;size:128" json:"skill"`
	TotalRecommendations int64     `gorm:"not null;default:0" json:"total_recommendations"`
	AcceptedCount        int64     `gorm:"not null;default:0" json:"accepted_count"`
	RejectedCount        int64     `gorm:"not null;default:0" json:"rejected_count"`
	AcceptRate           float64   `gorm:"not null;default:0" json:"accept_rate"`
	LastFeedbackAt       time.Time `json:"last_feedback_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
