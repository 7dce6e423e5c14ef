package models

import "time"

const (
	// CollaborationStatusActive marks an ongoing collaboration.
	CollaborationStatusActive = "active"
	// CollaborationStatusCompleted marks a finished collaboration that may be reactivated.
	CollaborationStatusCompleted = "completed"
)

// Collaboration is the working relationship created after mutual acceptance.
type Collaboration struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ProjectID     uint       `gorm:"not null;uniqueIndex:idx_collaborations_project_user" json:"project_id"`
	UserID        uint       `gorm:"not null;uniqueIndex:idx_collaborations_project_user;index" json:"user_id"`
	RequiredSkill *string    `gorm:"size:128" json:"required_skill"`
	Status        string     `gorm:"size:16;not null;default:active;index" json:"status"`
	JoinedAt      time.Time  `json:"joined_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Project       Project    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"project"`
}

// IsActive reports whether the collaboration is ongoing.
func (c Collaboration) IsActive() bool {
	return c.Status == CollaborationStatusActive
}
