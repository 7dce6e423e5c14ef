package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// ProjectStatusOpen indicates the project is still recruiting collaborators.
	ProjectStatusOpen = "open"
	// ProjectStatusInProgress indicates the team is formed and work has started.
	ProjectStatusInProgress = "in_progress"
	// ProjectStatusCompleted indicates the project is finished.
	ProjectStatusCompleted = "completed"
)

// Project is a collaborative project pitched by an owner.
type Project struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	OwnerID        uint                        `gorm:"not null;index" json:"owner_id"`
	Title          string                      `gorm:"size:255;not null" json:"title"`
	Description    string                      `gorm:"type:text" json:"description"`
	RequiredSkills datatypes.JSONSlice[string] `json:"required_skills"`
	Status         string                      `gorm:"size:32;not null;default:open;index" json:"status"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	Owner          User                        `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"owner"`
}
