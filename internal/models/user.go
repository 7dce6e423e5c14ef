package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// AccountStatusActive marks a user that can receive recommendations.
	AccountStatusActive = "active"
	// AccountStatusFrozen marks a user excluded from matching until reactivated.
	AccountStatusFrozen = "frozen"
)

// User is the profile snapshot the matching core reads during a scoring pass.
type User struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	Name            string                      `gorm:"size:255;not null" json:"name"`
	Email           string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Skills          datatypes.JSONSlice[string] `json:"skills"`
	Rating          float64                     `gorm:"not null;default:0" json:"rating"`
	EngagementScore int                         `gorm:"not null;default:0" json:"engagement_score"`
	AccountStatus   string                      `gorm:"size:32;not null;default:active;index" json:"account_status"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// IsActive reports whether the account is eligible for matching.
func (u User) IsActive() bool {
	return u.AccountStatus == AccountStatusActive
}
