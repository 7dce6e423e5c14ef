package models

import "time"

// EngagementEntry is one append-only points award. The running total lives on User.
type EngagementEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Points    int       `gorm:"not null" json:"points"`
	Reason    string    `gorm:"size:64;not null" json:"reason"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
