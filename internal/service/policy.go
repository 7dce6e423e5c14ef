package service

import (
	"time"

	"github.com/noah-isme/konverge-api/internal/matching"
)

// Engagement reasons written to the ledger.
const (
	ReasonMatchAccepted        = "match_accepted"
	ReasonCollaborationStarted = "collaboration_started"
)

// Policy holds the tunable matching constants.
type Policy struct {
	TopPerSkill        int
	CapacityCeiling    int
	AcceptPoints       int
	CollaborationBonus int
	StatusTTL          time.Duration
	// FreezeAfter is how long a recommendation may wait for the candidate
	// before the account is frozen.
	FreezeAfter time.Duration
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		TopPerSkill:        matching.DefaultTopPerSkill,
		CapacityCeiling:    2,
		AcceptPoints:       10,
		CollaborationBonus: 25,
		StatusTTL:          2 * time.Minute,
		FreezeAfter:        5 * 7 * 24 * time.Hour,
	}
}

func (p Policy) withDefaults() Policy {
	defaults := DefaultPolicy()
	if p.TopPerSkill <= 0 {
		p.TopPerSkill = defaults.TopPerSkill
	}
	if p.CapacityCeiling <= 0 {
		p.CapacityCeiling = defaults.CapacityCeiling
	}
	if p.AcceptPoints < 0 {
		p.AcceptPoints = defaults.AcceptPoints
	}
	if p.CollaborationBonus < 0 {
		p.CollaborationBonus = defaults.CollaborationBonus
	}
	if p.StatusTTL <= 0 {
		p.StatusTTL = defaults.StatusTTL
	}
	if p.FreezeAfter <= 0 {
		p.FreezeAfter = defaults.FreezeAfter
	}
	return p
}
