package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ErrUnknownDecision is returned when a decision value is outside the accepted set.
var ErrUnknownDecision = errors.New("unknown decision")

// Decision is the per-actor state of a match.
type Decision string

const (
	// DecisionPending is the initial state for both actors.
	DecisionPending Decision = "pending"
	// DecisionAccepted records a positive decision.
	DecisionAccepted Decision = "accepted"
	// DecisionRejected records a negative decision.
	DecisionRejected Decision = "rejected"
)

// ParseDecision converts a submitted value into a Decision. Only accepted and
// rejected can be submitted; matching is case-insensitive.
func ParseDecision(raw string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionAccepted:
		return DecisionAccepted, nil
	case DecisionRejected:
		return DecisionRejected, nil
	default:
		return "", ErrUnknownDecision
	}
}

// Transition reports whether moving from d to next changes the stored state.
// Re-submitting the current decision is a no-op; the opposite decision
// overwrites the previous one.
func (d Decision) Transition(next Decision) (bool, error) {
	switch next {
	case DecisionAccepted, DecisionRejected:
	default:
		return false, ErrUnknownDecision
	}

	switch d {
	case DecisionPending, "":
		return true, nil
	case DecisionAccepted, DecisionRejected:
		return d != next, nil
	default:
		return false, ErrUnknownDecision
	}
}

// MatchSource distinguishes system recommendations from user applications.
type MatchSource string

const (
	// MatchSourceAutomated rows are produced by recommendation generation.
	MatchSourceAutomated MatchSource = "automated"
	// MatchSourceManual rows are created when a user applies to a project.
	MatchSourceManual MatchSource = "manual"
)

// DecisionActor identifies which side of a match made a decision.
type DecisionActor string

const (
	// ActorOwner is the project owner.
	ActorOwner DecisionActor = "owner"
	// ActorUser is the recommended or applying user.
	ActorUser DecisionActor = "user"
)

// Match pairs a candidate with a project for one required skill. A nil
// RequiredSkill marks a manual application; those rows are unique per
// (project, user) through a partial index since NULL skills never collide.
type Match struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	ProjectID          uint        `gorm:"not null;uniqueIndex:idx_matches_project_user_skill;uniqueIndex:idx_matches_manual_application,where:source = 'manual'" json:"project_id"`
	UserID             uint        `gorm:"not null;uniqueIndex:idx_matches_project_user_skill;uniqueIndex:idx_matches_manual_application,where:source = 'manual';index" json:"user_id"`
	RequiredSkill      *string     `gorm:"size:128;uniqueIndex:idx_matches_project_user_skill" json:"required_skill"`
	SkillMatch         float64     `gorm:"not null;default:0" json:"skill_match"`
	CompositeScore     float64     `gorm:"not null;default:0;index" json:"composite_score"`
	EngagementSnapshot float64     `gorm:"not null;default:0" json:"engagement_snapshot"`
	RatingSnapshot     float64     `gorm:"not null;default:0" json:"rating_snapshot"`
	OwnerDecision      Decision    `gorm:"size:16;not null;default:pending" json:"owner_decision"`
	UserDecision       Decision    `gorm:"size:16;not null;default:pending" json:"user_decision"`
	OwnerDecidedAt     *time.Time  `json:"owner_decided_at"`
	UserDecidedAt      *time.Time  `json:"user_decided_at"`
	Source             MatchSource `gorm:"size:16;not null;default:automated;index" json:"source"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	Project            Project     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"project"`
	User               User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

// DecisionOf returns the current decision of the given actor.
func (m Match) DecisionOf(actor DecisionActor) Decision {
	if actor == ActorOwner {
		return m.OwnerDecision
	}
	return m.UserDecision
}

// ApplyDecision stores the actor's decision and stamps the change.
func (m *Match) ApplyDecision(actor DecisionActor, decision Decision, at time.Time) {
	stamp := at
	if actor == ActorOwner {
		m.OwnerDecision = decision
		m.OwnerDecidedAt = &stamp
	} else {
		m.UserDecision = decision
		m.UserDecidedAt = &stamp
	}
	m.UpdatedAt = at
}

// MutuallyAccepted reports whether both sides accepted the match.
func (m Match) MutuallyAccepted() bool {
	return m.OwnerDecision == DecisionAccepted && m.UserDecision == DecisionAccepted
}

// IsAutomated reports whether the match came from recommendation generation.
func (m Match) IsAutomated() bool {
	return m.Source == MatchSourceAutomated
}

// MatchDecisionLog is the append-only audit trail of decision transitions.
type MatchDecisionLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	MatchID   uint              `gorm:"not null;index" json:"match_id"`
	ActorType DecisionActor     `gorm:"size:16;not null" json:"actor_type"`
	Decision  Decision          `gorm:"size:16;not null" json:"decision"`
	Reason    datatypes.JSONMap `gorm:"type:json" json:"reason"`
	CreatedAt time.Time         `json:"created_at"`
}
