package dto

import (
	"time"

	"github.com/noah-isme/konverge-api/internal/models"
)

// FinishCollaborationRequest marks a collaboration as completed.
type FinishCollaborationRequest struct {
	ProjectID uint `json:"project_id" validate:"required,gt=0"`
	UserID    uint `json:"user_id" validate:"omitempty,gt=0"`
}

// CollaborationResponse is returned for collaboration views.
type CollaborationResponse struct {
	ID            uint         `json:"id"`
	ProjectID     uint         `json:"project_id"`
	UserID        uint         `json:"user_id"`
	RequiredSkill *string      `json:"required_skill"`
	Status        string       `json:"status"`
	JoinedAt      time.Time    `json:"joined_at"`
	CompletedAt   *time.Time   `json:"completed_at"`
	Project       *ProjectLite `json:"project,omitempty"`
}

// CollaborationStatusResponse reports a user's current load against the
// collaboration capacity ceiling.
type CollaborationStatusResponse struct {
	UserID                  uint  `json:"user_id"`
	ActiveCollaborations    int64 `json:"active_collaborations"`
	CompletedCollaborations int64 `json:"completed_collaborations"`
	OpenOwnedProjects       int64 `json:"open_owned_projects"`
	TotalCommitments        int64 `json:"total_commitments"`
	CapacityCeiling         int   `json:"capacity_ceiling"`
	CanJoinNewProjects      bool  `json:"can_join_new_projects"`
	CacheHit                bool  `json:"cache_hit"`
}

// EngagementEntryResponse is one engagement ledger row.
type EngagementEntryResponse struct {
	ID        uint      `json:"id"`
	Points    int       `json:"points"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// EngagementHistoryResponse lists a user's awards next to the running total.
type EngagementHistoryResponse struct {
	UserID          uint                      `json:"user_id"`
	EngagementScore int                       `json:"engagement_score"`
	Entries         []EngagementEntryResponse `json:"entries"`
}

// PendingDecisionUserResponse lists a user whose recommendations have gone
// unanswered past the freeze window.
type PendingDecisionUserResponse struct {
	UserID          uint      `json:"user_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	AccountStatus   string    `json:"account_status"`
	PendingCount    int64     `json:"pending_count"`
	OldestPendingAt time.Time `json:"oldest_pending_at"`
}

// FreezeInactiveResponse reports one freeze sweep.
type FreezeInactiveResponse struct {
	FrozenCount int64     `json:"frozen_count"`
	UserIDs     []uint    `json:"user_ids"`
	Cutoff      time.Time `json:"cutoff"`
}

// AccountStatusResponse reports a user's account status after a change.
type AccountStatusResponse struct {
	UserID        uint   `json:"user_id"`
	AccountStatus string `json:"account_status"`
}

// NewCollaborationResponse converts a Collaboration model into a DTO.
func NewCollaborationResponse(model models.Collaboration) CollaborationResponse {
	response := CollaborationResponse{
		ID:            model.ID,
		ProjectID:     model.ProjectID,
		UserID:        model.UserID,
		RequiredSkill: model.RequiredSkill,
		Status:        model.Status,
		JoinedAt:      model.JoinedAt,
		CompletedAt:   model.CompletedAt,
	}
	if model.Project.ID != 0 {
		project := NewProjectLite(model.Project)
		response.Project = &project
	}
	return response
}

// NewCollaborationResponseSlice converts a slice of collaborations.
func NewCollaborationResponseSlice(items []models.Collaboration) []CollaborationResponse {
	responses := make([]CollaborationResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewCollaborationResponse(item))
	}
	return responses
}

// NewEngagementEntryResponseSlice converts ledger rows.
func NewEngagementEntryResponseSlice(items []models.EngagementEntry) []EngagementEntryResponse {
	responses := make([]EngagementEntryResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, EngagementEntryResponse{
			ID:        item.ID,
			Points:    item.Points,
			Reason:    item.Reason,
			CreatedAt: item.CreatedAt,
		})
	}
	return responses
}
