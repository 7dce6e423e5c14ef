package dto

import (
	"time"

	"github.com/noah-isme/konverge-api/internal/models"
)

// DecisionRequest carries an owner or user decision on a match.
type DecisionRequest struct {
	Decision string                 `json:"decision" validate:"required,max=16"`
	Reason   map[string]interface{} `json:"reason"`
}

// ApplyRequest is submitted when a user applies to a project. The applicant
// defaults to the authenticated user.
type ApplyRequest struct {
	UserID uint `json:"user_id" validate:"omitempty,gt=0"`
}

// CandidateLite summarizes the matched user.
type CandidateLite struct {
	ID              uint     `json:"id"`
	Name            string   `json:"name"`
	Skills          []string `json:"skills"`
	Rating          float64  `json:"rating"`
	EngagementScore int      `json:"engagement_score"`
}

// ProjectLite summarizes the matched project.
type ProjectLite struct {
	ID      uint   `json:"id"`
	OwnerID uint   `json:"owner_id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
}

// MatchResponse is returned to API clients for every match view.
type MatchResponse struct {
	ID                 uint           `json:"id"`
	ProjectID          uint           `json:"project_id"`
	UserID             uint           `json:"user_id"`
	RequiredSkill      *string        `json:"required_skill"`
	SkillMatch         float64        `json:"skill_match"`
	CompositeScore     float64        `json:"composite_score"`
	EngagementSnapshot float64        `json:"engagement_snapshot"`
	RatingSnapshot     float64        `json:"rating_snapshot"`
	OwnerDecision      string         `json:"owner_decision"`
	UserDecision       string         `json:"user_decision"`
	OwnerDecidedAt     *time.Time     `json:"owner_decided_at"`
	UserDecidedAt      *time.Time     `json:"user_decided_at"`
	Source             string         `json:"source"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Candidate          *CandidateLite `json:"candidate,omitempty"`
	Project            *ProjectLite   `json:"project,omitempty"`
}

// RecommendationResponse is the result of regenerating a project's recommendations.
type RecommendationResponse struct {
	ProjectID   uint            `json:"project_id"`
	Replaced    int64           `json:"replaced"`
	Matches     []MatchResponse `json:"matches"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// DecisionResponse reports the match after a decision and whether the
// decision changed anything.
type DecisionResponse struct {
	Match         MatchResponse          `json:"match"`
	Changed       bool                   `json:"changed"`
	Collaboration *CollaborationResponse `json:"collaboration,omitempty"`
}

// NewMatchResponse converts a Match model into a DTO. Associations are
// included when loaded.
func NewMatchResponse(model models.Match) MatchResponse {
	response := MatchResponse{
		ID:                 model.ID,
		ProjectID:          model.ProjectID,
		UserID:             model.UserID,
		RequiredSkill:      model.RequiredSkill,
		SkillMatch:         model.SkillMatch,
		CompositeScore:     model.CompositeScore,
		EngagementSnapshot: model.EngagementSnapshot,
		RatingSnapshot:     model.RatingSnapshot,
		OwnerDecision:      string(model.OwnerDecision),
		UserDecision:       string(model.UserDecision),
		OwnerDecidedAt:     model.OwnerDecidedAt,
		UserDecidedAt:      model.UserDecidedAt,
		Source:             string(model.Source),
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}

	if model.User.ID != 0 {
		candidate := NewCandidateLite(model.User)
		response.Candidate = &candidate
	}
	if model.Project.ID != 0 {
		project := NewProjectLite(model.Project)
		response.Project = &project
	}

	return response
}

// NewMatchResponseSlice converts a slice of matches.
func NewMatchResponseSlice(items []models.Match) []MatchResponse {
	responses := make([]MatchResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewMatchResponse(item))
	}
	return responses
}

// NewCandidateLite summarizes a user.
func NewCandidateLite(user models.User) CandidateLite {
	skills := []string(user.Skills)
	if skills == nil {
		skills = []string{}
	}
	return CandidateLite{
		ID:              user.ID,
		Name:            user.Name,
		Skills:          skills,
		Rating:          user.Rating,
		EngagementScore: user.EngagementScore,
	}
}

// NewProjectLite summarizes a project.
func NewProjectLite(project models.Project) ProjectLite {
	return ProjectLite{
		ID:      project.ID,
		OwnerID: project.OwnerID,
		Title:   project.Title,
		Status:  project.Status,
	}
}
