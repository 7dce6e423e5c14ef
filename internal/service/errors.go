package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error categories. Every domain error unwraps to exactly one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// DomainError is a recoverable failure with a stable code.
type DomainError struct {
	Code    string
	Message string
	Kind    error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the category so callers can use errors.Is(err, ErrNotFound).
func (e *DomainError) Unwrap() error {
	return e.Kind
}

func newDomainError(kind error, code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: kind}
}

var (
	ErrProjectNotFound       = newDomainError(ErrNotFound, "project_not_found", "project not found")
	ErrMatchNotFound         = newDomainError(ErrNotFound, "match_not_found", "match not found")
	ErrRatingNotFound        = newDomainError(ErrNotFound, "rating_not_found", "rating not found")
	ErrUserNotFound          = newDomainError(ErrNotFound, "user_not_found", "user not found")
	ErrCollaborationNotFound = newDomainError(ErrNotFound, "collaboration_not_found", "active collaboration not found")
	ErrUserNotFrozen         = newDomainError(ErrNotFound, "user_not_frozen", "user not found or not frozen")

	ErrInvalidDecision     = newDomainError(ErrInvalidInput, "invalid_decision", "decision must be accepted or rejected")
	ErrInvalidScore        = newDomainError(ErrInvalidInput, "invalid_score", "score must be between 0 and 5")
	ErrInvalidParticipants = newDomainError(ErrInvalidInput, "invalid_participants", "rating requires two distinct participants")

	ErrRatingForbidden        = newDomainError(ErrForbidden, "rating_forbidden", "only the assigned rater can submit this rating")
	ErrCollaborationForbidden = newDomainError(ErrForbidden, "collaboration_forbidden", "only the project owner or the collaborator can finish a collaboration")
	ErrDecisionForbidden      = newDomainError(ErrForbidden, "decision_forbidden", "caller cannot decide on behalf of this side of the match")

	ErrDuplicateApplication   = newDomainError(ErrConflict, "duplicate_application", "user already applied to this project")
	ErrSelfApplication        = newDomainError(ErrConflict, "self_application", "project owners cannot apply to their own project")
	ErrRatingAlreadyCompleted = newDomainError(ErrConflict, "rating_already_completed", "rating already submitted")
)

// ErrorCode returns the stable code of err, or internal_error for
// infrastructure failures.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal_error"
	}
}

func notFoundOr(err error, sentinel error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
