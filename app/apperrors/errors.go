// Package apperrors holds the error taxonomy callers of the scoring services
// can match with errors.Is and errors.As.
package apperrors

import (
	"errors"
	"fmt"
	"time"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidScore       = errors.New("invalid score")
	ErrExceedsMaximum     = errors.New("score exceeds maximum")
	ErrCriterionLocked    = errors.New("criterion is locked")
	ErrUnauthorized       = errors.New("administrator capability required")
	ErrDuplicateName      = errors.New("club name already exists")
	ErrAlreadyEvaluated   = errors.New("criterion already evaluated")
	ErrDemeritNotLockable = errors.New("demerits cannot be locked")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCatalog     = criteriadomain.ErrInvalidCatalog
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// CriterionNotFound reports a path missing from the catalog.
func CriterionNotFound(p criteriadomain.Path) error {
	return &NotFoundError{Kind: "criterion", ID: p.String()}
}

// InvalidScoreError rejects a value that is not a usable score.
type InvalidScoreError struct {
	Path   criteriadomain.Path
	Value  float64
	Reason string
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid score %v for %s: %s", e.Value, e.Path, e.Reason)
}

func (e *InvalidScoreError) Unwrap() error { return ErrInvalidScore }

// ExceedsMaximumError carries the legal bounds back to the caller.
type ExceedsMaximumError struct {
	Path    criteriadomain.Path
	Value   float64
	Max     float64
	Partial float64
}

func (e *ExceedsMaximumError) Error() string {
	if e.Partial > 0 {
		return fmt.Sprintf("score %v for %s exceeds maximum %v (partial credit %v)", e.Value, e.Path, e.Max, e.Partial)
	}
	return fmt.Sprintf("score %v for %s exceeds maximum %v", e.Value, e.Path, e.Max)
}

func (e *ExceedsMaximumError) Unwrap() error { return ErrExceedsMaximum }

// CriterionLockedError reports who locked the criterion.
type CriterionLockedError struct {
	Path        criteriadomain.Path
	EvaluatedBy uuid.UUID
	EvaluatedAt time.Time
}

func (e *CriterionLockedError) Error() string {
	return fmt.Sprintf("%s was already evaluated on %s and is locked; an administrator must unlock it first",
		e.Path, e.EvaluatedAt.Format(time.RFC3339))
}

func (e *CriterionLockedError) Unwrap() error { return ErrCriterionLocked }

// Unauthorized reports an administrator-only operation attempted by someone else.
func Unauthorized(operation string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, operation)
}

// Code maps an error to a stable machine readable code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidScore):
		return "invalid_score"
	case errors.Is(err, ErrExceedsMaximum):
		return "exceeds_maximum"
	case errors.Is(err, ErrCriterionLocked):
		return "criterion_locked"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, ErrAlreadyEvaluated):
		return "already_evaluated"
	case errors.Is(err, ErrDemeritNotLockable):
		return "demerit_not_lockable"
	case errors.Is(err, ErrInvalidCatalog):
		return "invalid_catalog"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "internal"
	}
}

// IsDomain reports whether err belongs to the taxonomy, as opposed to an
// infrastructure failure.
func IsDomain(err error) bool {
	c := Code(err)
	return c != "" && c != "internal"
}
