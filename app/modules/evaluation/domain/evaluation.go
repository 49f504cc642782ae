// Package evaluationdomain holds the request and report types of the
// evaluation workflow.
package evaluationdomain

import (
	"fmt"
	"time"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// Outcome is the verdict a batch evaluation applies to every club.
type Outcome string

const (
	OutcomeFull    Outcome = "full"
	OutcomePartial Outcome = "partial"
	OutcomeZero    Outcome = "zero"
)

// Value returns the score an outcome awards for a criterion worth maxScore with
// the given partial credit.
func (o Outcome) Value(p criteriadomain.Path, maxScore, partial float64) (float64, error) {
	switch o {
	case OutcomeFull:
		return maxScore, nil
	case OutcomePartial:
		if partial <= 0 {
			return 0, &apperrors.InvalidScoreError{Path: p, Reason: "criterion has no partial credit"}
		}
		return partial, nil
	case OutcomeZero:
		return 0, nil
	default:
		return 0, &apperrors.InvalidScoreError{Path: p, Reason: fmt.Sprintf("unknown outcome %q", o)}
	}
}

// BatchRequest applies one outcome for one criterion to many clubs. Max and
// Partial override the catalog values when set.
type BatchRequest struct {
	ClubIDs     []uuid.UUID         `json:"clubIds"`
	Path        criteriadomain.Path `json:"path"`
	Outcome     Outcome             `json:"outcome"`
	Max         float64             `json:"max,omitempty"`
	Partial     float64             `json:"partial,omitempty"`
	EvaluatorID uuid.UUID           `json:"evaluatorId"`
	Notes       string              `json:"notes,omitempty"`
}

// ClubResult is the outcome of a batch for one club.
type ClubResult struct {
	ClubID   uuid.UUID `json:"clubId"`
	ClubName string    `json:"clubName,omitempty"`
	Success  bool      `json:"success"`
	Score    float64   `json:"score"`
	Reason   string    `json:"reason,omitempty"`
	Code     string    `json:"code,omitempty"`
}

// BatchResult summarizes a batch. Results follow the order of the request.
type BatchResult struct {
	Processed int          `json:"processed"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []ClubResult `json:"results"`
}

// LockInfo describes one evaluated criterion of a club.
type LockInfo struct {
	Path          criteriadomain.Path `json:"path"`
	Score         float64             `json:"score"`
	EvaluatedBy   uuid.UUID           `json:"evaluatedBy"`
	EvaluatorName string              `json:"evaluatorName"`
	EvaluatedAt   time.Time           `json:"evaluatedAt"`
	IsLocked      bool                `json:"isLocked"`
	Notes         string              `json:"notes,omitempty"`
}

// MigrationReport is returned by the legacy reconciliation pass.
type MigrationReport struct {
	ClubsScanned   int `json:"clubsScanned"`
	ClubsRepaired  int `json:"clubsRepaired"`
	LeavesRepaired int `json:"leavesRepaired"`
}

// ResetReport is returned by the full reset operations.
type ResetReport struct {
	LogsDeleted  int `json:"logsDeleted"`
	LocksDeleted int `json:"locksDeleted"`
	ClubsReset   int `json:"clubsReset"`
}

// Drift is a club whose stored total disagrees with the engine.
type Drift struct {
	ClubID   uuid.UUID            `json:"clubId"`
	ClubName string               `json:"clubName"`
	Stored   scoringdomain.Result `json:"stored"`
	Computed scoringdomain.Result `json:"computed"`
}
