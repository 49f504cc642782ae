package activitydomain

import (
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
)

// Action names what an activity log entry records.
type Action string

const (
	ActionScoreUpdate       Action = "score_update"
	ActionBatchEvaluation   Action = "batch_evaluation"
	ActionCriterionLocked   Action = "criterion_locked"
	ActionCriterionUnlocked Action = "criterion_unlocked"
	ActionLocksCleared      Action = "locks_cleared"
	ActionClubCreated       Action = "club_created"
	ActionClubDeleted       Action = "club_deleted"
	ActionCriteriaUpdated   Action = "criteria_updated"
	ActionCriteriaReset     Action = "criteria_reset"
	ActionScoresFixed       Action = "scores_fixed"
	ActionLegacyMigrated    Action = "legacy_migrated"
	ActionSystemReset       Action = "system_reset"
)

// ScoreChange is the delta of one leaf write.
type ScoreChange struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	OldValue    float64 `json:"oldValue"`
	NewValue    float64 `json:"newValue"`
	Difference  float64 `json:"difference"`
}

// NewScoreChange describes a write at p. The subcategory is the key, joined
// with the sub key when present.
func NewScoreChange(p criteriadomain.Path, oldValue, newValue float64) *ScoreChange {
	sub := p.Key
	if p.SubKey != "" {
		sub = p.Key + "." + p.SubKey
	}
	return &ScoreChange{
		Category:    p.Category,
		Subcategory: sub,
		OldValue:    oldValue,
		NewValue:    newValue,
		Difference:  newValue - oldValue,
	}
}

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// ClampLimit bounds a caller supplied page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLogLimit
	case limit > MaxLogLimit:
		return MaxLogLimit
	default:
		return limit
	}
}
