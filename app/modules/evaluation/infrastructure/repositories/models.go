package evaluationdb

import (
	"time"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EvaluatedCriterion is the lock record of one criterion of one club.
// SubKey is empty for criteria outside a group.
type EvaluatedCriterion struct {
	bun.BaseModel `bun:"table:evaluated_criteria,alias:ec"`

	ID              int64     `bun:"id,pk,autoincrement"`
	ClubUUID        uuid.UUID `bun:"club_uuid,type:uuid,notnull,unique:evaluated_criteria_path"`
	Category        string    `bun:"category,notnull,unique:evaluated_criteria_path"`
	CriteriaKey     string    `bun:"criteria_key,notnull,unique:evaluated_criteria_path"`
	SubKey          string    `bun:"sub_key,notnull,default:'',unique:evaluated_criteria_path"`
	Score           float64   `bun:"score,notnull"`
	EvaluatedBy     uuid.UUID `bun:"evaluated_by,type:uuid,notnull"`
	EvaluatedByName string    `bun:"evaluated_by_name,notnull"`
	EvaluatedAt     time.Time `bun:"evaluated_at,notnull"`
	IsLocked        bool      `bun:"is_locked,notnull"`
	Notes           string    `bun:"notes"`
}

// Path returns the criterion the record locks.
func (e *EvaluatedCriterion) Path() criteriadomain.Path {
	return criteriadomain.Path{Category: e.Category, Key: e.CriteriaKey, SubKey: e.SubKey}
}

// Info converts the record for callers outside the repository.
func (e *EvaluatedCriterion) Info() evaluationdomain.LockInfo {
	return evaluationdomain.LockInfo{
		Path:          e.Path(),
		Score:         e.Score,
		EvaluatedBy:   e.EvaluatedBy,
		EvaluatorName: e.EvaluatedByName,
		EvaluatedAt:   e.EvaluatedAt,
		IsLocked:      e.IsLocked,
		Notes:         e.Notes,
	}
}
