package evaluationdb

import (
	"context"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for the lock ledger.
type Repository interface {
	// Get returns the record for one criterion of a club.
	Get(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, path criteriadomain.Path) (*EvaluatedCriterion, error)

	// ListByClub returns every record of a club in path order.
	ListByClub(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) ([]*EvaluatedCriterion, error)

	// ListLockedClubs returns the clubs holding at least one locked record.
	ListLockedClubs(ctx context.Context, db bun.IDB) ([]uuid.UUID, error)

	// Upsert inserts a record or replaces score, evaluator, timestamp, lock
	// state and notes of the existing one.
	Upsert(ctx context.Context, db bun.IDB, record *EvaluatedCriterion) error

	// SetLocked flips the lock flag of an existing record.
	SetLocked(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, path criteriadomain.Path, locked bool) error

	// DeletePage removes up to limit records, for one club when clubUUID is
	// set, and reports how many were removed.
	DeletePage(ctx context.Context, db bun.IDB, clubUUID *uuid.UUID, limit int) (int, error)
}
