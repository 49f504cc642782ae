package activitydb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for activity log persistence. Entries are
// never updated.
type Repository interface {
	// Append writes entries in order.
	Append(ctx context.Context, db bun.IDB, logs ...*ActivityLog) error

	// ListByClub returns the newest entries for one club.
	ListByClub(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, limit int) ([]*ActivityLog, error)

	// ListAll returns the newest entries across clubs.
	ListAll(ctx context.Context, db bun.IDB, limit int) ([]*ActivityLog, error)

	// DeletePage removes up to limit of the oldest entries and reports how many were removed.
	DeletePage(ctx context.Context, db bun.IDB, limit int) (int, error)
}
