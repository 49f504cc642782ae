package activitydb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new activity log repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Append inserts the given entries.
func (r *Impl) Append(ctx context.Context, db bun.IDB, logs ...*ActivityLog) error {
	if len(logs) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for _, l := range logs {
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
	}
	if _, err := db.NewInsert().Model(&logs).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append activity logs: %w", err)
	}
	return nil
}

// ListByClub returns the newest entries for a club.
func (r *Impl) ListByClub(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, limit int) ([]*ActivityLog, error) {
	db = r.resolveDB(db)
	var logs []*ActivityLog
	err := db.NewSelect().
		Model(&logs).
		Where("club_uuid = ?", clubUUID).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list club activity logs: %w", err)
	}
	return logs, nil
}

// ListAll returns the newest entries.
func (r *Impl) ListAll(ctx context.Context, db bun.IDB, limit int) ([]*ActivityLog, error) {
	db = r.resolveDB(db)
	var logs []*ActivityLog
	err := db.NewSelect().
		Model(&logs).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return logs, nil
}

// DeletePage removes one page of the oldest entries.
func (r *Impl) DeletePage(ctx context.Context, db bun.IDB, limit int) (int, error) {
	db = r.resolveDB(db)
	page := db.NewSelect().
		Model((*ActivityLog)(nil)).
		Column("id").
		Order("id").
		Limit(limit)
	res, err := db.NewDelete().
		Model((*ActivityLog)(nil)).
		Where("id IN (?)", page).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete activity log page: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}
