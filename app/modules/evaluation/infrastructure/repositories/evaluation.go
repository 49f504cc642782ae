package evaluationdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new lock ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func wherePath(q *bun.SelectQuery, clubUUID uuid.UUID, p criteriadomain.Path) *bun.SelectQuery {
	return q.Where("club_uuid = ?", clubUUID).
		Where("category = ?", p.Category).
		Where("criteria_key = ?", p.Key).
		Where("sub_key = ?", p.SubKey)
}

// Get returns the record at path.
func (r *Impl) Get(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, path criteriadomain.Path) (*EvaluatedCriterion, error) {
	db = r.resolveDB(db)
	rec := new(EvaluatedCriterion)
	if err := wherePath(db.NewSelect().Model(rec), clubUUID, path).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get evaluated criterion %s: %w", path, err)
	}
	return rec, nil
}

// ListByClub returns a club's records.
func (r *Impl) ListByClub(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) ([]*EvaluatedCriterion, error) {
	db = r.resolveDB(db)
	var recs []*EvaluatedCriterion
	err := db.NewSelect().
		Model(&recs).
		Where("club_uuid = ?", clubUUID).
		Order("category", "criteria_key", "sub_key").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluated criteria: %w", err)
	}
	return recs, nil
}

// ListLockedClubs returns distinct clubs with locked records.
func (r *Impl) ListLockedClubs(ctx context.Context, db bun.IDB) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().
		Model((*EvaluatedCriterion)(nil)).
		ColumnExpr("DISTINCT club_uuid").
		Where("is_locked = ?", true).
		OrderExpr("club_uuid").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list locked clubs: %w", err)
	}
	return ids, nil
}

// Upsert writes the record keyed on club and path.
func (r *Impl) Upsert(ctx context.Context, db bun.IDB, record *EvaluatedCriterion) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(record).
		On("CONFLICT (club_uuid, category, criteria_key, sub_key) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("evaluated_by = EXCLUDED.evaluated_by").
		Set("evaluated_by_name = EXCLUDED.evaluated_by_name").
		Set("evaluated_at = EXCLUDED.evaluated_at").
		Set("is_locked = EXCLUDED.is_locked").
		Set("notes = EXCLUDED.notes").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert evaluated criterion %s: %w", record.Path(), err)
	}
	return nil
}

// SetLocked updates the lock flag.
func (r *Impl) SetLocked(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, path criteriadomain.Path, locked bool) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*EvaluatedCriterion)(nil)).
		Set("is_locked = ?", locked).
		Where("club_uuid = ?", clubUUID).
		Where("category = ?", path.Category).
		Where("criteria_key = ?", path.Key).
		Where("sub_key = ?", path.SubKey).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update lock on %s: %w", path, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePage removes one page of records.
func (r *Impl) DeletePage(ctx context.Context, db bun.IDB, clubUUID *uuid.UUID, limit int) (int, error) {
	db = r.resolveDB(db)
	ids := db.NewSelect().
		Model((*EvaluatedCriterion)(nil)).
		Column("id").
		Order("id").
		Limit(limit)
	if clubUUID != nil {
		ids = ids.Where("club_uuid = ?", *clubUUID)
	}
	res, err := db.NewDelete().
		Model((*EvaluatedCriterion)(nil)).
		Where("id IN (?)", ids).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete evaluated criteria page: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}
