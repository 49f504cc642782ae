package clubdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new club repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func scanOne(ctx context.Context, q *bun.SelectQuery, what string) (*Club, error) {
	club := new(Club)
	if err := q.Model(club).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get club by %s: %w", what, err)
	}
	if club.Scores == nil {
		club.Scores = scoringdomain.Tree{}
	}
	return club, nil
}

// GetByUUID retrieves a club by its UUID.
func (r *Impl) GetByUUID(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) (*Club, error) {
	db = r.resolveDB(db)
	return scanOne(ctx, db.NewSelect().Where("uuid = ?", clubUUID), "UUID")
}

// GetByUUIDForUpdate retrieves a club with a row lock.
func (r *Impl) GetByUUIDForUpdate(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) (*Club, error) {
	db = r.resolveDB(db)
	return scanOne(ctx, db.NewSelect().Where("uuid = ?", clubUUID).For("UPDATE"), "UUID")
}

// GetByName retrieves a club by name.
func (r *Impl) GetByName(ctx context.Context, db bun.IDB, name string) (*Club, error) {
	db = r.resolveDB(db)
	return scanOne(ctx, db.NewSelect().Where("name = ?", name), "name")
}

// List returns clubs ordered by total score then name.
func (r *Impl) List(ctx context.Context, db bun.IDB, activeOnly bool) ([]*Club, error) {
	db = r.resolveDB(db)
	var clubs []*Club
	q := db.NewSelect().Model(&clubs).OrderExpr("total_score DESC, name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	return clubs, nil
}

// ListPage returns one page of clubs in UUID order.
func (r *Impl) ListPage(ctx context.Context, db bun.IDB, offset, limit int) ([]*Club, error) {
	db = r.resolveDB(db)
	var clubs []*Club
	err := db.NewSelect().
		Model(&clubs).
		Order("uuid").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list club page: %w", err)
	}
	return clubs, nil
}

// Create inserts a club, mapping a unique violation on name to ErrDuplicateName.
func (r *Impl) Create(ctx context.Context, db bun.IDB, club *Club) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	club.CreatedAt = now
	club.UpdatedAt = now
	if _, err := db.NewInsert().Model(club).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == "23505" {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to create club: %w", err)
	}
	return nil
}

// UpdateScores writes the score tree together with its derived fields.
func (r *Impl) UpdateScores(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, scores scoringdomain.Tree, result scoringdomain.Result) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Club)(nil)).
		Set("scores = ?", scores).
		Set("total_score = ?", result.TotalScore).
		Set("classification = ?", result.Classification).
		Set("updated_at = ?", time.Now().UTC()).
		Where("uuid = ?", clubUUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update club scores: %w", err)
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

// Delete removes a club.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Club)(nil)).
		Where("uuid = ?", clubUUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete club: %w", err)
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
