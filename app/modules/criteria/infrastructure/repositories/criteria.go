package criteriadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new criteria repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Get returns the stored override.
func (r *Impl) Get(ctx context.Context, db bun.IDB) (*CatalogOverride, error) {
	db = r.resolveDB(db)
	row := new(CatalogOverride)
	err := db.NewSelect().
		Model(row).
		Where("id = ?", overrideRowID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get criteria override: %w", err)
	}
	row.Catalog.Version = row.Version
	return row, nil
}

// Save upserts the override, bumping the version on every replace.
func (r *Impl) Save(ctx context.Context, db bun.IDB, catalog *criteriadomain.Catalog, updatedBy uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	row := &CatalogOverride{
		ID:        overrideRowID,
		Version:   1,
		Catalog:   *catalog,
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("catalog = EXCLUDED.catalog").
		Set("updated_by = EXCLUDED.updated_by").
		Set("updated_at = EXCLUDED.updated_at").
		Set("version = co.version + 1").
		Returning("version").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to save criteria override: %w", err)
	}
	return row.Version, nil
}

// Delete removes the override.
func (r *Impl) Delete(ctx context.Context, db bun.IDB) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*CatalogOverride)(nil)).
		Where("id = ?", overrideRowID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete criteria override: %w", err)
	}
	return nil
}
