package criteriadb

import (
	"context"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository stores the catalog override.
type Repository interface {
	// Get returns the current override or ErrNotFound.
	Get(ctx context.Context, db bun.IDB) (*CatalogOverride, error)

	// Save replaces the override and returns its new version.
	Save(ctx context.Context, db bun.IDB, catalog *criteriadomain.Catalog, updatedBy uuid.UUID) (int, error)

	// Delete removes the override. Deleting a missing override is not an error.
	Delete(ctx context.Context, db bun.IDB) error
}
