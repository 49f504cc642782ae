package criteriaservice

import (
	"context"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service manages the active criteria catalog.
type Service interface {
	// GetCriteria returns the override when one is stored, the default otherwise.
	GetCriteria(ctx context.Context) (*criteriadomain.Catalog, error)

	// SetCriteria validates and stores an override. Admin only.
	SetCriteria(ctx context.Context, catalog *criteriadomain.Catalog, adminID uuid.UUID) (*criteriadomain.Catalog, error)

	// ResetCriteria drops the override so the default applies again. Admin only.
	ResetCriteria(ctx context.Context, adminID uuid.UUID) error
}

// Provider loads the active catalog inside a caller's transaction.
type Provider interface {
	Load(ctx context.Context, db bun.IDB) (*criteriadomain.Catalog, error)
}
