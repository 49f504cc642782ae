package criteriadb

import (
	"context"
	"sync"
	"time"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository for tests.
type FakeRepository struct {
	mu      sync.Mutex
	row     *CatalogOverride
	version int
}

var _ Repository = (*FakeRepository)(nil)

// NewFakeRepository returns a fake with no override.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{}
}

func (f *FakeRepository) Get(context.Context, bun.IDB) (*CatalogOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.row == nil {
		return nil, ErrNotFound
	}
	cp := *f.row
	cp.Catalog = *f.row.Catalog.Clone()
	cp.Catalog.Version = cp.Version
	return &cp, nil
}

func (f *FakeRepository) Save(_ context.Context, _ bun.IDB, catalog *criteriadomain.Catalog, updatedBy uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version++
	f.row = &CatalogOverride{
		ID:        overrideRowID,
		Version:   f.version,
		Catalog:   *catalog.Clone(),
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now().UTC(),
	}
	return f.version, nil
}

func (f *FakeRepository) Delete(context.Context, bun.IDB) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.row = nil
	return nil
}
