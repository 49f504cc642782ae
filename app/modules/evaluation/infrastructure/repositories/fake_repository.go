package evaluationdb

import (
	"context"
	"sort"
	"sync"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type recordKey struct {
	club uuid.UUID
	path criteriadomain.Path
}

// FakeRepository is an in-memory Repository for tests.
type FakeRepository struct {
	mu      sync.Mutex
	records map[recordKey]EvaluatedCriterion
	nextID  int64

	UpsertFn func(ctx context.Context, db bun.IDB, record *EvaluatedCriterion) error
}

var _ Repository = (*FakeRepository)(nil)

// NewFakeRepository returns a fake seeded with records.
func NewFakeRepository(records ...*EvaluatedCriterion) *FakeRepository {
	f := &FakeRepository{records: map[recordKey]EvaluatedCriterion{}}
	for _, r := range records {
		f.put(r)
	}
	return f
}

func (f *FakeRepository) put(r *EvaluatedCriterion) {
	k := recordKey{club: r.ClubUUID, path: r.Path()}
	if existing, ok := f.records[k]; ok {
		r.ID = existing.ID
	} else {
		f.nextID++
		r.ID = f.nextID
	}
	f.records[k] = *r
}

func (f *FakeRepository) Get(_ context.Context, _ bun.IDB, clubUUID uuid.UUID, path criteriadomain.Path) (*EvaluatedCriterion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[recordKey{club: clubUUID, path: path}]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (f *FakeRepository) ListByClub(_ context.Context, _ bun.IDB, clubUUID uuid.UUID) ([]*EvaluatedCriterion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*EvaluatedCriterion
	for k, r := range f.records {
		if k.club == clubUUID {
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path().String() < out[j].Path().String() })
	return out, nil
}

func (f *FakeRepository) ListLockedClubs(context.Context, bun.IDB) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for k, r := range f.records {
		if r.IsLocked && !seen[k.club] {
			seen[k.club] = true
			out = append(out, k.club)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (f *FakeRepository) Upsert(ctx context.Context, db bun.IDB, record *EvaluatedCriterion) error {
	if f.UpsertFn != nil {
		return f.UpsertFn(ctx, db, record)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(record)
	return nil
}

func (f *FakeRepository) SetLocked(_ context.Context, _ bun.IDB, clubUUID uuid.UUID, path criteriadomain.Path, locked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := recordKey{club: clubUUID, path: path}
	r, ok := f.records[k]
	if !ok {
		return ErrNotFound
	}
	r.IsLocked = locked
	f.records[k] = r
	return nil
}

func (f *FakeRepository) DeletePage(_ context.Context, _ bun.IDB, clubUUID *uuid.UUID, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []recordKey
	for k := range f.records {
		if clubUUID == nil || k.club == *clubUUID {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return f.records[keys[i]].ID < f.records[keys[j]].ID })
	n := min(limit, len(keys))
	for _, k := range keys[:n] {
		delete(f.records, k)
	}
	return n, nil
}

// All returns every record ordered by id.
func (f *FakeRepository) All() []EvaluatedCriterion {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]EvaluatedCriterion, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
