package clubdb

import (
	"context"
	"sort"
	"sync"
	"time"

	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository for tests. Returned clubs are
// copies, so callers never alias the stored tree.
type FakeRepository struct {
	mu    sync.Mutex
	clubs map[uuid.UUID]Club
	trace []string

	GetByUUIDFn    func(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) (*Club, error)
	UpdateScoresFn func(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, scores scoringdomain.Tree, result scoringdomain.Result) error
}

var _ Repository = (*FakeRepository)(nil)

// NewFakeRepository returns a fake seeded with clubs.
func NewFakeRepository(clubs ...*Club) *FakeRepository {
	f := &FakeRepository{clubs: map[uuid.UUID]Club{}}
	for _, c := range clubs {
		f.clubs[c.UUID] = copyClub(c)
	}
	return f
}

func copyClub(c *Club) Club {
	out := *c
	if c.Scores == nil {
		out.Scores = scoringdomain.Tree{}
	} else {
		out.Scores = c.Scores.Clone()
	}
	return out
}

func (f *FakeRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the repository calls made so far.
func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeRepository) get(clubUUID uuid.UUID) (*Club, error) {
	c, ok := f.clubs[clubUUID]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyClub(&c)
	return &out, nil
}

func (f *FakeRepository) GetByUUID(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) (*Club, error) {
	if f.GetByUUIDFn != nil {
		return f.GetByUUIDFn(ctx, db, clubUUID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByUUID")
	return f.get(clubUUID)
}

func (f *FakeRepository) GetByUUIDForUpdate(ctx context.Context, db bun.IDB, clubUUID uuid.UUID) (*Club, error) {
	if f.GetByUUIDFn != nil {
		return f.GetByUUIDFn(ctx, db, clubUUID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByUUIDForUpdate")
	return f.get(clubUUID)
}

func (f *FakeRepository) GetByName(_ context.Context, _ bun.IDB, name string) (*Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByName")
	for id, c := range f.clubs {
		if c.Name == name {
			return f.get(id)
		}
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) List(_ context.Context, _ bun.IDB, activeOnly bool) ([]*Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("List")
	var out []*Club
	for _, c := range f.clubs {
		if activeOnly && !c.IsActive {
			continue
		}
		cp := copyClub(&c)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *FakeRepository) ListPage(_ context.Context, _ bun.IDB, offset, limit int) ([]*Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListPage")
	ids := make([]uuid.UUID, 0, len(f.clubs))
	for id := range f.clubs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:min(offset+limit, len(ids))]
	out := make([]*Club, 0, len(ids))
	for _, id := range ids {
		c, _ := f.get(id)
		out = append(out, c)
	}
	return out, nil
}

func (f *FakeRepository) Create(_ context.Context, _ bun.IDB, club *Club) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Create")
	for _, c := range f.clubs {
		if c.Name == club.Name {
			return ErrDuplicateName
		}
	}
	now := time.Now().UTC()
	club.CreatedAt = now
	club.UpdatedAt = now
	f.clubs[club.UUID] = copyClub(club)
	return nil
}

func (f *FakeRepository) UpdateScores(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, scores scoringdomain.Tree, result scoringdomain.Result) error {
	if f.UpdateScoresFn != nil {
		return f.UpdateScoresFn(ctx, db, clubUUID, scores, result)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateScores")
	c, ok := f.clubs[clubUUID]
	if !ok {
		return ErrNotFound
	}
	c.Scores = scores.Clone()
	c.TotalScore = result.TotalScore
	c.Classification = result.Classification
	c.UpdatedAt = time.Now().UTC()
	f.clubs[clubUUID] = c
	return nil
}

func (f *FakeRepository) Delete(_ context.Context, _ bun.IDB, clubUUID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Delete")
	if _, ok := f.clubs[clubUUID]; !ok {
		return ErrNotFound
	}
	delete(f.clubs, clubUUID)
	return nil
}

// All returns a copy of every stored club.
func (f *FakeRepository) All() []*Club {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Club, 0, len(f.clubs))
	for _, c := range f.clubs {
		cp := copyClub(&c)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
