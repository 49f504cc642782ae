package activitydb

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository for tests.
type FakeRepository struct {
	mu     sync.Mutex
	logs   []ActivityLog
	nextID int64

	AppendFn func(ctx context.Context, db bun.IDB, logs ...*ActivityLog) error
}

var _ Repository = (*FakeRepository)(nil)

// NewFakeRepository returns an empty fake.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{}
}

func (f *FakeRepository) Append(ctx context.Context, db bun.IDB, logs ...*ActivityLog) error {
	if f.AppendFn != nil {
		return f.AppendFn(ctx, db, logs...)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range logs {
		f.nextID++
		l.ID = f.nextID
		f.logs = append(f.logs, *l)
	}
	return nil
}

func (f *FakeRepository) newest(match func(ActivityLog) bool, limit int) []*ActivityLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*ActivityLog
	for i := range f.logs {
		if match(f.logs[i]) {
			l := f.logs[i]
			out = append(out, &l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *FakeRepository) ListByClub(_ context.Context, _ bun.IDB, clubUUID uuid.UUID, limit int) ([]*ActivityLog, error) {
	return f.newest(func(l ActivityLog) bool {
		return l.ClubUUID != nil && *l.ClubUUID == clubUUID
	}, limit), nil
}

func (f *FakeRepository) ListAll(_ context.Context, _ bun.IDB, limit int) ([]*ActivityLog, error) {
	return f.newest(func(ActivityLog) bool { return true }, limit), nil
}

func (f *FakeRepository) DeletePage(_ context.Context, _ bun.IDB, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := min(limit, len(f.logs))
	f.logs = f.logs[n:]
	return n, nil
}

// All returns every stored entry, oldest first.
func (f *FakeRepository) All() []ActivityLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ActivityLog(nil), f.logs...)
}
