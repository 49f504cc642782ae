package userdb

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository for tests.
type FakeRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]User

	GetByUUIDFn func(ctx context.Context, db bun.IDB, userUUID uuid.UUID) (*User, error)
}

var _ Repository = (*FakeRepository)(nil)

// NewFakeRepository seeds a fake with the given users.
func NewFakeRepository(users ...*User) *FakeRepository {
	f := &FakeRepository{users: map[uuid.UUID]User{}}
	for _, u := range users {
		f.users[u.UUID] = *u
	}
	return f
}

func (f *FakeRepository) GetByUUID(ctx context.Context, db bun.IDB, userUUID uuid.UUID) (*User, error) {
	if f.GetByUUIDFn != nil {
		return f.GetByUUIDFn(ctx, db, userUUID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userUUID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (f *FakeRepository) Upsert(_ context.Context, _ bun.IDB, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = map[uuid.UUID]User{}
	}
	f.users[user.UUID] = *user
	return nil
}

func (f *FakeRepository) List(_ context.Context, _ bun.IDB) ([]*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*User, 0, len(f.users))
	for _, u := range f.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
