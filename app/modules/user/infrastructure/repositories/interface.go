package userdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for user persistence.
type Repository interface {
	GetByUUID(ctx context.Context, db bun.IDB, userUUID uuid.UUID) (*User, error)
	Upsert(ctx context.Context, db bun.IDB, user *User) error
	List(ctx context.Context, db bun.IDB) ([]*User, error)
}
