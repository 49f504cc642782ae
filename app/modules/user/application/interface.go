package userservice

import (
	"context"

	userdomain "github.com/Black-And-White-Club/campscore/app/modules/user/domain"
	userdb "github.com/Black-And-White-Club/campscore/app/modules/user/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service manages camp staff identities.
type Service interface {
	UpsertUser(ctx context.Context, userUUID uuid.UUID, name string, role userdomain.Role) (*userdb.User, error)
	GetUser(ctx context.Context, userUUID uuid.UUID) (*userdb.User, error)
	ListUsers(ctx context.Context) ([]*userdb.User, error)
}

// ActorResolver turns an opaque caller id into an actor inside a transaction.
type ActorResolver interface {
	Resolve(ctx context.Context, db bun.IDB, actorID uuid.UUID) (*userdomain.Actor, error)
	RequireAdmin(ctx context.Context, db bun.IDB, actorID uuid.UUID, operation string) (*userdomain.Actor, error)
}
