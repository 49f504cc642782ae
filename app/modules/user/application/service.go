package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	userdomain "github.com/Black-And-White-Club/campscore/app/modules/user/domain"
	userdb "github.com/Black-And-White-Club/campscore/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidUser is returned when a user has no name or an unknown role.
var ErrInvalidUser = errors.New("invalid user")

// UserService implements Service and ActorResolver.
type UserService struct {
	repo userdb.Repository
	op   *operation.Runner
}

var (
	_ Service       = (*UserService)(nil)
	_ ActorResolver = (*UserService)(nil)
)

// NewUserService creates a new UserService.
func NewUserService(
	repo userdb.Repository,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *UserService {
	return &UserService{
		repo: repo,
		op:   operation.NewRunner("UserService", logger, metrics, tracer, db),
	}
}

// UpsertUser creates or updates a staff member.
func (s *UserService) UpsertUser(ctx context.Context, userUUID uuid.UUID, name string, role userdomain.Role) (*userdb.User, error) {
	return operation.Run(s.op, ctx, "UpsertUser", userUUID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*userdb.User, error], error) {
		name = strings.TrimSpace(name)
		if userUUID == uuid.Nil || name == "" || !role.IsValid() {
			return results.FailureResult[*userdb.User, error](fmt.Errorf("%w: id, name and a valid role are required", ErrInvalidUser)), nil
		}
		user := &userdb.User{UUID: userUUID, Name: name, Role: role}
		if err := s.repo.Upsert(ctx, db, user); err != nil {
			return results.OperationResult[*userdb.User, error]{}, err
		}
		return results.SuccessResult[*userdb.User, error](user), nil
	})
}

// GetUser retrieves a staff member.
func (s *UserService) GetUser(ctx context.Context, userUUID uuid.UUID) (*userdb.User, error) {
	return operation.RunWithoutTx(s.op, ctx, "GetUser", userUUID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*userdb.User, error], error) {
		user, err := s.repo.GetByUUID(ctx, db, userUUID)
		if err != nil {
			if errors.Is(err, userdb.ErrNotFound) {
				return results.FailureResult[*userdb.User, error](apperrors.NotFound("user", userUUID.String())), nil
			}
			return results.OperationResult[*userdb.User, error]{}, err
		}
		return results.SuccessResult[*userdb.User, error](user), nil
	})
}

// ListUsers returns every staff member.
func (s *UserService) ListUsers(ctx context.Context) ([]*userdb.User, error) {
	return operation.RunWithoutTx(s.op, ctx, "ListUsers", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]*userdb.User, error], error) {
		users, err := s.repo.List(ctx, db)
		if err != nil {
			return results.OperationResult[[]*userdb.User, error]{}, err
		}
		return results.SuccessResult[[]*userdb.User, error](users), nil
	})
}

// Resolve loads the actor for actorID. It runs inside the caller's transaction.
// Only stored users resolve; the system actor is never reachable by id.
func (s *UserService) Resolve(ctx context.Context, db bun.IDB, actorID uuid.UUID) (*userdomain.Actor, error) {
	user, err := s.repo.GetByUUID(ctx, db, actorID)
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return nil, apperrors.NotFound("user", actorID.String())
		}
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return user.Actor(), nil
}

// RequireAdmin resolves the actor and rejects anyone who is not an administrator.
func (s *UserService) RequireAdmin(ctx context.Context, db bun.IDB, actorID uuid.UUID, operationName string) (*userdomain.Actor, error) {
	actor, err := s.Resolve(ctx, db, actorID)
	if err != nil {
		return nil, err
	}
	if !userdomain.IsAdmin(actor) {
		return nil, apperrors.Unauthorized(operationName)
	}
	return actor, nil
}
