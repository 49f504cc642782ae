package criteriaservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	criteriadb "github.com/Black-And-White-Club/campscore/app/modules/criteria/infrastructure/repositories"
	userservice "github.com/Black-And-White-Club/campscore/app/modules/user/application"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// CriteriaService implements Service and Provider.
type CriteriaService struct {
	repo     criteriadb.Repository
	activity activitydb.Repository
	actors   userservice.ActorResolver
	op       *operation.Runner
}

var (
	_ Service  = (*CriteriaService)(nil)
	_ Provider = (*CriteriaService)(nil)
)

// NewCriteriaService creates a new CriteriaService.
func NewCriteriaService(
	repo criteriadb.Repository,
	activity activitydb.Repository,
	actors userservice.ActorResolver,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *CriteriaService {
	return &CriteriaService{
		repo:     repo,
		activity: activity,
		actors:   actors,
		op:       operation.NewRunner("CriteriaService", logger, metrics, tracer, db),
	}
}

// Load returns the active catalog.
func (s *CriteriaService) Load(ctx context.Context, db bun.IDB) (*criteriadomain.Catalog, error) {
	row, err := s.repo.Get(ctx, db)
	if err != nil {
		if errors.Is(err, criteriadb.ErrNotFound) {
			return criteriadomain.Default(), nil
		}
		return nil, err
	}
	catalog := row.Catalog
	return &catalog, nil
}

func (s *CriteriaService) GetCriteria(ctx context.Context) (*criteriadomain.Catalog, error) {
	return operation.RunWithoutTx(s.op, ctx, "GetCriteria", "active", func(ctx context.Context, db bun.IDB) (results.OperationResult[*criteriadomain.Catalog, error], error) {
		catalog, err := s.Load(ctx, db)
		if err != nil {
			return results.OperationResult[*criteriadomain.Catalog, error]{}, err
		}
		return results.SuccessResult[*criteriadomain.Catalog, error](catalog), nil
	})
}

func (s *CriteriaService) SetCriteria(ctx context.Context, catalog *criteriadomain.Catalog, adminID uuid.UUID) (*criteriadomain.Catalog, error) {
	return operation.Run(s.op, ctx, "SetCriteria", adminID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*criteriadomain.Catalog, error], error) {
		actor, err := s.actors.RequireAdmin(ctx, db, adminID, "SetCriteria")
		if err != nil {
			return operation.FromError[*criteriadomain.Catalog](err)
		}
		if catalog == nil {
			return results.FailureResult[*criteriadomain.Catalog, error](fmt.Errorf("%w: catalog is required", criteriadomain.ErrInvalidCatalog)), nil
		}
		if err := catalog.Validate(); err != nil {
			return results.FailureResult[*criteriadomain.Catalog, error](err), nil
		}

		stored := catalog.Clone()
		version, err := s.repo.Save(ctx, db, stored, actor.UUID)
		if err != nil {
			return results.OperationResult[*criteriadomain.Catalog, error]{}, err
		}
		stored.Version = version

		entry := activitydb.NewEntry(actor, activitydomain.ActionCriteriaUpdated,
			fmt.Sprintf("criteria catalog replaced (version %d, %d categories)", version, len(stored.Categories)))
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[*criteriadomain.Catalog, error]{}, err
		}
		return results.SuccessResult[*criteriadomain.Catalog, error](stored), nil
	})
}

func (s *CriteriaService) ResetCriteria(ctx context.Context, adminID uuid.UUID) error {
	_, err := operation.Run(s.op, ctx, "ResetCriteria", adminID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		actor, err := s.actors.RequireAdmin(ctx, db, adminID, "ResetCriteria")
		if err != nil {
			return operation.FromError[bool](err)
		}
		if err := s.repo.Delete(ctx, db); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		entry := activitydb.NewEntry(actor, activitydomain.ActionCriteriaReset, "criteria catalog reset to default")
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	})
	return err
}
