package activityservice

import (
	"context"
	"errors"
	"log/slog"

	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidClub is returned when a club query has no club id.
var ErrInvalidClub = errors.New("club id is required")

// Service exposes the read side of the audit log.
type Service interface {
	GetClubActivityLogs(ctx context.Context, clubUUID uuid.UUID, limit int) ([]*activitydb.ActivityLog, error)
	GetAllActivityLogs(ctx context.Context, limit int) ([]*activitydb.ActivityLog, error)
}

// ActivityService implements Service.
type ActivityService struct {
	repo activitydb.Repository
	op   *operation.Runner
}

// NewActivityService creates a new ActivityService.
func NewActivityService(
	repo activitydb.Repository,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ActivityService {
	return &ActivityService{
		repo: repo,
		op:   operation.NewRunner("ActivityService", logger, metrics, tracer, db),
	}
}

// GetClubActivityLogs returns the newest entries for one club.
func (s *ActivityService) GetClubActivityLogs(ctx context.Context, clubUUID uuid.UUID, limit int) ([]*activitydb.ActivityLog, error) {
	return operation.RunWithoutTx(s.op, ctx, "GetClubActivityLogs", clubUUID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]*activitydb.ActivityLog, error], error) {
		if clubUUID == uuid.Nil {
			return results.FailureResult[[]*activitydb.ActivityLog, error](ErrInvalidClub), nil
		}
		logs, err := s.repo.ListByClub(ctx, db, clubUUID, activitydomain.ClampLimit(limit))
		if err != nil {
			return results.OperationResult[[]*activitydb.ActivityLog, error]{}, err
		}
		return results.SuccessResult[[]*activitydb.ActivityLog, error](logs), nil
	})
}

// GetAllActivityLogs returns the newest entries across all clubs.
func (s *ActivityService) GetAllActivityLogs(ctx context.Context, limit int) ([]*activitydb.ActivityLog, error) {
	return operation.RunWithoutTx(s.op, ctx, "GetAllActivityLogs", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]*activitydb.ActivityLog, error], error) {
		logs, err := s.repo.ListAll(ctx, db, activitydomain.ClampLimit(limit))
		if err != nil {
			return results.OperationResult[[]*activitydb.ActivityLog, error]{}, err
		}
		return results.SuccessResult[[]*activitydb.ActivityLog, error](logs), nil
	})
}
