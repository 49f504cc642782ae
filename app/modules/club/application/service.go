package clubservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	criteriaservice "github.com/Black-And-White-Club/campscore/app/modules/criteria/application"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	userservice "github.com/Black-And-White-Club/campscore/app/modules/user/application"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidClub is returned when a new club has no name or a negative member count.
var ErrInvalidClub = errors.New("invalid club")

// ClubService implements the Service interface.
type ClubService struct {
	repo     clubdb.Repository
	activity activitydb.Repository
	criteria criteriaservice.Provider
	actors   userservice.ActorResolver
	engine   *scoringdomain.Engine
	op       *operation.Runner
}

var _ Service = (*ClubService)(nil)

// NewClubService creates a new ClubService.
func NewClubService(
	repo clubdb.Repository,
	activity activitydb.Repository,
	criteria criteriaservice.Provider,
	actors userservice.ActorResolver,
	engine *scoringdomain.Engine,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ClubService {
	return &ClubService{
		repo:     repo,
		activity: activity,
		criteria: criteria,
		actors:   actors,
		engine:   engine,
		op:       operation.NewRunner("ClubService", logger, metrics, tracer, db),
	}
}

func (s *ClubService) CreateClub(ctx context.Context, name, region string, membersCount int, adminID uuid.UUID) (*clubdb.Club, error) {
	name = strings.TrimSpace(name)
	return operation.Run(s.op, ctx, "CreateClub", name, func(ctx context.Context, db bun.IDB) (results.OperationResult[*clubdb.Club, error], error) {
		if name == "" || membersCount < 0 {
			return results.FailureResult[*clubdb.Club, error](fmt.Errorf("%w: name is required and members must not be negative", ErrInvalidClub)), nil
		}
		actor, err := s.actors.RequireAdmin(ctx, db, adminID, "CreateClub")
		if err != nil {
			return operation.FromError[*clubdb.Club](err)
		}

		if _, err := s.repo.GetByName(ctx, db, name); err == nil {
			return results.FailureResult[*clubdb.Club, error](fmt.Errorf("%w: %s", apperrors.ErrDuplicateName, name)), nil
		} else if !errors.Is(err, clubdb.ErrNotFound) {
			return results.OperationResult[*clubdb.Club, error]{}, err
		}

		catalog, err := s.criteria.Load(ctx, db)
		if err != nil {
			return results.OperationResult[*clubdb.Club, error]{}, err
		}
		scores := scoringdomain.ZeroTree(catalog)
		result := s.engine.Compute(scores, catalog)

		club := &clubdb.Club{
			UUID:           uuid.New(),
			Name:           name,
			Region:         strings.TrimSpace(region),
			MembersCount:   membersCount,
			IsActive:       true,
			Scores:         scores,
			TotalScore:     result.TotalScore,
			Classification: result.Classification,
		}
		if err := s.repo.Create(ctx, db, club); err != nil {
			if errors.Is(err, clubdb.ErrDuplicateName) {
				return results.FailureResult[*clubdb.Club, error](fmt.Errorf("%w: %s", apperrors.ErrDuplicateName, name)), nil
			}
			return results.OperationResult[*clubdb.Club, error]{}, err
		}

		entry := activitydb.NewEntry(actor, activitydomain.ActionClubCreated, fmt.Sprintf("club %q created", name)).
			ForClub(club.UUID, club.Name)
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[*clubdb.Club, error]{}, err
		}
		return results.SuccessResult[*clubdb.Club, error](club), nil
	})
}

func (s *ClubService) GetClub(ctx context.Context, clubUUID uuid.UUID) (*clubdb.Club, error) {
	return operation.RunWithoutTx(s.op, ctx, "GetClub", clubUUID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*clubdb.Club, error], error) {
		club, err := s.repo.GetByUUID(ctx, db, clubUUID)
		if err != nil {
			if errors.Is(err, clubdb.ErrNotFound) {
				return results.FailureResult[*clubdb.Club, error](apperrors.NotFound("club", clubUUID.String())), nil
			}
			return results.OperationResult[*clubdb.Club, error]{}, err
		}
		return results.SuccessResult[*clubdb.Club, error](club), nil
	})
}

func (s *ClubService) ListClubs(ctx context.Context, activeOnly bool) ([]*clubdb.Club, error) {
	return operation.RunWithoutTx(s.op, ctx, "ListClubs", fmt.Sprintf("active=%t", activeOnly), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]*clubdb.Club, error], error) {
		clubs, err := s.repo.List(ctx, db, activeOnly)
		if err != nil {
			return results.OperationResult[[]*clubdb.Club, error]{}, err
		}
		return results.SuccessResult[[]*clubdb.Club, error](clubs), nil
	})
}

func (s *ClubService) DeleteClub(ctx context.Context, clubUUID uuid.UUID, adminID uuid.UUID) error {
	_, err := operation.Run(s.op, ctx, "DeleteClub", clubUUID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		actor, err := s.actors.RequireAdmin(ctx, db, adminID, "DeleteClub")
		if err != nil {
			return operation.FromError[bool](err)
		}
		club, err := s.repo.GetByUUID(ctx, db, clubUUID)
		if err != nil {
			if errors.Is(err, clubdb.ErrNotFound) {
				return results.FailureResult[bool, error](apperrors.NotFound("club", clubUUID.String())), nil
			}
			return results.OperationResult[bool, error]{}, err
		}
		if err := s.repo.Delete(ctx, db, clubUUID); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		entry := activitydb.NewEntry(actor, activitydomain.ActionClubDeleted, fmt.Sprintf("club %q deleted", club.Name)).
			ForClub(club.UUID, club.Name)
		if err := s.activity.Append(ctx, db, entry); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	})
	return err
}
