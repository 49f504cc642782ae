package evaluationservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	criteriaservice "github.com/Black-And-White-Club/campscore/app/modules/criteria/application"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	userservice "github.com/Black-And-White-Club/campscore/app/modules/user/application"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/campscore/app/operation"
	"github.com/Black-And-White-Club/campscore/internal/drain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Config tunes the bulk operations.
type Config struct {
	// BatchConcurrency bounds how many clubs a batch evaluates at once.
	BatchConcurrency int
	// ResetPageSize is the number of rows deleted per transaction during resets.
	ResetPageSize int
	// SystemActorID attributes unattended work such as reconciliation.
	SystemActorID uuid.UUID
}

const defaultBatchConcurrency = 4

// EvaluationService implements the Service interface.
type EvaluationService struct {
	clubs    clubdb.Repository
	locks    evaluationdb.Repository
	activity activitydb.Repository
	criteria criteriaservice.Provider
	actors   userservice.ActorResolver
	engine   *scoringdomain.Engine
	metrics  observability.Metrics
	logger   *slog.Logger
	cfg      Config
	op       *operation.Runner
}

var _ Service = (*EvaluationService)(nil)

// NewEvaluationService creates a new EvaluationService. Every transaction it
// opens runs at serializable isolation.
func NewEvaluationService(
	clubs clubdb.Repository,
	locks evaluationdb.Repository,
	activity activitydb.Repository,
	criteria criteriaservice.Provider,
	actors userservice.ActorResolver,
	engine *scoringdomain.Engine,
	cfg Config,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *EvaluationService {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = defaultBatchConcurrency
	}
	if cfg.ResetPageSize <= 0 {
		cfg.ResetPageSize = drain.DefaultPageSize
	}
	op := operation.NewRunner("EvaluationService", logger, metrics, tracer, db)
	op.TxOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}
	return &EvaluationService{
		clubs:    clubs,
		locks:    locks,
		activity: activity,
		criteria: criteria,
		actors:   actors,
		engine:   engine,
		metrics:  op.Metrics,
		logger:   op.Logger,
		cfg:      cfg,
		op:       op,
	}
}

// loadClub reads the club row. forUpdate holds the row lock until commit.
func (s *EvaluationService) loadClub(ctx context.Context, db bun.IDB, clubID uuid.UUID, forUpdate bool) (*clubdb.Club, error) {
	var (
		club *clubdb.Club
		err  error
	)
	if forUpdate {
		club, err = s.clubs.GetByUUIDForUpdate(ctx, db, clubID)
	} else {
		club, err = s.clubs.GetByUUID(ctx, db, clubID)
	}
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			return nil, apperrors.NotFound("club", clubID.String())
		}
		return nil, err
	}
	return club, nil
}

// validateValue checks one leaf against its criterion.
func validateValue(c criteriadomain.Criterion, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return &apperrors.InvalidScoreError{Path: c.Path, Value: v, Reason: "score must be a finite number"}
	case v < 0:
		return &apperrors.InvalidScoreError{Path: c.Path, Value: v, Reason: "score must not be negative"}
	case !c.IsDemerit() && v > c.Max:
		return &apperrors.ExceedsMaximumError{Path: c.Path, Value: v, Max: c.Max, Partial: c.Partial}
	}
	return nil
}

// validatePatch checks every leaf of patch before anything is written and
// returns the criterion of each leaf.
func validatePatch(catalog *criteriadomain.Catalog, patch scoringdomain.Tree) ([]criteriadomain.Criterion, error) {
	if err := patch.Validate(); err != nil {
		var shape *scoringdomain.ShapeError
		if errors.As(err, &shape) {
			return nil, &apperrors.InvalidScoreError{Path: shape.Path, Value: shape.Value, Reason: shape.Reason}
		}
		return nil, err
	}
	leaves := patch.Leaves()
	if len(leaves) == 0 {
		return nil, &apperrors.InvalidScoreError{Reason: "patch contains no scores"}
	}
	out := make([]criteriadomain.Criterion, 0, len(leaves))
	for _, lv := range leaves {
		c, ok := catalog.Lookup(lv.Path)
		if !ok {
			return nil, apperrors.CriterionNotFound(lv.Path)
		}
		if err := validateValue(c, lv.Value); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// lookupLockable resolves a path that may carry a lock record.
func lookupLockable(catalog *criteriadomain.Catalog, p criteriadomain.Path) (criteriadomain.Criterion, error) {
	c, ok := catalog.Lookup(p)
	if !ok {
		return criteriadomain.Criterion{}, apperrors.CriterionNotFound(p)
	}
	if c.IsDemerit() {
		return criteriadomain.Criterion{}, fmt.Errorf("%w: %s", apperrors.ErrDemeritNotLockable, p)
	}
	return c, nil
}
