package evaluationqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Reconciler is the part of the evaluation service the job drives.
type Reconciler interface {
	MigrateLegacyEvaluations(ctx context.Context) (*evaluationdomain.MigrationReport, error)
	FixScores(ctx context.Context, adminID uuid.UUID) (int, error)
}

// ReconcileWorker runs MigrateLegacyEvaluations then FixScores as the
// system actor.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileJob]
	reconciler    Reconciler
	systemActorID uuid.UUID
	timeout       time.Duration
	logger        *slog.Logger
}

func NewReconcileWorker(logger *slog.Logger, reconciler Reconciler, systemActorID uuid.UUID, timeout time.Duration) *ReconcileWorker {
	return &ReconcileWorker{
		reconciler:    reconciler,
		systemActorID: systemActorID,
		timeout:       timeout,
		logger:        logger,
	}
}

// Timeout bounds a single reconciliation run.
func (w *ReconcileWorker) Timeout(*river.Job[ReconcileJob]) time.Duration {
	return w.timeout
}

func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileJob]) error {
	start := time.Now()
	w.logger.InfoContext(ctx, "Reconciling stored scores", attr.String("reason", job.Args.Reason))

	report, err := w.reconciler.MigrateLegacyEvaluations(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Legacy migration failed", attr.Error(err))
		return fmt.Errorf("legacy migration: %w", err)
	}

	fixed, err := w.reconciler.FixScores(ctx, w.systemActorID)
	if err != nil {
		w.logger.ErrorContext(ctx, "Score fix failed", attr.Error(err))
		return fmt.Errorf("fix scores: %w", err)
	}

	w.logger.InfoContext(ctx, "Reconciliation finished",
		attr.Int("clubs_scanned", report.ClubsScanned),
		attr.Int("clubs_repaired", report.ClubsRepaired),
		attr.Int("leaves_repaired", report.LeavesRepaired),
		attr.Int("totals_fixed", fixed),
		attr.Duration("duration", time.Since(start)),
	)
	return nil
}
