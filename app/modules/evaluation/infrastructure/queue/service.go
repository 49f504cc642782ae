package evaluationqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Config controls the periodic reconciliation job.
type Config struct {
	// Interval between runs. Zero disables the periodic job; TriggerReconcile
	// still works.
	Interval      time.Duration
	Timeout       time.Duration
	MaxWorkers    int
	SystemActorID uuid.UUID
}

// QueueService schedules score reconciliation on River.
type QueueService interface {
	// TriggerReconcile enqueues a run now.
	TriggerReconcile(ctx context.Context, reason string) error
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service owns the River client and its pgx pool.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.Metrics
}

// PeriodicJobs returns the reconciliation schedule for cfg.
func PeriodicJobs(cfg Config) []*river.PeriodicJob {
	if cfg.Interval <= 0 {
		return nil
	}
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(cfg.Interval),
			func() (river.JobArgs, *river.InsertOpts) {
				return ReconcileJob{Reason: "periodic"}, &river.InsertOpts{Queue: QueueName}
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}

// NewService connects to dsn and registers the reconcile worker.
func NewService(ctx context.Context, logger *slog.Logger, dsn string, metrics observability.Metrics, reconciler Reconciler, cfg Config) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.String("queue", QueueName),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReconcileWorker(ctxLogger, reconciler, cfg.SystemActorID, timeout))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		PeriodicJobs: PeriodicJobs(cfg),
		Workers:      workers,
		Logger:       ctxLogger,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.Info("Evaluation queue service initialized",
		attr.Duration("reconcile_interval", cfg.Interval),
	)
	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Evaluation queue service started")
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Evaluation queue service stopped")
	return nil
}

func (s *Service) TriggerReconcile(ctx context.Context, reason string) error {
	s.metrics.RecordOperationAttempt(ctx, "trigger_reconcile", "river")
	res, err := s.client.Insert(ctx, ReconcileJob{Reason: reason}, &river.InsertOpts{Queue: QueueName})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "trigger_reconcile", "river")
		return fmt.Errorf("failed to enqueue reconcile job: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "trigger_reconcile", "river")
	s.logger.InfoContext(ctx, "Reconcile job enqueued",
		attr.Int64("job_id", res.Job.ID),
		attr.String("reason", reason),
	)
	return nil
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("river database unreachable: %w", err)
	}
	return nil
}
