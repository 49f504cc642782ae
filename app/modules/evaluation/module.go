package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	criteriaservice "github.com/Black-And-White-Club/campscore/app/modules/criteria/application"
	evaluationservice "github.com/Black-And-White-Club/campscore/app/modules/evaluation/application"
	evaluationhandlers "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/handlers"
	evaluationqueue "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/queue"
	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	evaluationrouter "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/router"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	userservice "github.com/Black-And-White-Club/campscore/app/modules/user/application"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies are the collaborators shared with the other modules.
type Dependencies struct {
	DB       *bun.DB
	Clubs    clubdb.Repository
	Activity activitydb.Repository
	Criteria criteriaservice.Provider
	Actors   userservice.ActorResolver
	Engine   *scoringdomain.Engine

	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  observability.Metrics
	Registry *prometheus.Registry

	Router     *message.Router
	Subscriber message.Subscriber
	Publisher  message.Publisher
	MaxRetries int

	Service evaluationservice.Config
	// QueueDSN enables the River reconciliation queue when set.
	QueueDSN string
	Queue    evaluationqueue.Config
}

// Module represents the evaluation module.
type Module struct {
	EvaluationService evaluationservice.Service
	EvaluationRouter  *evaluationrouter.EvaluationRouter
	Queue             evaluationqueue.QueueService
	cancelFunc        context.CancelFunc
	logger            *slog.Logger
}

// NewEvaluationModule creates and initializes a new evaluation module.
func NewEvaluationModule(ctx context.Context, routerCtx context.Context, deps Dependencies) (*Module, error) {
	logger := deps.Logger
	logger.InfoContext(ctx, "evaluation.NewEvaluationModule initializing")

	locks := evaluationdb.NewRepository(deps.DB)
	service := evaluationservice.NewEvaluationService(
		deps.Clubs, locks, deps.Activity, deps.Criteria, deps.Actors, deps.Engine,
		deps.Service, logger, deps.Metrics, deps.Tracer, deps.DB,
	)

	handlers := evaluationhandlers.NewEvaluationHandlers(service, logger, deps.Tracer)
	router := evaluationrouter.NewEvaluationRouter(logger, deps.Router, deps.Subscriber, deps.Publisher, deps.Registry, deps.MaxRetries)
	if err := router.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure evaluation router: %w", err)
	}

	m := &Module{
		EvaluationService: service,
		EvaluationRouter:  router,
		logger:            logger,
	}

	if deps.QueueDSN != "" {
		cfg := deps.Queue
		cfg.SystemActorID = deps.Service.SystemActorID
		queue, err := evaluationqueue.NewService(ctx, logger, deps.QueueDSN, deps.Metrics, service, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create evaluation queue: %w", err)
		}
		m.Queue = queue
	}
	return m, nil
}

// Run starts the queue and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting evaluation module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Evaluation queue failed to start", attr.Error(err))
		}
	}

	<-ctx.Done()
	m.logger.Info("Evaluation module goroutine stopped")
}

// Close shuts down the evaluation module.
func (m *Module) Close(ctx context.Context) error {
	m.logger.Info("Stopping evaluation module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		if err := m.Queue.Stop(ctx); err != nil {
			m.logger.Error("Error stopping evaluation queue", attr.Error(err))
		}
	}

	if m.EvaluationRouter != nil {
		if err := m.EvaluationRouter.Close(); err != nil {
			return fmt.Errorf("error closing EvaluationRouter: %w", err)
		}
	}

	m.logger.Info("Evaluation module stopped")
	return nil
}
