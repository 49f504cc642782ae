package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/campscore/app/eventbus"
	activityservice "github.com/Black-And-White-Club/campscore/app/modules/activity/application"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	clubservice "github.com/Black-And-White-Club/campscore/app/modules/club/application"
	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	criteriaservice "github.com/Black-And-White-Club/campscore/app/modules/criteria/application"
	criteriadb "github.com/Black-And-White-Club/campscore/app/modules/criteria/infrastructure/repositories"
	"github.com/Black-And-White-Club/campscore/app/modules/evaluation"
	evaluationservice "github.com/Black-And-White-Club/campscore/app/modules/evaluation/application"
	evaluationqueue "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/queue"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	userservice "github.com/Black-And-White-Club/campscore/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/campscore/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/campscore/config"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
)

// App wires every module of the scoring service.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *bun.DB
	EventBus *eventbus.EventBus
	Router   *message.Router
	Registry *prometheus.Registry

	UserService     userservice.Service
	ClubService     clubservice.Service
	CriteriaService criteriaservice.Service
	ActivityService activityservice.Service

	EvaluationModule *evaluation.Module

	httpServer *http.Server
	wg         sync.WaitGroup
}

// NewApp connects to Postgres and NATS and builds every module.
func NewApp(ctx context.Context, routerCtx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	systemID, err := cfg.SystemActor()
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN))), pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewPrometheusMetrics(registry)
	tracer := otel.Tracer("campscore")

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := bus.InitializeStreams(ctx); err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	engine := scoringdomain.NewEngine(cfg.Ruleset())
	clubRepo := clubdb.NewRepository(db)
	activityRepo := activitydb.NewRepository(db)

	users := userservice.NewUserService(userdb.NewRepository(db), logger, metrics, tracer, db)
	criteria := criteriaservice.NewCriteriaService(criteriadb.NewRepository(db), activityRepo, users, logger, metrics, tracer, db)
	clubs := clubservice.NewClubService(clubRepo, activityRepo, criteria, users, engine, logger, metrics, tracer, db)
	activity := activityservice.NewActivityService(activityRepo, logger, metrics, tracer, db)

	module, err := evaluation.NewEvaluationModule(ctx, routerCtx, evaluation.Dependencies{
		DB:         db,
		Clubs:      clubRepo,
		Activity:   activityRepo,
		Criteria:   criteria,
		Actors:     users,
		Engine:     engine,
		Logger:     logger,
		Tracer:     tracer,
		Metrics:    metrics,
		Registry:   registry,
		Router:     router,
		Subscriber: bus,
		Publisher:  bus,
		MaxRetries: cfg.NATS.MaxRetries,
		Service: evaluationservice.Config{
			BatchConcurrency: cfg.Batch.Concurrency,
			ResetPageSize:    cfg.Reset.PageSize,
			SystemActorID:    systemID,
		},
		QueueDSN: cfg.Postgres.DSN,
		Queue: evaluationqueue.Config{
			Interval: cfg.Reconcile.Interval,
			Timeout:  cfg.Reconcile.Timeout,
		},
	})
	if err != nil {
		bus.Close()
		db.Close()
		return nil, err
	}

	app := &App{
		Config:           cfg,
		Logger:           logger,
		DB:               db,
		EventBus:         bus,
		Router:           router,
		Registry:         registry,
		UserService:      users,
		ClubService:      clubs,
		CriteriaService:  criteria,
		ActivityService:  activity,
		EvaluationModule: module,
	}
	app.httpServer = &http.Server{
		Addr: cfg.Observability.MetricsAddress,
		Handler: NewHTTPRouter(HTTPDeps{
			Clubs:      clubs,
			Activity:   activity,
			Criteria:   criteria,
			Evaluation: module.EvaluationService,
			Gatherer:   registry,
			Health:     app.health,
			Logger:     logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return app, nil
}

func (app *App) health(ctx context.Context) error {
	if err := app.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if q := app.EvaluationModule.Queue; q != nil {
		if err := q.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every resource. It is safe to call after a failed Start.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.httpServer != nil {
		if err := app.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if app.EvaluationModule != nil {
		if err := app.EvaluationModule.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	app.wg.Wait()
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		app.Logger.Error("Shutdown finished with errors", attr.Error(err))
		return err
	}
	app.Logger.Info("Application shut down gracefully")
	return nil
}
