package evaluationrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	evaluationdomain "github.com/Black-And-White-Club/campscore/app/modules/evaluation/domain"
	evaluationhandlers "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/handlers"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// EvaluationRouter subscribes the evaluation handlers to their request
// topics and publishes their replies.
type EvaluationRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	metricsBuilder *metrics.PrometheusMetricsBuilder
	maxRetries     int
}

// NewEvaluationRouter creates the router. Router metrics are skipped when
// reg is nil or APP_ENV is "test".
func NewEvaluationRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	reg *prometheus.Registry,
	maxRetries int,
) *EvaluationRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if reg != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(reg, "", "")
		metricsBuilder = &builder
	}
	return &EvaluationRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		metricsBuilder: metricsBuilder,
		maxRetries:     maxRetries,
	}
}

// Configure adds middleware and registers every evaluation handler.
func (r *EvaluationRouter) Configure(routerCtx context.Context, handlers evaluationhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware")
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: r.maxRetries}.Middleware,
	)

	if err := r.RegisterHandlers(routerCtx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

// RegisterHandlers binds each request topic to its handler.
func (r *EvaluationRouter) RegisterHandlers(ctx context.Context, handlers evaluationhandlers.Handlers) error {
	eventsToHandlers := map[string]message.HandlerFunc{
		evaluationdomain.ScorePatchRequestedV1:      handlers.HandleScorePatchRequest,
		evaluationdomain.BatchRequestedV1:           handlers.HandleBatchRequest,
		evaluationdomain.CriterionLockRequestedV1:   handlers.HandleCriterionLockRequest,
		evaluationdomain.CriterionUnlockRequestedV1: handlers.HandleCriterionUnlockRequest,
		evaluationdomain.ScoresFixRequestedV1:       handlers.HandleScoresFixRequest,
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("evaluation.%s", topic)
		r.Router.AddHandler(
			handlerName,
			topic,
			r.subscriber,
			"",
			nil,
			func(msg *message.Message) ([]*message.Message, error) {
				messages, err := handlerFunc(msg)
				if err != nil {
					r.logger.ErrorContext(ctx, "Error processing message",
						attr.String("message_id", msg.UUID),
						attr.String("handler", handlerName),
						attr.Error(err),
					)
					return nil, err
				}
				for _, m := range messages {
					publishTopic := m.Metadata.Get(evaluationhandlers.TopicMetadataKey)
					if publishTopic == "" {
						r.logger.Error("Reply has no topic, dropping it",
							attr.String("handler", handlerName),
							attr.String("msg_uuid", m.UUID),
							attr.CorrelationIDFromMsg(m),
						)
						continue
					}

					r.logger.InfoContext(ctx, "Publishing reply",
						attr.String("topic", publishTopic),
						attr.String("handler", handlerName),
						attr.CorrelationIDFromMsg(m),
					)
					if err := r.publisher.Publish(publishTopic, m); err != nil {
						return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
					}
				}
				return nil, nil
			},
		)
	}
	return nil
}

func (r *EvaluationRouter) Close() error {
	return r.Router.Close()
}
