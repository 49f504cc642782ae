package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records service level counters shared by every module.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)

	// RecordScoreChange observes one leaf write.
	RecordScoreChange(ctx context.Context, category string, difference float64)
	// RecordBatchResult counts per-club outcomes of a batch evaluation.
	RecordBatchResult(ctx context.Context, succeeded, failed int)
	// RecordClubsCorrected counts clubs whose stored totals were repaired.
	RecordClubsCorrected(ctx context.Context, pass string, n int)
}

type prometheusMetrics struct {
	attempts     *prometheus.CounterVec
	failures     *prometheus.CounterVec
	successes    *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	scoreChanges *prometheus.CounterVec
	scoreDelta   *prometheus.HistogramVec
	batchClubs   *prometheus.CounterVec
	corrected    *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) Metrics {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campscore",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campscore",
			Name:      "operation_failures_total",
			Help:      "Service operations that returned an infrastructure error.",
		}, []string{"service", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campscore",
			Name:      "operation_success_total",
			Help:      "Service operations that completed.",
		}, []string{"service", "operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campscore",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		scoreChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campscore",
			Name:      "score_changes_total",
			Help:      "Score leaves written, by category.",
		}, []string{"category"}),
		scoreDelta: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campscore",
			Name:      "score_change_points",
			Help:      "Absolute point difference of score writes.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		}, []string{"category"}),
		batchClubs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campscore",
			Name:      "batch_clubs_total",
			Help:      "Clubs processed by batch evaluation, by outcome.",
		}, []string{"outcome"}),
		corrected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campscore",
			Name:      "clubs_corrected_total",
			Help:      "Clubs repaired by reconciliation passes.",
		}, []string{"pass"}),
	}
	reg.MustRegister(m.attempts, m.failures, m.successes, m.duration, m.scoreChanges, m.scoreDelta, m.batchClubs, m.corrected)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.duration.WithLabelValues(service, operation).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordScoreChange(_ context.Context, category string, difference float64) {
	m.scoreChanges.WithLabelValues(category).Inc()
	if difference < 0 {
		difference = -difference
	}
	m.scoreDelta.WithLabelValues(category).Observe(difference)
}

func (m *prometheusMetrics) RecordBatchResult(_ context.Context, succeeded, failed int) {
	m.batchClubs.WithLabelValues("succeeded").Add(float64(succeeded))
	m.batchClubs.WithLabelValues("failed").Add(float64(failed))
}

func (m *prometheusMetrics) RecordClubsCorrected(_ context.Context, pass string, n int) {
	m.corrected.WithLabelValues(pass).Add(float64(n))
}

type noopMetrics struct{}

// NewNoop returns metrics that discard everything.
func NewNoop() Metrics { return noopMetrics{} }

func (noopMetrics) RecordOperationAttempt(context.Context, string, string) {}
func (noopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noopMetrics) RecordOperationFailure(context.Context, string, string) {}
func (noopMetrics) RecordOperationSuccess(context.Context, string, string) {}
func (noopMetrics) RecordScoreChange(context.Context, string, float64) {}
func (noopMetrics) RecordBatchResult(context.Context, int, int) {}
func (noopMetrics) RecordClubsCorrected(context.Context, string, int) {}
