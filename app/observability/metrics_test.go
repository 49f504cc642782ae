package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg).(*prometheusMetrics)
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "ApplyScorePatch", "EvaluationService")
	m.RecordOperationSuccess(ctx, "ApplyScorePatch", "EvaluationService")
	m.RecordOperationDuration(ctx, "ApplyScorePatch", "EvaluationService", 5*time.Millisecond)
	m.RecordScoreChange(ctx, "events", -30)
	m.RecordBatchResult(ctx, 3, 1)
	m.RecordClubsCorrected(ctx, "fix_scores", 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("EvaluationService", "ApplyScorePatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoreChanges.WithLabelValues("events")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.batchClubs.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchClubs.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.corrected.WithLabelValues("fix_scores")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNoopMetrics(t *testing.T) {
	m := NewNoop()
	m.RecordOperationAttempt(context.Background(), "op", "svc")
	m.RecordBatchResult(context.Background(), 1, 1)
}
