package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	activityservice "github.com/Black-And-White-Club/campscore/app/modules/activity/application"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	clubservice "github.com/Black-And-White-Club/campscore/app/modules/club/application"
	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	criteriaservice "github.com/Black-And-White-Club/campscore/app/modules/criteria/application"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	criteriadb "github.com/Black-And-White-Club/campscore/app/modules/criteria/infrastructure/repositories"
	evaluationservice "github.com/Black-And-White-Club/campscore/app/modules/evaluation/application"
	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	userservice "github.com/Black-And-White-Club/campscore/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/campscore/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestServer(t *testing.T, health func(context.Context) error, clubs ...*clubdb.Club) *httptest.Server {
	t.Helper()
	logger := slog.Default()
	metrics := observability.NewNoop()
	tracer := noop.NewTracerProvider().Tracer("test")

	engine := scoringdomain.NewEngine(scoringdomain.DefaultRuleset())
	users := userservice.NewUserService(userdb.NewFakeRepository(), logger, metrics, tracer, nil)
	activityRepo := activitydb.NewFakeRepository()
	clubRepo := clubdb.NewFakeRepository(clubs...)
	criteria := criteriaservice.NewCriteriaService(criteriadb.NewFakeRepository(), activityRepo, users, logger, metrics, tracer, nil)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "campscore_test_total", Help: "test"}))

	router := NewHTTPRouter(HTTPDeps{
		Clubs:    clubservice.NewClubService(clubRepo, activityRepo, criteria, users, engine, logger, metrics, tracer, nil),
		Activity: activityservice.NewActivityService(activityRepo, logger, metrics, tracer, nil),
		Criteria: criteria,
		Evaluation: evaluationservice.NewEvaluationService(clubRepo, evaluationdb.NewFakeRepository(), activityRepo,
			criteria, users, engine, evaluationservice.Config{}, logger, metrics, tracer, nil),
		Gatherer: reg,
		Health:   health,
		Logger:   logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, into any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	healthy := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, get(t, healthy, "/healthz", nil))

	down := newTestServer(t, func(context.Context) error { return errors.New("postgres: connection refused") })
	var body map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, get(t, down, "/healthz", &body))
	assert.Equal(t, "unhealthy", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClubEndpoints(t *testing.T) {
	engine := scoringdomain.NewEngine(scoringdomain.DefaultRuleset())
	tree := scoringdomain.ZeroTree(criteriadomain.Default())
	result := engine.Compute(tree, nil)
	club := &clubdb.Club{
		UUID: uuid.New(), Name: "Falcons", IsActive: true,
		Scores: tree, TotalScore: result.TotalScore, Classification: result.Classification,
	}
	srv := newTestServer(t, nil, club)

	var clubs []map[string]any
	require.Equal(t, http.StatusOK, get(t, srv, "/api/clubs", &clubs))
	require.Len(t, clubs, 1)
	assert.Equal(t, "Falcons", clubs[0]["Name"])

	var errBody errorBody
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/clubs/not-a-uuid", &errBody))
	assert.Equal(t, "invalid_request", errBody.Code)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/clubs/"+uuid.NewString(), &errBody))
	assert.Equal(t, "not_found", errBody.Code)

	var evaluated map[string]any
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/clubs/"+club.UUID.String()+"/evaluations", &evaluated))
	assert.Empty(t, evaluated)

	var verify struct {
		Consistent bool `json:"consistent"`
	}
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/verify", &verify))
	assert.True(t, verify.Consistent)
}
