//go:build integration

package evaluationintegrationtests

import (
	"context"
	"io"
	"log/slog"
	"testing"

	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	clubservice "github.com/Black-And-White-Club/campscore/app/modules/club/application"
	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	criteriaservice "github.com/Black-And-White-Club/campscore/app/modules/criteria/application"
	criteriadb "github.com/Black-And-White-Club/campscore/app/modules/criteria/infrastructure/repositories"
	evaluationservice "github.com/Black-And-White-Club/campscore/app/modules/evaluation/application"
	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	userservice "github.com/Black-And-White-Club/campscore/app/modules/user/application"
	userdomain "github.com/Black-And-White-Club/campscore/app/modules/user/domain"
	userdb "github.com/Black-And-White-Club/campscore/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// TestDeps holds the real services of one test, backed by the shared database.
type TestDeps struct {
	Ctx        context.Context
	Clubs      clubservice.Service
	ClubRepo   clubdb.Repository
	Activity   activitydb.Repository
	Evaluation *evaluationservice.EvaluationService
	Engine     *scoringdomain.Engine
	Admin      uuid.UUID
	Evaluator  uuid.UUID
	System     uuid.UUID
}

// SetupTestEvaluationService truncates the database and builds every service
// over it with a silent logger and no-op telemetry.
func SetupTestEvaluationService(t *testing.T) TestDeps {
	t.Helper()
	ctx := testEnv.Ctx
	require.NoError(t, testEnv.CleanupDatabase(ctx))

	db := testEnv.DB
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewNoop()
	tracer := noop.NewTracerProvider().Tracer("test")
	system := uuid.New()

	users := userservice.NewUserService(userdb.NewRepository(db), logger, metrics, tracer, db)
	admin, err := users.UpsertUser(ctx, uuid.New(), gofakeit.Name(), userdomain.RoleAdmin)
	require.NoError(t, err)
	evaluator, err := users.UpsertUser(ctx, uuid.New(), gofakeit.Name(), userdomain.RoleEvaluator)
	require.NoError(t, err)

	engine := scoringdomain.NewEngine(scoringdomain.DefaultRuleset())
	clubRepo := clubdb.NewRepository(db)
	activityRepo := activitydb.NewRepository(db)
	criteria := criteriaservice.NewCriteriaService(criteriadb.NewRepository(db), activityRepo, users, logger, metrics, tracer, db)
	clubs := clubservice.NewClubService(clubRepo, activityRepo, criteria, users, engine, logger, metrics, tracer, db)
	evaluation := evaluationservice.NewEvaluationService(clubRepo, evaluationdb.NewRepository(db), activityRepo, criteria, users, engine,
		evaluationservice.Config{BatchConcurrency: 4, ResetPageSize: 3, SystemActorID: system},
		logger, metrics, tracer, db)

	return TestDeps{
		Ctx:        ctx,
		Clubs:      clubs,
		ClubRepo:   clubRepo,
		Activity:   activityRepo,
		Evaluation: evaluation,
		Engine:     engine,
		Admin:      admin.UUID,
		Evaluator:  evaluator.UUID,
		System:     system,
	}
}

// CreateClubs registers n clubs through the club service.
func (d TestDeps) CreateClubs(t *testing.T, n int) []*clubdb.Club {
	t.Helper()
	out := make([]*clubdb.Club, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.Clubs.CreateClub(d.Ctx, gofakeit.Company()+" "+gofakeit.LetterN(6), gofakeit.City(), gofakeit.IntRange(5, 30), d.Admin)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

// RequireConsistent asserts every stored total equals the engine's value.
func (d TestDeps) RequireConsistent(t *testing.T) {
	t.Helper()
	drift, err := d.Evaluation.VerifyTotals(d.Ctx)
	require.NoError(t, err)
	require.Empty(t, drift)
}
