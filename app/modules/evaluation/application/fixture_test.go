package evaluationservice

import (
	"context"
	"log/slog"
	"testing"

	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	clubdb "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories"
	criteriaservice "github.com/Black-And-White-Club/campscore/app/modules/criteria/application"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	criteriadb "github.com/Black-And-White-Club/campscore/app/modules/criteria/infrastructure/repositories"
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

var (
	opening    = criteriadomain.Path{Category: criteriadomain.CategoryParticipation, Key: "opening"}
	closing    = criteriadomain.Path{Category: criteriadomain.CategoryParticipation, Key: "closing"}
	marching   = criteriadomain.Path{Category: criteriadomain.CategoryEvents, Key: "marching"}
	twelveHour = criteriadomain.Path{Category: criteriadomain.CategoryEvents, Key: "twelveHour"}
	knots      = criteriadomain.Path{Category: criteriadomain.CategoryEvents, Key: "carousel", SubKey: "knots"}
	noise      = criteriadomain.Path{Category: criteriadomain.CategoryDemerits, Key: "noise"}
	register   = criteriadomain.Path{Category: criteriadomain.CategoryPrerequisites, Key: "registration"}
)

type fixture struct {
	svc       *EvaluationService
	clubs     *clubdb.FakeRepository
	locks     *evaluationdb.FakeRepository
	activity  *activitydb.FakeRepository
	engine    *scoringdomain.Engine
	catalog   *criteriadomain.Catalog
	admin     uuid.UUID
	evaluator uuid.UUID
	system    uuid.UUID
}

func newFixture(t *testing.T, clubs ...*clubdb.Club) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, Config{BatchConcurrency: 4, ResetPageSize: 2}, clubs...)
}

func newFixtureWithConfig(t *testing.T, cfg Config, clubs ...*clubdb.Club) *fixture {
	t.Helper()
	admin := &userdb.User{UUID: uuid.New(), Name: "Director", Role: userdomain.RoleAdmin}
	evaluator := &userdb.User{UUID: uuid.New(), Name: "Counselor", Role: userdomain.RoleEvaluator}
	cfg.SystemActorID = uuid.New()
	users := userservice.NewUserService(userdb.NewFakeRepository(admin, evaluator), nil, nil, nil, nil)

	activity := activitydb.NewFakeRepository()
	criteria := criteriaservice.NewCriteriaService(criteriadb.NewFakeRepository(), activity, users, nil, nil, nil, nil)
	clubRepo := clubdb.NewFakeRepository(clubs...)
	locks := evaluationdb.NewFakeRepository()
	engine := scoringdomain.NewEngine(scoringdomain.DefaultRuleset())

	svc := NewEvaluationService(clubRepo, locks, activity, criteria, users, engine, cfg,
		slog.Default(), observability.NewNoop(), noop.NewTracerProvider().Tracer("test"), nil)

	return &fixture{
		svc:       svc,
		clubs:     clubRepo,
		locks:     locks,
		activity:  activity,
		engine:    engine,
		catalog:   criteriadomain.Default(),
		admin:     admin.UUID,
		evaluator: evaluator.UUID,
		system:    cfg.SystemActorID,
	}
}

// newClub builds a club whose stored totals agree with its tree.
func newClub(engine *scoringdomain.Engine, scores scoringdomain.Tree) *clubdb.Club {
	if scores == nil {
		scores = scoringdomain.ZeroTree(criteriadomain.Default())
	}
	result := engine.Compute(scores, nil)
	return &clubdb.Club{
		UUID:           uuid.New(),
		Name:           gofakeit.Company() + " " + gofakeit.LetterN(6),
		IsActive:       true,
		Scores:         scores,
		TotalScore:     result.TotalScore,
		Classification: result.Classification,
	}
}

func defaultEngine() *scoringdomain.Engine {
	return scoringdomain.NewEngine(scoringdomain.DefaultRuleset())
}

type leaf struct {
	path  criteriadomain.Path
	value float64
}

func patchOf(leaves ...leaf) scoringdomain.Tree {
	t := scoringdomain.Tree{}
	for _, l := range leaves {
		t.Set(l.path, l.value)
	}
	return t
}

func (f *fixture) club(t *testing.T, id uuid.UUID) *clubdb.Club {
	t.Helper()
	c, err := f.clubs.GetByUUID(context.Background(), nil, id)
	require.NoError(t, err)
	return c
}

// requireConsistent asserts every stored total equals the engine's value.
func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	for _, c := range f.clubs.All() {
		want := f.engine.Compute(c.Scores, f.catalog)
		require.Equal(t, want.TotalScore, c.TotalScore, "club %s total", c.Name)
		require.Equal(t, want.Classification, c.Classification, "club %s classification", c.Name)
	}
}
