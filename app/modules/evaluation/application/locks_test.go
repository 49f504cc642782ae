package evaluationservice

import (
	"context"
	"testing"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	evaluationdb "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockCriterion(t *testing.T) {
	tests := []struct {
		name    string
		path    criteriadomain.Path
		score   float64
		club    func(existing uuid.UUID) uuid.UUID
		wantErr error
	}{
		{name: "locks additive criterion", path: twelveHour, score: 100},
		{name: "locks sub item", path: knots, score: 15},
		{name: "demerit", path: noise, score: 20, wantErr: apperrors.ErrDemeritNotLockable},
		{name: "above maximum", path: twelveHour, score: 120, wantErr: apperrors.ErrExceedsMaximum},
		{name: "unknown criterion", path: criteriadomain.Path{Category: "events", Key: "rafting"}, score: 1, wantErr: apperrors.ErrNotFound},
		{name: "unknown club", path: twelveHour, score: 100, club: func(uuid.UUID) uuid.UUID { return uuid.New() }, wantErr: apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			club := newClub(defaultEngine(), nil)
			f := newFixture(t, club)
			clubID := club.UUID
			if tt.club != nil {
				clubID = tt.club(club.UUID)
			}

			info, err := f.svc.LockCriterion(context.Background(), clubID, tt.path, tt.score, f.evaluator)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.locks.All())
				return
			}
			require.NoError(t, err)
			assert.True(t, info.IsLocked)
			assert.Equal(t, tt.score, info.Score)
			assert.Equal(t, tt.path, info.Path)

			locked, err := f.svc.IsCriterionLocked(context.Background(), club.UUID, tt.path)
			require.NoError(t, err)
			assert.True(t, locked)

			logs := f.activity.All()
			require.Len(t, logs, 1)
			assert.Equal(t, activitydomain.ActionCriterionLocked, logs[0].Action)
		})
	}
}

func TestLockCriterionIsIdempotent(t *testing.T) {
	club := newClub(defaultEngine(), nil)
	f := newFixture(t, club)
	ctx := context.Background()

	_, err := f.svc.LockCriterion(ctx, club.UUID, twelveHour, 50, f.evaluator)
	require.NoError(t, err)
	_, err = f.svc.LockCriterion(ctx, club.UUID, twelveHour, 100, f.admin)
	require.NoError(t, err)

	recs := f.locks.All()
	require.Len(t, recs, 1)
	assert.Equal(t, 100.0, recs[0].Score)
	assert.Equal(t, f.admin, recs[0].EvaluatedBy)
	assert.Equal(t, "Director", recs[0].EvaluatedByName)
}

func TestUnlockCriterion(t *testing.T) {
	tests := []struct {
		name    string
		path    criteriadomain.Path
		actor   func(f *fixture) uuid.UUID
		wantErr error
	}{
		{name: "admin unlocks", path: twelveHour, actor: func(f *fixture) uuid.UUID { return f.admin }},
		{name: "system actor id is not a caller", path: twelveHour, actor: func(f *fixture) uuid.UUID { return f.system }, wantErr: apperrors.ErrNotFound},
		{name: "evaluator rejected", path: twelveHour, actor: func(f *fixture) uuid.UUID { return f.evaluator }, wantErr: apperrors.ErrUnauthorized},
		{name: "no record", path: marching, actor: func(f *fixture) uuid.UUID { return f.admin }, wantErr: apperrors.ErrNotFound},
		{name: "demerit", path: noise, actor: func(f *fixture) uuid.UUID { return f.admin }, wantErr: apperrors.ErrDemeritNotLockable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			club := newClub(defaultEngine(), nil)
			f := newFixture(t, club)
			ctx := context.Background()
			_, err := f.svc.LockCriterion(ctx, club.UUID, twelveHour, 100, f.evaluator)
			require.NoError(t, err)

			err = f.svc.UnlockCriterion(ctx, club.UUID, tt.path, tt.actor(f))
			locked, lerr := f.svc.IsCriterionLocked(ctx, club.UUID, twelveHour)
			require.NoError(t, lerr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, locked)
				return
			}
			require.NoError(t, err)
			assert.False(t, locked)

			recs := f.locks.All()
			require.Len(t, recs, 1, "record is kept after unlock")
			logs := f.activity.All()
			assert.Equal(t, activitydomain.ActionCriterionUnlocked, logs[len(logs)-1].Action)
		})
	}
}

func TestClearAllLocks(t *testing.T) {
	engine := defaultEngine()
	clubA, clubB := newClub(engine, nil), newClub(engine, nil)

	seed := func(t *testing.T, f *fixture) {
		t.Helper()
		for _, c := range []uuid.UUID{clubA.UUID, clubB.UUID} {
			for _, p := range []criteriadomain.Path{opening, closing, twelveHour} {
				_, err := f.svc.LockCriterion(context.Background(), c, p, 0, f.evaluator)
				require.NoError(t, err)
			}
		}
	}

	t.Run("one club", func(t *testing.T) {
		f := newFixture(t, clubA, clubB)
		seed(t, f)

		n, err := f.svc.ClearAllLocks(context.Background(), &clubA.UUID, f.admin)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		for _, r := range f.locks.All() {
			assert.Equal(t, clubB.UUID, r.ClubUUID)
		}

		logs := f.activity.All()
		last := logs[len(logs)-1]
		assert.Equal(t, activitydomain.ActionLocksCleared, last.Action)
		require.NotNil(t, last.ClubUUID)
		assert.Equal(t, clubA.UUID, *last.ClubUUID)
	})

	t.Run("every club in pages", func(t *testing.T) {
		f := newFixture(t, clubA, clubB)
		seed(t, f)

		n, err := f.svc.ClearAllLocks(context.Background(), nil, f.admin)
		require.NoError(t, err)
		assert.Equal(t, 6, n)
		assert.Empty(t, f.locks.All())
	})

	t.Run("evaluator rejected", func(t *testing.T) {
		f := newFixture(t, clubA, clubB)
		seed(t, f)

		_, err := f.svc.ClearAllLocks(context.Background(), nil, f.evaluator)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.Len(t, f.locks.All(), 6)
	})

	t.Run("unknown club", func(t *testing.T) {
		f := newFixture(t, clubA, clubB)
		missing := uuid.New()
		_, err := f.svc.ClearAllLocks(context.Background(), &missing, f.admin)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestGetEvaluatedCriteria(t *testing.T) {
	club := newClub(defaultEngine(), nil)
	f := newFixture(t, club)
	ctx := context.Background()

	_, err := f.svc.LockCriterion(ctx, club.UUID, twelveHour, 100, f.evaluator)
	require.NoError(t, err)
	_, err = f.svc.LockCriterion(ctx, club.UUID, knots, 30, f.evaluator)
	require.NoError(t, err)
	require.NoError(t, f.locks.Upsert(ctx, nil, &evaluationdb.EvaluatedCriterion{
		ClubUUID: uuid.New(), Category: "events", CriteriaKey: "marching", Score: 150, IsLocked: true,
	}))

	got, err := f.svc.GetEvaluatedCriteria(ctx, club.UUID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "events.twelveHour")
	assert.Contains(t, got, "events.carousel.knots")
}
