package evaluationservice

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyScorePatchPreservesUntouchedCategories(t *testing.T) {
	start := scoringdomain.ZeroTree(criteriadomain.Default())
	start.Set(marching, 150)
	start.Set(knots, 15)
	club := newClub(defaultEngine(), start)
	f := newFixture(t, club)

	result, err := f.svc.ApplyScorePatch(context.Background(), club.UUID, patchOf(leaf{opening, 30}), f.evaluator)
	require.NoError(t, err)

	stored := f.club(t, club.UUID)
	want := start.Clone()
	want.Set(opening, 30)
	if diff := cmp.Diff(want.Leaves(), stored.Scores.Leaves()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, f.engine.Compute(stored.Scores, nil), result)
	assert.Equal(t, result.TotalScore, stored.TotalScore)
	f.requireConsistent(t)
}

func TestApplyScorePatchRejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		patch   scoringdomain.Tree
		club    func(existing uuid.UUID) uuid.UUID
		actor   func(f *fixture) uuid.UUID
		wantErr error
		check   func(t *testing.T, err error)
	}{
		{
			name:    "above maximum",
			patch:   patchOf(leaf{opening, 101}),
			wantErr: apperrors.ErrExceedsMaximum,
			check: func(t *testing.T, err error) {
				var exceeds *apperrors.ExceedsMaximumError
				require.True(t, errors.As(err, &exceeds))
				assert.Equal(t, 100.0, exceeds.Max)
				assert.Equal(t, 30.0, exceeds.Partial)
				assert.Equal(t, opening, exceeds.Path)
			},
		},
		{
			name:    "one bad leaf rejects the whole patch",
			patch:   patchOf(leaf{closing, 100}, leaf{marching, 151}),
			wantErr: apperrors.ErrExceedsMaximum,
		},
		{name: "negative", patch: patchOf(leaf{opening, -1}), wantErr: apperrors.ErrInvalidScore},
		{name: "not a number", patch: patchOf(leaf{opening, math.NaN()}), wantErr: apperrors.ErrInvalidScore},
		{name: "negative demerit", patch: patchOf(leaf{noise, -20}), wantErr: apperrors.ErrInvalidScore},
		{
			name:    "unknown criterion",
			patch:   patchOf(leaf{criteriadomain.Path{Category: "events", Key: "rafting"}, 10}),
			wantErr: apperrors.ErrNotFound,
		},
		{
			name:    "group written as a leaf",
			patch:   patchOf(leaf{criteriadomain.Path{Category: "events", Key: "carousel"}, 10}),
			wantErr: apperrors.ErrNotFound,
		},
		{
			name: "number in place of a category",
			patch: scoringdomain.Tree{
				criteriadomain.CategoryParticipation: scoringdomain.Leaf(30),
				criteriadomain.CategoryEvents: scoringdomain.Group(map[string]scoringdomain.Node{
					"twelveHour": scoringdomain.Leaf(100),
				}),
			},
			wantErr: apperrors.ErrInvalidScore,
			check: func(t *testing.T, err error) {
				var invalid *apperrors.InvalidScoreError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, criteriadomain.Path{Category: criteriadomain.CategoryParticipation}, invalid.Path)
			},
		},
		{
			name: "group nested below a sub key",
			patch: scoringdomain.Tree{
				criteriadomain.CategoryEvents: scoringdomain.Group(map[string]scoringdomain.Node{
					"twelveHour": scoringdomain.Leaf(100),
					"carousel": scoringdomain.Group(map[string]scoringdomain.Node{
						"knots": scoringdomain.Group(map[string]scoringdomain.Node{"deep": scoringdomain.Leaf(999)}),
					}),
				}),
			},
			wantErr: apperrors.ErrInvalidScore,
			check: func(t *testing.T, err error) {
				var invalid *apperrors.InvalidScoreError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, knots, invalid.Path)
			},
		},
		{
			name: "infinite sub key",
			patch: scoringdomain.Tree{
				criteriadomain.CategoryEvents: scoringdomain.Group(map[string]scoringdomain.Node{
					"carousel": scoringdomain.Group(map[string]scoringdomain.Node{"knots": scoringdomain.Leaf(math.Inf(1))}),
				}),
			},
			wantErr: apperrors.ErrInvalidScore,
		},
		{name: "empty patch", patch: scoringdomain.Tree{}, wantErr: apperrors.ErrInvalidScore},
		{
			name:    "unknown club",
			patch:   patchOf(leaf{opening, 30}),
			club:    func(uuid.UUID) uuid.UUID { return uuid.New() },
			wantErr: apperrors.ErrNotFound,
		},
		{
			name:    "unknown actor",
			patch:   patchOf(leaf{opening, 30}),
			actor:   func(*fixture) uuid.UUID { return uuid.New() },
			wantErr: apperrors.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			club := newClub(defaultEngine(), nil)
			f := newFixture(t, club)
			before := f.club(t, club.UUID)

			clubID := club.UUID
			if tt.club != nil {
				clubID = tt.club(club.UUID)
			}
			actorID := f.evaluator
			if tt.actor != nil {
				actorID = tt.actor(f)
			}

			_, err := f.svc.ApplyScorePatch(context.Background(), clubID, tt.patch, actorID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.check != nil {
				tt.check(t, err)
			}

			after := f.club(t, club.UUID)
			assert.Equal(t, before.Scores, after.Scores)
			assert.Equal(t, before.TotalScore, after.TotalScore)
			assert.Empty(t, f.locks.All())
			assert.Empty(t, f.activity.All())
		})
	}
}

func TestApplyScorePatchLocksWriteOnce(t *testing.T) {
	club := newClub(defaultEngine(), nil)
	f := newFixture(t, club)
	ctx := context.Background()

	_, err := f.svc.ApplyScorePatch(ctx, club.UUID, patchOf(leaf{opening, 30}), f.evaluator)
	require.NoError(t, err)

	recs := f.locks.All()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].IsLocked)
	assert.Equal(t, 30.0, recs[0].Score)
	assert.Equal(t, f.evaluator, recs[0].EvaluatedBy)

	_, err = f.svc.ApplyScorePatch(ctx, club.UUID, patchOf(leaf{opening, 100}), f.evaluator)
	require.ErrorIs(t, err, apperrors.ErrCriterionLocked)
	var locked *apperrors.CriterionLockedError
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, f.evaluator, locked.EvaluatedBy)

	got, _ := f.club(t, club.UUID).Scores.Get(opening)
	assert.Equal(t, 30.0, got)
	assert.Len(t, f.activity.All(), 1)
	f.requireConsistent(t)
}

func TestApplyScorePatchAdminOverwritesLock(t *testing.T) {
	club := newClub(defaultEngine(), nil)
	f := newFixture(t, club)
	ctx := context.Background()

	_, err := f.svc.ApplyScorePatch(ctx, club.UUID, patchOf(leaf{opening, 30}), f.evaluator)
	require.NoError(t, err)
	_, err = f.svc.ApplyScorePatch(ctx, club.UUID, patchOf(leaf{opening, 100}), f.admin)
	require.NoError(t, err)

	recs := f.locks.All()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].IsLocked)
	assert.Equal(t, 100.0, recs[0].Score)
	assert.Equal(t, f.admin, recs[0].EvaluatedBy)
	f.requireConsistent(t)
}

func TestApplyScorePatchDemeritsNeverLock(t *testing.T) {
	club := newClub(defaultEngine(), scoringdomain.MaxTree(criteriadomain.Default()))
	f := newFixture(t, club)
	ctx := context.Background()

	var totals []float64
	for _, v := range []float64{20, 40, 60} {
		res, err := f.svc.ApplyScorePatch(ctx, club.UUID, patchOf(leaf{noise, v}), f.evaluator)
		require.NoError(t, err)
		totals = append(totals, res.TotalScore)

		locked, err := f.svc.IsCriterionLocked(ctx, club.UUID, noise)
		require.NoError(t, err)
		assert.False(t, locked)
	}

	assert.Empty(t, f.locks.All())
	assert.Len(t, f.activity.All(), 3)
	assert.Equal(t, []float64{1290, 1270, 1250}, totals)
	f.requireConsistent(t)
}

func TestApplyScorePatchAuditsChangedLeavesOnly(t *testing.T) {
	start := scoringdomain.ZeroTree(criteriadomain.Default())
	start.Set(opening, 30)
	club := newClub(defaultEngine(), start)
	f := newFixture(t, club)

	_, err := f.svc.ApplyScorePatch(context.Background(), club.UUID, patchOf(leaf{opening, 30}, leaf{closing, 100}), f.admin)
	require.NoError(t, err)

	logs := f.activity.All()
	require.Len(t, logs, 1)
	assert.Equal(t, activitydomain.ActionScoreUpdate, logs[0].Action)
	require.NotNil(t, logs[0].ScoreChange)
	assert.Equal(t, activitydomain.ScoreChange{
		Category:    criteriadomain.CategoryParticipation,
		Subcategory: "closing",
		OldValue:    0,
		NewValue:    100,
		Difference:  100,
	}, *logs[0].ScoreChange)
	assert.Equal(t, club.Name, *logs[0].ClubName)

	recs := f.locks.All()
	require.Len(t, recs, 1)
	assert.Equal(t, closing, recs[0].Path())
}

func TestApplyScorePatchCreatesMissingBranches(t *testing.T) {
	club := newClub(defaultEngine(), scoringdomain.Tree{})
	f := newFixture(t, club)

	_, err := f.svc.ApplyScorePatch(context.Background(), club.UUID, patchOf(leaf{knots, 15}), f.evaluator)
	require.NoError(t, err)

	got, ok := f.club(t, club.UUID).Scores.Get(knots)
	require.True(t, ok)
	assert.Equal(t, 15.0, got)

	info, err := f.svc.GetEvaluatedCriteria(context.Background(), club.UUID)
	require.NoError(t, err)
	require.Contains(t, info, "events.carousel.knots")
	assert.Equal(t, 15.0, info["events.carousel.knots"].Score)
	assert.Equal(t, "Counselor", info["events.carousel.knots"].EvaluatorName)
}

func TestUnlockThenReapply(t *testing.T) {
	club := newClub(defaultEngine(), nil)
	f := newFixture(t, club)
	ctx := context.Background()

	_, err := f.svc.ApplyScorePatch(ctx, club.UUID, patchOf(leaf{opening, 30}), f.evaluator)
	require.NoError(t, err)
	first := f.locks.All()[0]

	require.NoError(t, f.svc.UnlockCriterion(ctx, club.UUID, opening, f.admin))
	locked, err := f.svc.IsCriterionLocked(ctx, club.UUID, opening)
	require.NoError(t, err)
	assert.False(t, locked)

	_, err = f.svc.ApplyScorePatch(ctx, club.UUID, patchOf(leaf{opening, 100}), f.evaluator)
	require.NoError(t, err)

	recs := f.locks.All()
	require.Len(t, recs, 1)
	assert.Equal(t, first.ID, recs[0].ID)
	assert.Equal(t, 100.0, recs[0].Score)
	assert.True(t, recs[0].IsLocked)
	assert.False(t, recs[0].EvaluatedAt.Before(first.EvaluatedAt))
	f.requireConsistent(t)
}
