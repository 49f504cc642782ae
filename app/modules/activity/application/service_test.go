package activityservice

import (
	"context"
	"log/slog"
	"testing"

	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func seed(t *testing.T, repo *activitydb.FakeRepository, clubs ...uuid.UUID) {
	t.Helper()
	for i, c := range clubs {
		club := c
		require.NoError(t, repo.Append(context.Background(), nil, &activitydb.ActivityLog{
			UserName: "evaluator",
			Action:   activitydomain.ActionScoreUpdate,
			Details:  "entry",
			ClubUUID: &club,
			ScoreChange: &activitydomain.ScoreChange{
				Category: "events", Subcategory: "marching", NewValue: float64(i),
			},
		}))
	}
}

func TestGetClubActivityLogs(t *testing.T) {
	clubA, clubB := uuid.New(), uuid.New()
	repo := activitydb.NewFakeRepository()
	seed(t, repo, clubA, clubB, clubA, clubA)

	svc := NewActivityService(repo, slog.Default(), observability.NewNoop(), noop.NewTracerProvider().Tracer("test"), nil)

	tests := []struct {
		name    string
		club    uuid.UUID
		limit   int
		wantLen int
		wantErr error
	}{
		{name: "club A newest first", club: clubA, limit: 10, wantLen: 3},
		{name: "limit applied", club: clubA, limit: 2, wantLen: 2},
		{name: "other club", club: clubB, limit: 0, wantLen: 1},
		{name: "unknown club", club: uuid.New(), limit: 5, wantLen: 0},
		{name: "nil club", club: uuid.Nil, wantErr: ErrInvalidClub},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := svc.GetClubActivityLogs(context.Background(), tt.club, tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, logs, tt.wantLen)
			for i := 1; i < len(logs); i++ {
				assert.Greater(t, logs[i-1].ID, logs[i].ID)
			}
		})
	}
}

func TestGetAllActivityLogs(t *testing.T) {
	repo := activitydb.NewFakeRepository()
	seed(t, repo, uuid.New(), uuid.New(), uuid.New())

	svc := NewActivityService(repo, nil, nil, nil, nil)

	logs, err := svc.GetAllActivityLogs(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(3), logs[0].ID)
}
