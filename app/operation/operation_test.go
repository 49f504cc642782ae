package operation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	"github.com/Black-And-White-Club/campscore/app/observability"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestRunner() *Runner {
	return NewRunner("TestService", slog.Default(), observability.NewNoop(), noop.NewTracerProvider().Tracer("test"), nil)
}

func TestRunSuccess(t *testing.T) {
	got, err := Run(newTestRunner(), context.Background(), "Op", "id", func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		assert.Nil(t, db)
		return results.SuccessResult[int, error](42), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRunFailureResultBecomesError(t *testing.T) {
	domainErr := errors.New("club not found")
	_, err := Run(newTestRunner(), context.Background(), "Op", "id", func(context.Context, bun.IDB) (results.OperationResult[int, error], error) {
		return results.FailureResult[int, error](domainErr), nil
	})
	assert.ErrorIs(t, err, domainErr)
}

func TestRunWrapsInfrastructureError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := Run(newTestRunner(), context.Background(), "Op", "id", func(context.Context, bun.IDB) (results.OperationResult[int, error], error) {
		return results.OperationResult[int, error]{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Op:")
}

func TestRunRecoversPanics(t *testing.T) {
	_, err := Run(newTestRunner(), context.Background(), "Op", "id", func(context.Context, bun.IDB) (results.OperationResult[int, error], error) {
		panic("nil map")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in Op")
}

func TestRunWithoutTxPassesNilDB(t *testing.T) {
	r := NewRunner("TestService", nil, nil, nil, nil)
	got, err := RunWithoutTx(r, context.Background(), "Op", "id", func(_ context.Context, db bun.IDB) (results.OperationResult[string, error], error) {
		assert.Nil(t, db)
		return results.SuccessResult[string, error]("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestFromError(t *testing.T) {
	result, err := FromError[int](apperrors.Unauthorized("DeleteClub"))
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, *result.Failure, apperrors.ErrUnauthorized)

	boom := errors.New("connection reset")
	result, err = FromError[int](boom)
	assert.ErrorIs(t, err, boom)
	assert.False(t, result.IsFailure())
}

type fieldErr map[byte]string

func (e fieldErr) Error() string       { return "pg: " + e['M'] }
func (e fieldErr) Field(k byte) string { return e[k] }

type stateErr string

func (e stateErr) Error() string    { return "pgx: " + string(e) }
func (e stateErr) SQLState() string { return string(e) }

func TestIsSerializationFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"bun serialization", fieldErr{'C': "40001", 'M': "could not serialize access"}, true},
		{"bun deadlock wrapped", fmt.Errorf("update: %w", fieldErr{'C': "40P01"}), true},
		{"bun unique violation", fieldErr{'C': "23505"}, false},
		{"pgx serialization", stateErr("40001"), true},
		{"pgx other", stateErr("42P01"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSerializationFailure(tt.err))
		})
	}
}
