package drain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPages(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		pageSize  int
		wantTotal int
		wantCalls int
	}{
		{name: "empty", rows: 0, pageSize: 100, wantTotal: 0, wantCalls: 1},
		{name: "partial page", rows: 42, pageSize: 100, wantTotal: 42, wantCalls: 1},
		{name: "exact multiple", rows: 200, pageSize: 100, wantTotal: 200, wantCalls: 3},
		{name: "several pages", rows: 250, pageSize: 100, wantTotal: 250, wantCalls: 3},
		{name: "default page size", rows: 150, pageSize: 0, wantTotal: 150, wantCalls: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining := tt.rows
			calls := 0
			total, err := Pages(context.Background(), tt.pageSize, func(_ context.Context, limit int) (int, error) {
				calls++
				n := min(limit, remaining)
				remaining -= n
				return n, nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantCalls, calls)
			assert.Zero(t, remaining)
		})
	}
}

func TestPagesStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	total, err := Pages(context.Background(), 10, func(_ context.Context, limit int) (int, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return limit, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, total)
}

func TestPagesHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Pages(ctx, 10, func(context.Context, int) (int, error) {
		t.Fatal("page func should not run")
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEach(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var seen []int
	n, err := Each(context.Background(), 2,
		func(_ context.Context, offset, limit int) ([]int, error) {
			if offset >= len(items) {
				return nil, nil
			}
			end := min(offset+limit, len(items))
			return items[offset:end], nil
		},
		func(_ context.Context, item int) error {
			seen = append(seen, item)
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, items, seen)
}
