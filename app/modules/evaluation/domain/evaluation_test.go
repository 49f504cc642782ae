package evaluationdomain

import (
	"testing"

	"github.com/Black-And-White-Club/campscore/app/apperrors"
	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeValue(t *testing.T) {
	p := criteriadomain.Path{Category: "events", Key: "twelveHour"}

	tests := []struct {
		name    string
		outcome Outcome
		max     float64
		partial float64
		want    float64
		wantErr error
	}{
		{name: "full", outcome: OutcomeFull, max: 100, partial: 50, want: 100},
		{name: "partial", outcome: OutcomePartial, max: 100, partial: 50, want: 50},
		{name: "zero", outcome: OutcomeZero, max: 100, partial: 50, want: 0},
		{name: "partial without partial credit", outcome: OutcomePartial, max: 100, wantErr: apperrors.ErrInvalidScore},
		{name: "unknown outcome", outcome: "half", max: 100, wantErr: apperrors.ErrInvalidScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.outcome.Value(p, tt.max, tt.partial)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
