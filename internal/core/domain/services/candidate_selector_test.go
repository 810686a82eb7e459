package services_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateSelector_Select(t *testing.T) {
	w1, w2, w3 := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	selector := services.NewCandidateSelector()

	tests := []struct {
		name    string
		nearby  []kernel.UUID
		busy    []kernel.UUID
		want    []kernel.UUID
		wantErr error
	}{
		{name: "busy workers are excluded", nearby: []kernel.UUID{w1, w2, w3}, busy: []kernel.UUID{w2}, want: []kernel.UUID{w1, w3}},
		{name: "nobody busy", nearby: []kernel.UUID{w1, w2}, want: []kernel.UUID{w1, w2}},
		{name: "duplicates collapse", nearby: []kernel.UUID{w1, w1, w2}, want: []kernel.UUID{w1, w2}},
		{name: "busy workers outside the radius are ignored", nearby: []kernel.UUID{w1}, busy: []kernel.UUID{w3}, want: []kernel.UUID{w1}},
		{name: "everyone busy", nearby: []kernel.UUID{w1, w2}, busy: []kernel.UUID{w1, w2}, wantErr: services.ErrNoCandidates},
		{name: "nobody nearby", wantErr: services.ErrNoCandidates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selector.Select(tt.nearby, tt.busy)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid identifier", func(t *testing.T) {
		_, err := selector.Select([]kernel.UUID{{}}, nil)

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}
