package kernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		wantErr   bool
	}{
		{name: "valid location", latitude: 12.9716, longitude: 77.5946},
		{name: "valid location at min bounds", latitude: kernel.LatitudeMin, longitude: kernel.LongitudeMin},
		{name: "valid location at max bounds", latitude: kernel.LatitudeMax, longitude: kernel.LongitudeMax},
		{name: "latitude too small", latitude: -90.5, longitude: 10, wantErr: true},
		{name: "latitude too big", latitude: 91, longitude: 10, wantErr: true},
		{name: "longitude too small", latitude: 10, longitude: -181, wantErr: true},
		{name: "longitude too big", latitude: 10, longitude: 180.01, wantErr: true},
		{name: "latitude is NaN", latitude: math.NaN(), longitude: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := kernel.NewLocation(tt.latitude, tt.longitude)

			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				assert.Equal(t, kernel.Location{}, loc)
				return
			}

			require.NoError(t, err)
			require.NoError(t, loc.Validate())
			assert.InDelta(t, tt.latitude, loc.Latitude(), 1e-9)
			assert.InDelta(t, tt.longitude, loc.Longitude(), 1e-9)
		})
	}
}

func TestLocation_Validate_ZeroValue(t *testing.T) {
	var loc kernel.Location

	err := loc.Validate()

	require.Error(t, err)
	assert.Equal(t, kernel.ErrLocationIsNotConstructed, err)
}

func TestLocation_IsEqual(t *testing.T) {
	a, _ := kernel.NewLocation(12.97, 77.59)
	b, _ := kernel.NewLocation(12.97, 77.59)
	c, _ := kernel.NewLocation(12.98, 77.59)

	equal, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, equal)

	_, err = a.IsEqual(kernel.Location{})
	require.Error(t, err)
}

func TestLocation_DistanceMeters(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		a, _ := kernel.NewLocation(12.9716, 77.5946)

		d, err := a.DistanceMeters(a)

		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-6)
	})

	t.Run("one degree of latitude is about 111 km", func(t *testing.T) {
		a, _ := kernel.NewLocation(0, 0)
		b, _ := kernel.NewLocation(1, 0)

		d, err := a.DistanceMeters(b)

		require.NoError(t, err)
		assert.InDelta(t, 111195, d, 50)
	})

	t.Run("is symmetric", func(t *testing.T) {
		a, _ := kernel.NewLocation(12.9716, 77.5946)
		b, _ := kernel.NewLocation(12.9500, 77.6000)

		ab, err := a.DistanceMeters(b)
		require.NoError(t, err)
		ba, err := b.DistanceMeters(a)
		require.NoError(t, err)

		assert.InDelta(t, ab, ba, 1e-6)
		assert.Less(t, ab, 5000.0)
	})

	t.Run("zero value fails", func(t *testing.T) {
		a, _ := kernel.NewLocation(0, 0)

		_, err := a.DistanceMeters(kernel.Location{})

		require.Error(t, err)
	})
}
