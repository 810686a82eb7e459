package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUpdateWorkerLocationCommand_Success(t *testing.T) {
	workerID := kernel.NewUUID()

	cmd, err := commands.NewUpdateWorkerLocationCommand(workerID, "Ivan", "ivan@example.com", 55.75, 37.61, testNow)

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, workerID, cmd.WorkerID())
	assert.InDelta(t, 55.75, cmd.Location().Latitude(), 1e-9)
	assert.InDelta(t, 37.61, cmd.Location().Longitude(), 1e-9)
}

func TestNewUpdateWorkerLocationCommand_InvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		workerID kernel.UUID
		lat, lon float64
	}{
		{"missing worker", kernel.UUID{}, 55.75, 37.61},
		{"latitude out of range", kernel.NewUUID(), 91, 37.61},
		{"longitude out of range", kernel.NewUUID(), 55.75, -181},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commands.NewUpdateWorkerLocationCommand(tt.workerID, "Ivan", "", tt.lat, tt.lon, testNow)
			require.Error(t, err)
		})
	}
}
