package queries_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTodayDeliveriesQueryHandler_Handle(t *testing.T) {
	db := newTestDB(t)
	s := newStore(t, db)
	handler := queries.NewGetTodayDeliveriesQueryHandler(db)

	workerID := kernel.NewUUID()
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	s.deliverNew(workerID, day.Add(9*time.Hour+15*time.Minute))
	s.deliverNew(workerID, day.Add(9*time.Hour+40*time.Minute))
	s.deliverNew(workerID, day.Add(17*time.Hour+5*time.Minute))
	s.deliverNew(workerID, day.Add(-2*time.Hour))
	s.deliverNew(kernel.NewUUID(), day.Add(10*time.Hour))

	query, err := queries.NewGetTodayDeliveriesQuery(workerID, day.Add(20*time.Hour))
	require.NoError(t, err)

	result, err := handler.Handle(t.Context(), query)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Hours, 24)
	for hour, bucket := range result.Hours {
		assert.Equal(t, hour, bucket.Hour)
		switch hour {
		case 9:
			assert.Equal(t, 2, bucket.Count)
		case 17:
			assert.Equal(t, 1, bucket.Count)
		default:
			assert.Zero(t, bucket.Count, "hour %d", hour)
		}
	}
}

func TestGetTodayDeliveriesQueryHandler_EmptyDayHasAllHours(t *testing.T) {
	handler := queries.NewGetTodayDeliveriesQueryHandler(newTestDB(t))

	query, err := queries.NewGetTodayDeliveriesQuery(kernel.NewUUID(), testNow)
	require.NoError(t, err)

	result, err := handler.Handle(t.Context(), query)
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.Len(t, result.Hours, 24)
}

func TestGetTodayDeliveriesQuery_Day(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	query, err := queries.NewGetTodayDeliveriesQuery(kernel.NewUUID(), time.Date(2025, 3, 14, 1, 30, 0, 0, zone))
	require.NoError(t, err)

	start, end := query.Day()
	assert.True(t, start.Equal(time.Date(2025, 3, 13, 21, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
