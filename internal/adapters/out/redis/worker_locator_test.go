package redis

import (
	"context"
	"errors"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeo struct {
	added    []*redis.GeoLocation
	query    *redis.GeoSearchQuery
	members  []string
	removed  []any
	failWith error
}

func (f *fakeGeo) GeoAdd(_ context.Context, _ string, geoLocation ...*redis.GeoLocation) *redis.IntCmd {
	f.added = append(f.added, geoLocation...)
	return redis.NewIntResult(int64(len(geoLocation)), f.failWith)
}

func (f *fakeGeo) GeoSearch(_ context.Context, _ string, q *redis.GeoSearchQuery) *redis.StringSliceCmd {
	f.query = q
	return redis.NewStringSliceResult(f.members, f.failWith)
}

func (f *fakeGeo) ZRem(_ context.Context, _ string, members ...any) *redis.IntCmd {
	f.removed = append(f.removed, members...)
	return redis.NewIntResult(int64(len(members)), f.failWith)
}

func mustLocation(t *testing.T, lat, lon float64) kernel.Location {
	t.Helper()
	location, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	return location
}

func TestWorkerLocator_FindWithinRadius(t *testing.T) {
	near := kernel.NewUUID()
	far := kernel.NewUUID()
	store := &fakeGeo{members: []string{near.String(), "not-a-worker", far.String()}}
	locator := newWorkerLocator(store, "")

	ids, err := locator.FindWithinRadius(t.Context(), mustLocation(t, 55.7558, 37.6173), 5000)

	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{near, far}, ids)
	require.NotNil(t, store.query)
	assert.InDelta(t, 5000, store.query.Radius, 1e-9)
	assert.Equal(t, "m", store.query.RadiusUnit)
	assert.Equal(t, "ASC", store.query.Sort)
	assert.InDelta(t, 37.6173, store.query.Longitude, 1e-9)
}

func TestWorkerLocator_FindWithinRadius_RejectsBadRadius(t *testing.T) {
	locator := newWorkerLocator(&fakeGeo{}, "")

	_, err := locator.FindWithinRadius(t.Context(), mustLocation(t, 1, 1), 0)
	require.Error(t, err)
}

func TestWorkerLocator_UpdateLocationAndRemove(t *testing.T) {
	store := &fakeGeo{}
	locator := newWorkerLocator(store, "workers")
	workerID := kernel.NewUUID()

	require.NoError(t, locator.UpdateLocation(t.Context(), workerID, mustLocation(t, 55.75, 37.61)))
	require.Len(t, store.added, 1)
	assert.Equal(t, workerID.String(), store.added[0].Name)
	assert.InDelta(t, 55.75, store.added[0].Latitude, 1e-9)
	assert.InDelta(t, 37.61, store.added[0].Longitude, 1e-9)

	require.NoError(t, locator.Remove(t.Context(), workerID))
	assert.Equal(t, []any{workerID.String()}, store.removed)
}

func TestWorkerLocator_WrapsStoreErrors(t *testing.T) {
	store := &fakeGeo{failWith: errors.New("connection refused")}
	locator := newWorkerLocator(store, "")

	_, err := locator.FindWithinRadius(t.Context(), mustLocation(t, 1, 1), 100)
	require.EqualError(t, err, "geosearch workers: connection refused")

	err = locator.UpdateLocation(t.Context(), kernel.NewUUID(), mustLocation(t, 1, 1))
	require.EqualError(t, err, "geoadd worker: connection refused")
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(Config{})
	require.Error(t, err)

	opts, err := optionsFromConfig(Config{URL: "redis://:secret@localhost:6380/2", PoolSize: 7})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
}
