package redis

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

// DefaultWorkersKey is the sorted set holding worker positions.
const DefaultWorkersKey = "fulfillment:workers:geo"

type geoCmdable interface {
	GeoAdd(ctx context.Context, key string, geoLocation ...*redis.GeoLocation) *redis.IntCmd
	GeoSearch(ctx context.Context, key string, q *redis.GeoSearchQuery) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...any) *redis.IntCmd
}

// WorkerLocator implements ports.WorkerLocator on a Redis GEO set. A worker is
// online while their id is a member of the set.
type WorkerLocator struct {
	store geoCmdable
	key   string
}

func NewWorkerLocator(client *redis.Client, key string) *WorkerLocator {
	return newWorkerLocator(client, key)
}

func newWorkerLocator(store geoCmdable, key string) *WorkerLocator {
	if key == "" {
		key = DefaultWorkersKey
	}
	return &WorkerLocator{store: store, key: key}
}

// FindWithinRadius runs GEOSEARCH ... BYRADIUS ... ASC, so the nearest worker comes first.
func (l *WorkerLocator) FindWithinRadius(
	ctx context.Context,
	center kernel.Location,
	radiusMeters float64,
) ([]kernel.UUID, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		return nil, errors.New("search radius must be positive")
	}

	members, err := l.store.GeoSearch(ctx, l.key, &redis.GeoSearchQuery{
		Longitude:  center.Longitude(),
		Latitude:   center.Latitude(),
		Radius:     radiusMeters,
		RadiusUnit: "m",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geosearch workers: %w", err)
	}

	ids := make([]kernel.UUID, 0, len(members))
	for _, member := range members {
		id, parseErr := kernel.UUIDFromString(member)
		if parseErr != nil {
			// foreign members are skipped, not fatal
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (l *WorkerLocator) UpdateLocation(ctx context.Context, workerID kernel.UUID, location kernel.Location) error {
	if err := errors.Join(workerID.Validate(), location.Validate()); err != nil {
		return err
	}

	err := l.store.GeoAdd(ctx, l.key, &redis.GeoLocation{
		Name:      workerID.String(),
		Longitude: location.Longitude(),
		Latitude:  location.Latitude(),
	}).Err()
	if err != nil {
		return fmt.Errorf("geoadd worker: %w", err)
	}
	return nil
}

// Remove takes the worker offline.
func (l *WorkerLocator) Remove(ctx context.Context, workerID kernel.UUID) error {
	if err := l.store.ZRem(ctx, l.key, workerID.String()).Err(); err != nil {
		return fmt.Errorf("remove worker: %w", err)
	}
	return nil
}
