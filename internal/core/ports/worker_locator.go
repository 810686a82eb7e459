package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// WorkerLocator is the geospatial index of online delivery workers.
type WorkerLocator interface {
	// FindWithinRadius returns workers whose last position is within radiusMeters,
	// nearest first.
	FindWithinRadius(ctx context.Context, center kernel.Location, radiusMeters float64) ([]kernel.UUID, error)

	UpdateLocation(ctx context.Context, workerID kernel.UUID, location kernel.Location) error

	Remove(ctx context.Context, workerID kernel.UUID) error
}
