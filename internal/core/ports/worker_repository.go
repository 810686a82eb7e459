package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/worker"
)

type WorkerRepository interface {
	// Save inserts the profile or overwrites the existing one.
	Save(ctx context.Context, aggregate *worker.Worker) error

	Get(ctx context.Context, id kernel.UUID) (*worker.Worker, error)
}
