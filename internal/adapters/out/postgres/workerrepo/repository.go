// Package workerrepo persists delivery worker profiles and their last known position.
package workerrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/worker"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkerDTO represents the database structure for worker profiles.
type WorkerDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null"`
	Email      string    `gorm:"size:320"`
	Latitude   *float64
	Longitude  *float64
	LastSeenAt *time.Time
	UpdatedAt  time.Time
}

func (WorkerDTO) TableName() string {
	return "workers"
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

type GormWorkerRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormWorkerRepository(db *gorm.DB, tracker aggregateTracker) *GormWorkerRepository {
	return &GormWorkerRepository{
		db:      db,
		tracker: tracker,
	}
}

// Save upserts the profile keyed by id.
func (r *GormWorkerRepository) Save(ctx context.Context, aggregate *worker.Worker) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "latitude", "longitude", "last_seen_at", "updated_at"}),
		}).
		Create(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormWorkerRepository) Get(ctx context.Context, id kernel.UUID) (*worker.Worker, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto WorkerDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("worker", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func fromDomain(aggregate *worker.Worker) WorkerDTO {
	dto := WorkerDTO{
		ID:         aggregate.ID().Bytes(),
		Name:       aggregate.Name(),
		Email:      aggregate.Email(),
		LastSeenAt: aggregate.LastSeenAt(),
	}
	if loc := aggregate.Location(); loc != nil {
		lat, lon := loc.Latitude(), loc.Longitude()
		dto.Latitude = &lat
		dto.Longitude = &lon
	}
	return dto
}

func toDomain(dto WorkerDTO) (*worker.Worker, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.Latitude != nil && dto.Longitude != nil {
		loc, locErr := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return worker.RestoreWorker(id, dto.Name, dto.Email, location, dto.LastSeenAt)
}
