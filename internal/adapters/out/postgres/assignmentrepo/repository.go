package assignmentrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAssignmentRepository implements AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add stores a new broadcasted record with its candidates.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return translate(err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Claim is a compare-and-set on (status, assigned_to). Only one of any number of
// concurrent callers can observe RowsAffected == 1 for the same record.
func (r *GormAssignmentRepository) Claim(
	ctx context.Context,
	id kernel.UUID,
	workerID kernel.UUID,
	at time.Time,
) (bool, error) {
	if err := errors.Join(id.Validate(), workerID.Validate()); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ? AND status = ? AND assigned_to IS NULL", id.Bytes(), int(assignment.Broadcasted)).
		Where(
			"EXISTS (SELECT 1 FROM assignment_candidates c WHERE c.assignment_id = assignments.id AND c.worker_id = ?)",
			workerID.Bytes(),
		).
		Updates(map[string]any{
			"status":      int(assignment.Assigned),
			"assigned_to": workerID.Bytes(),
			"accepted_at": at,
		})
	if result.Error != nil {
		return false, translate(result.Error)
	}

	return result.RowsAffected == 1, nil
}

// Complete closes an active record. A record that is already gone or completed is left alone.
func (r *GormAssignmentRepository) Complete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ? AND status <> ?", id.Bytes(), int(assignment.Completed)).
		Update("status", int(assignment.Completed)).Error
}

func (r *GormAssignmentRepository) DeleteHandoff(
	ctx context.Context,
	subOrderID, orderID, workerID kernel.UUID,
) (int64, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("sub_order_id = ? AND order_id = ? AND assigned_to = ?",
			subOrderID.Bytes(), orderID.Bytes(), workerID.Bytes()).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	return r.deleteByIDs(ctx, ids)
}

func (r *GormAssignmentRepository) DeleteUnclaimed(ctx context.Context, id kernel.UUID) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	db := r.db.WithContext(ctx)
	result := db.Where("id = ? AND status = ? AND assigned_to IS NULL", id.Bytes(), int(assignment.Broadcasted)).
		Delete(&AssignmentDTO{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	err := db.Where("assignment_id = ?", id.Bytes()).Delete(&CandidateDTO{}).Error
	return err == nil, err
}

func (r *GormAssignmentRepository) IsBusy(ctx context.Context, workerID kernel.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("assigned_to = ? AND status = ?", workerID.Bytes(), int(assignment.Assigned)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// BusyAmong restricts the busy lookup to the given candidates instead of loading
// every busy worker.
func (r *GormAssignmentRepository) BusyAmong(ctx context.Context, workerIDs []kernel.UUID) ([]kernel.UUID, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}

	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Distinct("assigned_to").
		Where("status = ? AND assigned_to IN ?", int(assignment.Assigned), toRaw(workerIDs)).
		Pluck("assigned_to", &raw).Error
	if err != nil {
		return nil, err
	}

	busy := make([]kernel.UUID, 0, len(raw))
	for _, id := range raw {
		workerID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		busy = append(busy, workerID)
	}
	return busy, nil
}

func (r *GormAssignmentRepository) FindAssignedTo(ctx context.Context, workerID kernel.UUID) (*assignment.Assignment, error) {
	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		Where("assigned_to = ? AND status = ?", workerID.Bytes(), int(assignment.Assigned)).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", "worker "+workerID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// DeleteSettled removes assigned records whose sub-order was delivered and records
// pointing at orders that no longer exist. Running it twice deletes nothing the second time.
func (r *GormAssignmentRepository) DeleteSettled(ctx context.Context) (int64, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where(
			"(status = ? AND sub_order_id IN (SELECT id FROM sub_orders WHERE status = ?)) "+
				"OR order_id NOT IN (SELECT id FROM orders)",
			int(assignment.Assigned), int(order.Delivered),
		).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	return r.deleteByIDs(ctx, ids)
}

func (r *GormAssignmentRepository) FindBroadcastedBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*assignment.Assignment, error) {
	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		Where("status = ? AND created_at < ?", int(assignment.Broadcasted), cutoff).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	out := make([]*assignment.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		a, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *GormAssignmentRepository) deleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("assignment_id IN ?", ids).Delete(&CandidateDTO{}).Error; err != nil {
		return 0, err
	}

	result := db.Where("id IN ?", ids).Delete(&AssignmentDTO{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", assignment.ErrActiveAssignmentConflict, err)
	}
	return err
}
