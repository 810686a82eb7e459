package orderrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order with its sub-orders, items and the initial audit entries.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	if err := db.Create(&dto).Error; err != nil {
		return err
	}

	if err := r.appendStatusChanges(db, aggregate); err != nil {
		return err
	}

	aggregate.MarkSaved()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the payment state if it changed and the handoff columns of the sub-orders
// that changed, then appends pending audit entries. Untouched sub-orders are left alone so a
// stale copy never overwrites a sibling that another request changed. Checkout data (items,
// subtotals, shops) is never rewritten.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if aggregate.PaymentModified() {
		result := db.Model(&OrderDTO{}).Where("id = ?", aggregate.ID().Bytes()).
			Updates(paymentColumns(aggregate.Payment()))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}

	for _, so := range aggregate.SubOrders() {
		if !so.IsModified() {
			continue
		}
		result := db.Model(&SubOrderDTO{}).
			Where("id = ? AND order_id = ?", so.ID().Bytes(), aggregate.ID().Bytes()).
			Updates(handoffColumns(so))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}

	if err := r.appendStatusChanges(db, aggregate); err != nil {
		return err
	}

	aggregate.MarkSaved()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order with its sub-orders and items by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("SubOrders", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("SubOrders.Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) appendStatusChanges(db *gorm.DB, aggregate *order.Order) error {
	for _, so := range aggregate.SubOrders() {
		changes := statusChangesFromDomain(aggregate.ID().Bytes(), so)
		if len(changes) == 0 {
			continue
		}
		if err := db.Omit(clause.Associations).Create(&changes).Error; err != nil {
			return err
		}
	}
	return nil
}
