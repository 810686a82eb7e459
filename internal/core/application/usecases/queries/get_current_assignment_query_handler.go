package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetCurrentAssignmentQueryHandler struct {
	db         *gorm.DB
	reconciler Reconciler
}

func NewGetCurrentAssignmentQueryHandler(db *gorm.DB, reconciler Reconciler) GetCurrentAssignmentQueryHandler {
	return GetCurrentAssignmentQueryHandler{db: db, reconciler: reconciler}
}

// Handle reconciles stale records first so a delivered job never shows up as current.
func (h GetCurrentAssignmentQueryHandler) Handle(
	ctx context.Context,
	query GetCurrentAssignmentQuery,
) (CurrentAssignmentView, error) {
	if err := query.Validate(); err != nil {
		return CurrentAssignmentView{}, err
	}

	if h.reconciler != nil {
		if err := h.reconciler.Reconcile(ctx); err != nil {
			return CurrentAssignmentView{}, err
		}
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			a.id,
			a.order_id,
			a.sub_order_id,
			s.shop_id,
			s.shop_name,
			s.status,
			s.subtotal,
			o.customer_id,
			o.address_text,
			o.address_latitude,
			o.address_longitude,
			w.latitude,
			w.longitude,
			a.accepted_at
		FROM assignments a
		JOIN sub_orders s ON s.id = a.sub_order_id
		JOIN orders o ON o.id = a.order_id
		LEFT JOIN workers w ON w.id = a.assigned_to
		WHERE a.assigned_to = ? AND a.status = ?
		LIMIT 1
	`, query.WorkerID().Bytes(), int(assignment.Assigned)).Rows()
	if err != nil {
		return CurrentAssignmentView{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return CurrentAssignmentView{}, err
		}
		return CurrentAssignmentView{}, errs.NewObjectNotFoundError("assignment", "worker "+query.WorkerID().String())
	}

	var view CurrentAssignmentView
	var id, orderID, subOrderID, shopID, customerID uuid.UUID
	var status int
	var acceptedAt *time.Time

	err = rows.Scan(
		&id,
		&orderID,
		&subOrderID,
		&shopID,
		&view.ShopName,
		&status,
		&view.Subtotal,
		&customerID,
		&view.DeliveryAddress,
		&view.Latitude,
		&view.Longitude,
		&view.WorkerLatitude,
		&view.WorkerLongitude,
		&acceptedAt,
	)
	if err != nil {
		return CurrentAssignmentView{}, err
	}
	if err = rows.Close(); err != nil {
		return CurrentAssignmentView{}, err
	}

	if view.AssignmentID, err = toKernelUUID(id); err != nil {
		return CurrentAssignmentView{}, err
	}
	if view.OrderID, err = toKernelUUID(orderID); err != nil {
		return CurrentAssignmentView{}, err
	}
	if view.SubOrderID, err = toKernelUUID(subOrderID); err != nil {
		return CurrentAssignmentView{}, err
	}
	if view.ShopID, err = toKernelUUID(shopID); err != nil {
		return CurrentAssignmentView{}, err
	}
	if view.CustomerID, err = toKernelUUID(customerID); err != nil {
		return CurrentAssignmentView{}, err
	}
	view.Status = order.Status(status)
	view.AcceptedAt = acceptedAt

	items, err := loadItems(ctx, h.db, []uuid.UUID{subOrderID})
	if err != nil {
		return CurrentAssignmentView{}, err
	}
	view.Items = items[subOrderID]

	return view, nil
}
