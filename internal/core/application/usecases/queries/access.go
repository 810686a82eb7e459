package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// subOrderAccess is the part of a sub-order that decides who may read it.
type subOrderAccess struct {
	id             uuid.UUID
	ownerID        uuid.UUID
	assignedWorker *uuid.UUID
}

// visibleSubOrders returns the ids of the order's sub-orders the viewer may read.
// The customer and the system see all of them, an owner sees their shop's, a worker
// the ones assigned to them. An empty result for an existing order is Forbidden.
func visibleSubOrders(ctx context.Context, db *gorm.DB, orderID kernel.UUID, viewer kernel.Actor) (map[uuid.UUID]struct{}, error) {
	var customerID uuid.UUID
	row := db.WithContext(ctx).Raw(`SELECT customer_id FROM orders WHERE id = ?`, orderID.Bytes()).Row()
	if err := row.Scan(&customerID); err != nil {
		if isNoRows(err) {
			return nil, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return nil, err
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT id, owner_id, assigned_worker_id
		FROM sub_orders
		WHERE order_id = ?
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	everything := viewer.Role() == kernel.RoleSystem ||
		(viewer.Role() == kernel.RoleCustomer && viewer.ID().Bytes() == customerID)

	visible := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var access subOrderAccess
		if err = rows.Scan(&access.id, &access.ownerID, &access.assignedWorker); err != nil {
			return nil, err
		}
		if everything || canRead(access, viewer) {
			visible[access.id] = struct{}{}
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(visible) == 0 {
		return nil, errs.NewForbiddenError("order is not visible to this user")
	}
	return visible, nil
}

func canRead(access subOrderAccess, viewer kernel.Actor) bool {
	id := viewer.ID().Bytes()
	switch viewer.Role() {
	case kernel.RoleOwner:
		return access.ownerID == id
	case kernel.RoleDeliveryWorker:
		return access.assignedWorker != nil && *access.assignedWorker == id
	default:
		return false
	}
}
