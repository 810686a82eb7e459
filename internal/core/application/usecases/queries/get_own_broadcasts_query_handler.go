package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/assignment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetOwnBroadcastsQueryHandler struct {
	db *gorm.DB
}

func NewGetOwnBroadcastsQueryHandler(db *gorm.DB) GetOwnBroadcastsQueryHandler {
	return GetOwnBroadcastsQueryHandler{db: db}
}

// Handle returns unclaimed broadcasts offered to the worker, newest first.
// Reading does not change any state.
func (h GetOwnBroadcastsQueryHandler) Handle(ctx context.Context, query GetOwnBroadcastsQuery) ([]BroadcastView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			a.id,
			a.order_id,
			a.sub_order_id,
			s.shop_id,
			s.shop_name,
			s.subtotal,
			o.address_text,
			o.address_latitude,
			o.address_longitude,
			a.created_at
		FROM assignments a
		JOIN assignment_candidates c ON c.assignment_id = a.id
		JOIN sub_orders s ON s.id = a.sub_order_id
		JOIN orders o ON o.id = a.order_id
		WHERE c.worker_id = ? AND a.status = ? AND a.assigned_to IS NULL
		ORDER BY a.created_at DESC
	`, query.WorkerID().Bytes(), int(assignment.Broadcasted)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]BroadcastView, 0)
	subOrderIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var view BroadcastView
		var id, orderID, subOrderID, shopID uuid.UUID
		var subtotal decimal.Decimal

		err = rows.Scan(
			&id,
			&orderID,
			&subOrderID,
			&shopID,
			&view.ShopName,
			&subtotal,
			&view.DeliveryAddress,
			&view.Latitude,
			&view.Longitude,
			&view.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if view.AssignmentID, err = toKernelUUID(id); err != nil {
			return nil, err
		}
		if view.OrderID, err = toKernelUUID(orderID); err != nil {
			return nil, err
		}
		if view.SubOrderID, err = toKernelUUID(subOrderID); err != nil {
			return nil, err
		}
		if view.ShopID, err = toKernelUUID(shopID); err != nil {
			return nil, err
		}
		view.Subtotal = subtotal

		views = append(views, view)
		subOrderIDs = append(subOrderIDs, subOrderID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	items, err := loadItems(ctx, h.db, subOrderIDs)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Items = items[views[i].SubOrderID.Bytes()]
	}

	return views, nil
}

// loadItems returns the item lines of the given sub-orders keyed by sub-order id.
func loadItems(ctx context.Context, db *gorm.DB, subOrderIDs []uuid.UUID) (map[uuid.UUID][]ItemView, error) {
	out := make(map[uuid.UUID][]ItemView, len(subOrderIDs))
	if len(subOrderIDs) == 0 {
		return out, nil
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT sub_order_id, name, price, quantity
		FROM sub_order_items
		WHERE sub_order_id IN ?
		ORDER BY sub_order_id, position
	`, subOrderIDs).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var subOrderID uuid.UUID
		var item ItemView
		if err = rows.Scan(&subOrderID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		out[subOrderID] = append(out[subOrderID], item)
	}
	return out, rows.Err()
}
