package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	visible, err := visibleSubOrders(ctx, h.db, query.OrderID(), query.Viewer())
	if err != nil {
		return OrderView{}, err
	}

	var view OrderView
	var id, customerID uuid.UUID
	var method int
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			payment_method,
			payment_captured,
			address_text,
			address_latitude,
			address_longitude,
			total_amount,
			created_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()
	err = row.Scan(
		&id,
		&customerID,
		&method,
		&view.PaymentCaptured,
		&view.DeliveryAddress,
		&view.Latitude,
		&view.Longitude,
		&view.TotalAmount,
		&view.CreatedAt,
	)
	if err != nil {
		return OrderView{}, err
	}
	if view.ID, err = toKernelUUID(id); err != nil {
		return OrderView{}, err
	}
	if view.CustomerID, err = toKernelUUID(customerID); err != nil {
		return OrderView{}, err
	}
	view.PaymentMethod = order.PaymentMethod(method)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			shop_id,
			shop_name,
			owner_id,
			subtotal,
			status,
			assigned_worker_id,
			otp_expires_at,
			delivered_at
		FROM sub_orders
		WHERE order_id = ?
		ORDER BY position
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return OrderView{}, err
	}
	defer rows.Close()

	subOrderIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var so SubOrderView
		var soID, shopID, ownerID uuid.UUID
		var assignedWorker *uuid.UUID
		var status int
		var otpExpiresAt, deliveredAt *time.Time

		err = rows.Scan(
			&soID,
			&shopID,
			&so.ShopName,
			&ownerID,
			&so.Subtotal,
			&status,
			&assignedWorker,
			&otpExpiresAt,
			&deliveredAt,
		)
		if err != nil {
			return OrderView{}, err
		}
		if _, ok := visible[soID]; !ok {
			continue
		}

		if so.ID, err = toKernelUUID(soID); err != nil {
			return OrderView{}, err
		}
		if so.ShopID, err = toKernelUUID(shopID); err != nil {
			return OrderView{}, err
		}
		if so.OwnerID, err = toKernelUUID(ownerID); err != nil {
			return OrderView{}, err
		}
		if so.AssignedWorker, err = toKernelUUIDPtr(assignedWorker); err != nil {
			return OrderView{}, err
		}
		so.Status = order.Status(status)
		so.OtpExpiresAt = otpExpiresAt
		so.DeliveredAt = deliveredAt

		view.SubOrders = append(view.SubOrders, so)
		subOrderIDs = append(subOrderIDs, soID)
	}
	if err = rows.Err(); err != nil {
		return OrderView{}, err
	}

	items, err := loadItems(ctx, h.db, subOrderIDs)
	if err != nil {
		return OrderView{}, err
	}
	for i := range view.SubOrders {
		view.SubOrders[i].Items = items[view.SubOrders[i].ID.Bytes()]
	}

	return view, nil
}
