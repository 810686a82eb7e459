package orderrepo

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

func fromDomain(aggregate *order.Order) OrderDTO {
	address := aggregate.DeliveryAddress()
	payment := aggregate.Payment()

	dto := OrderDTO{
		ID:            aggregate.ID().Bytes(),
		CustomerID:    aggregate.Customer().ID().Bytes(),
		CustomerEmail: aggregate.Customer().Email(),
		PaymentMethod: int(aggregate.PaymentMethod()),
		AddressText:   address.Text(),
		Address: LocationDTO{
			Latitude:  address.Location().Latitude(),
			Longitude: address.Location().Longitude(),
		},
		TotalAmount:          aggregate.TotalAmount(),
		PaymentCaptured:      payment.Captured,
		PaymentTransactionID: payment.TransactionID,
		RefundRequested:      payment.RefundRequested,
		RefundRef:            payment.RefundRef,
		CreatedAt:            aggregate.CreatedAt(),
	}

	for position, so := range aggregate.SubOrders() {
		dto.SubOrders = append(dto.SubOrders, subOrderFromDomain(dto.ID, position, so))
	}

	return dto
}

func subOrderFromDomain(orderID uuid.UUID, position int, so *order.SubOrder) SubOrderDTO {
	dto := SubOrderDTO{
		ID:               so.ID().Bytes(),
		OrderID:          orderID,
		Position:         position,
		ShopID:           so.Shop().ID().Bytes(),
		ShopName:         so.Shop().Name(),
		OwnerID:          so.OwnerID().Bytes(),
		Subtotal:         so.Subtotal(),
		Status:           int(so.Status()),
		AssignedWorkerID: toUUIDPtr(so.AssignedWorker()),
		AssignmentID:     toUUIDPtr(so.AssignmentRef()),
		DeliveryOtp:      so.DeliveryOtp(),
		OtpExpiresAt:     so.OtpExpiresAt(),
		DeliveredAt:      so.DeliveredAt(),
	}

	for i, item := range so.Items() {
		dto.Items = append(dto.Items, ItemDTO{
			SubOrderID: dto.ID,
			Position:   i,
			ItemRef:    item.ItemRef().Bytes(),
			Name:       item.Name(),
			Price:      item.Price(),
			Quantity:   item.Quantity(),
		})
	}

	return dto
}

// paymentColumns are the order columns Update is allowed to write.
func paymentColumns(payment order.Payment) map[string]any {
	return map[string]any{
		"payment_captured":       payment.Captured,
		"payment_transaction_id": payment.TransactionID,
		"refund_requested":       payment.RefundRequested,
		"refund_ref":             payment.RefundRef,
	}
}

// handoffColumns are the sub-order columns Update is allowed to write.
func handoffColumns(so *order.SubOrder) map[string]any {
	return map[string]any{
		"status":             int(so.Status()),
		"assigned_worker_id": nullableUUID(so.AssignedWorker()),
		"assignment_id":      nullableUUID(so.AssignmentRef()),
		"delivery_otp":       so.DeliveryOtp(),
		"otp_expires_at":     nullableTime(so.OtpExpiresAt()),
		"delivered_at":       nullableTime(so.DeliveredAt()),
	}
}

func statusChangesFromDomain(orderID uuid.UUID, so *order.SubOrder) []StatusChangeDTO {
	pending := so.PendingStatusChanges()
	out := make([]StatusChangeDTO, 0, len(pending))
	for _, c := range pending {
		out = append(out, StatusChangeDTO{
			OrderID:    orderID,
			SubOrderID: so.ID().Bytes(),
			Status:     int(c.Status),
			ActorID:    c.ActorID.Bytes(),
			ActorRole:  int(c.ActorRole),
			ChangedAt:  c.At,
		})
	}
	return out
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	customer, err := order.NewCustomer(customerID, dto.CustomerEmail)
	if err != nil {
		return nil, err
	}
	location, err := kernel.NewLocation(dto.Address.Latitude, dto.Address.Longitude)
	if err != nil {
		return nil, err
	}
	address, err := order.NewDeliveryAddress(dto.AddressText, location)
	if err != nil {
		return nil, err
	}

	subOrders := make([]*order.SubOrder, 0, len(dto.SubOrders))
	for _, soDTO := range dto.SubOrders {
		so, soErr := subOrderToDomain(soDTO)
		if soErr != nil {
			return nil, soErr
		}
		subOrders = append(subOrders, so)
	}

	return order.RestoreOrder(
		id,
		customer,
		order.PaymentMethod(dto.PaymentMethod),
		address,
		order.Payment{
			Captured:        dto.PaymentCaptured,
			TransactionID:   dto.PaymentTransactionID,
			RefundRequested: dto.RefundRequested,
			RefundRef:       dto.RefundRef,
		},
		subOrders,
		dto.CreatedAt,
	)
}

func subOrderToDomain(dto SubOrderDTO) (*order.SubOrder, error) {
	id, idErr := kernel.UUIDFromBytes(dto.ID[:])
	shopID, shopErr := kernel.UUIDFromBytes(dto.ShopID[:])
	ownerID, ownerErr := kernel.UUIDFromBytes(dto.OwnerID[:])
	if err := errors.Join(idErr, shopErr, ownerErr); err != nil {
		return nil, err
	}

	shop, err := order.NewShop(shopID, dto.ShopName)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		ref, refErr := kernel.UUIDFromBytes(itemDTO.ItemRef[:])
		if refErr != nil {
			return nil, refErr
		}
		item, itemErr := order.NewItem(ref, itemDTO.Name, itemDTO.Price, itemDTO.Quantity)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	assignedWorker, err := fromUUIDPtr(dto.AssignedWorkerID)
	if err != nil {
		return nil, err
	}
	assignmentRef, err := fromUUIDPtr(dto.AssignmentID)
	if err != nil {
		return nil, err
	}

	return order.RestoreSubOrder(
		id,
		shop,
		ownerID,
		items,
		dto.Subtotal,
		order.Status(dto.Status),
		order.Handoff{
			AssignedWorker: assignedWorker,
			AssignmentRef:  assignmentRef,
			DeliveryOtp:    dto.DeliveryOtp,
			OtpExpiresAt:   utcPtr(dto.OtpExpiresAt),
			DeliveredAt:    utcPtr(dto.DeliveredAt),
		},
	)
}

func toUUIDPtr(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func fromUUIDPtr(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func nullableUUID(id *kernel.UUID) any {
	if id == nil {
		return nil
	}
	return id.Bytes()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
