package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// Push event names.
const (
	EventUpdateStatus       = "update-status"
	EventNewAssignment      = "new-assignment"
	EventAssignmentAccepted = "assignment-accepted"
	EventDeliveryLocation   = "delivery-location"
	EventNewOrder           = "new-order"
	EventBroadcastExpired   = "broadcast-expired"
)

// UserChannel is the push channel of a customer or delivery worker.
func UserChannel(id kernel.UUID) string {
	return "user." + id.String()
}

// ShopChannel is the push channel of a shop's owner dashboard.
func ShopChannel(id kernel.UUID) string {
	return "shop." + id.String()
}

type StatusUpdatedPayload struct {
	OrderID    string    `json:"orderId"`
	SubOrderID string    `json:"subOrderId"`
	ShopID     string    `json:"shopId"`
	Status     string    `json:"status"`
	ChangedAt  time.Time `json:"changedAt"`
}

type JobItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// JobSummary is what a candidate worker sees in a new-assignment event.
type JobSummary struct {
	AssignmentID    string    `json:"assignmentId"`
	OrderID         string    `json:"orderId"`
	SubOrderID      string    `json:"subOrderId"`
	ShopID          string    `json:"shopId"`
	ShopName        string    `json:"shopName"`
	Items           []JobItem `json:"items"`
	Subtotal        string    `json:"subtotal"`
	DeliveryAddress string    `json:"deliveryAddress"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
}

type AssignmentAcceptedPayload struct {
	AssignmentID string    `json:"assignmentId"`
	OrderID      string    `json:"orderId"`
	SubOrderID   string    `json:"subOrderId"`
	WorkerID     string    `json:"workerId"`
	AcceptedAt   time.Time `json:"acceptedAt"`
}

type DeliveryLocationPayload struct {
	OrderID    string    `json:"orderId"`
	SubOrderID string    `json:"subOrderId"`
	WorkerID   string    `json:"workerId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	At         time.Time `json:"at"`
}

type NewOrderPayload struct {
	OrderID    string `json:"orderId"`
	SubOrderID string `json:"subOrderId"`
	Subtotal   string `json:"subtotal"`
	Items      int    `json:"items"`
}

type BroadcastExpiredPayload struct {
	AssignmentID string `json:"assignmentId"`
	OrderID      string `json:"orderId"`
	SubOrderID   string `json:"subOrderId"`
}

func newStatusUpdatedPayload(o *order.Order, so *order.SubOrder, at time.Time) StatusUpdatedPayload {
	return StatusUpdatedPayload{
		OrderID:    o.ID().String(),
		SubOrderID: so.ID().String(),
		ShopID:     so.Shop().ID().String(),
		Status:     so.Status().String(),
		ChangedAt:  at,
	}
}

func newJobSummary(assignmentID kernel.UUID, o *order.Order, so *order.SubOrder) JobSummary {
	items := make([]JobItem, 0, len(so.Items()))
	for _, item := range so.Items() {
		items = append(items, JobItem{
			Name:     item.Name(),
			Quantity: item.Quantity(),
			Price:    item.Price().StringFixed(2),
		})
	}

	address := o.DeliveryAddress()
	return JobSummary{
		AssignmentID:    assignmentID.String(),
		OrderID:         o.ID().String(),
		SubOrderID:      so.ID().String(),
		ShopID:          so.Shop().ID().String(),
		ShopName:        so.Shop().Name(),
		Items:           items,
		Subtotal:        so.Subtotal().StringFixed(2),
		DeliveryAddress: address.Text(),
		Latitude:        address.Location().Latitude(),
		Longitude:       address.Location().Longitude(),
	}
}

func newStatusChangedEvent(o *order.Order, so *order.SubOrder, actor kernel.Role, at time.Time) ports.SubOrderStatusChanged {
	return ports.SubOrderStatusChanged{
		OrderID:    o.ID().String(),
		SubOrderID: so.ID().String(),
		ShopID:     so.Shop().ID().String(),
		Status:     so.Status().String(),
		ActorRole:  actor.String(),
		ChangedAt:  at,
	}
}

// pusher sends best-effort notifications. A failed publish is logged and counted,
// never returned: the state change it reports has already been committed.
type pusher struct {
	notifier ports.Notifier
	metrics  *metrics.BrokerMetrics
	logger   zerolog.Logger
}

func (p pusher) push(ctx context.Context, channel, event string, payload any) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Publish(ctx, channel, event, payload); err != nil {
		p.metrics.NotifyFailed(event)
		p.logger.Warn().Err(err).Str("channel", channel).Str("event", event).Msg("push notification failed")
	}
}

// orderEvents writes integration events after commit, with the same best-effort policy.
type orderEvents struct {
	publisher ports.OrderEventPublisher
	logger    zerolog.Logger
}

func (e orderEvents) statusChanged(ctx context.Context, event ports.SubOrderStatusChanged) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishStatusChanged(ctx, event); err != nil {
		e.logger.Warn().Err(err).
			Str("order_id", event.OrderID).
			Str("sub_order_id", event.SubOrderID).
			Msg("status change event not published")
	}
}
