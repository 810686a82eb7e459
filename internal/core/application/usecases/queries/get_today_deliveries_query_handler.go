package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"

	"gorm.io/gorm"
)

type GetTodayDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewGetTodayDeliveriesQueryHandler(db *gorm.DB) GetTodayDeliveriesQueryHandler {
	return GetTodayDeliveriesQueryHandler{db: db}
}

func (h GetTodayDeliveriesQueryHandler) Handle(ctx context.Context, query GetTodayDeliveriesQuery) (TodayDeliveries, error) {
	if err := query.Validate(); err != nil {
		return TodayDeliveries{}, err
	}

	start, end := query.Day()

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT delivered_at
		FROM sub_orders
		WHERE assigned_worker_id = ? AND status = ? AND delivered_at >= ? AND delivered_at < ?
	`, query.WorkerID().Bytes(), int(order.Delivered), start.UTC(), end.UTC()).Rows()
	if err != nil {
		return TodayDeliveries{}, err
	}
	defer rows.Close()

	result := TodayDeliveries{Hours: make([]HourCount, 24)}
	for hour := range result.Hours {
		result.Hours[hour].Hour = hour
	}

	for rows.Next() {
		var deliveredAt time.Time
		if err = rows.Scan(&deliveredAt); err != nil {
			return TodayDeliveries{}, err
		}
		hour := deliveredAt.In(start.Location()).Hour()
		result.Hours[hour].Count++
		result.Total++
	}
	if err = rows.Err(); err != nil {
		return TodayDeliveries{}, err
	}

	return result, nil
}
