package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetStatusHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetStatusHistoryQueryHandler(db *gorm.DB) GetStatusHistoryQueryHandler {
	return GetStatusHistoryQueryHandler{db: db}
}

func (h GetStatusHistoryQueryHandler) Handle(ctx context.Context, query GetStatusHistoryQuery) ([]StatusChangeView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	visible, err := visibleSubOrders(ctx, h.db, query.OrderID(), query.Viewer())
	if err != nil {
		return nil, err
	}
	if _, ok := visible[query.SubOrderID().Bytes()]; !ok {
		return nil, errs.NewObjectNotFoundError("sub-order", query.SubOrderID().String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT status, changed_at, actor_id, actor_role
		FROM sub_order_status_changes
		WHERE order_id = ? AND sub_order_id = ?
		ORDER BY changed_at, id
	`, query.OrderID().Bytes(), query.SubOrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]StatusChangeView, 0)
	for rows.Next() {
		var change StatusChangeView
		var status, role int
		var actorID uuid.UUID

		if err = rows.Scan(&status, &change.ChangedAt, &actorID, &role); err != nil {
			return nil, err
		}
		if change.ActorID, err = toKernelUUID(actorID); err != nil {
			return nil, err
		}
		change.Status = order.Status(status)
		change.ActorRole = kernel.Role(role)
		history = append(history, change)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
