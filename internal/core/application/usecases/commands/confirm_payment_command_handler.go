package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

type ConfirmPaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	payments   ports.PaymentGateway
}

func NewConfirmPaymentCommandHandler(
	uowFactory OrderUoWFactory,
	payments ports.PaymentGateway,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		payments:   payments,
	}
}

// Handle records a captured payment. An order that is already captured is returned
// as is without calling the provider again.
func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (order.Payment, error) {
	if err := cmd.Validate(); err != nil {
		return order.Payment{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.Payment{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return order.Payment{}, err
	}
	if !aggregate.Customer().ID().IsEqual(cmd.CustomerID()) {
		return order.Payment{}, errs.NewForbiddenError("order belongs to another customer")
	}
	if aggregate.Payment().Captured {
		return aggregate.Payment(), nil
	}

	status, err := h.payments.Verify(ctx, aggregate.ID().String())
	if err != nil {
		return order.Payment{}, fmt.Errorf("verify payment: %w", err)
	}
	if !status.Captured {
		return order.Payment{}, order.ErrPaymentNotCaptured
	}

	if err = aggregate.ConfirmPayment(status.TransactionID); err != nil {
		return order.Payment{}, err
	}
	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return order.Payment{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.Payment{}, err
	}

	return aggregate.Payment(), nil
}
