package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/repository"
	"github.com/Govind-619/PaySphere/utils"
)

// RepairResult reports what RepairOrder did; Changed is false when the order was already settled
type RepairResult struct {
	OrderID      string        `json:"order_id"`
	PaymentID    string        `json:"payment_id"`
	OrderCreated bool          `json:"order_created"`
	Changed      bool          `json:"changed"`
	Order        *models.Order `json:"order"`
}

// ListUnsettledOrders returns payments whose outcome has not reached the paired order
func (s *PaymentService) ListUnsettledOrders(ctx context.Context) ([]repository.UnsettledOrder, error) {
	return s.orders.ListUnsettled(ctx)
}

// RepairOrder re-applies the order side of a completed or refunded payment.
// A missing order is rebuilt from the payment's address snapshot. Safe to retry.
func (s *PaymentService) RepairOrder(ctx context.Context, orderID string) (*RepairResult, error) {
	utils.LogInfo("Repairing order %s", orderID)

	payment, err := s.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusCompleted && payment.Status != models.PaymentStatusRefunded {
		return nil, fmt.Errorf("%w: payment is %s, nothing to settle", ErrInvalidState, payment.Status)
	}

	result := &RepairResult{OrderID: orderID, PaymentID: payment.ID}

	if _, err := s.orders.FindByOrderID(ctx, orderID); errors.Is(err, repository.ErrNotFound) {
		order := newOrder(orderSpec{
			OrderID:       payment.OrderID,
			UserID:        payment.UserID,
			Subtotal:      payment.TaxableAmount,
			Shipping:      payment.Delivery,
			Billing:       payment.Billing,
			Rate:          payment.GSTRate,
			GSTNumber:     payment.GSTNumber,
			PaymentMethod: payment.PaymentMethod,
		}, payment.CreatedAt)
		err := s.orders.Create(ctx, order)
		if err != nil && !errors.Is(err, repository.ErrDuplicateOrder) {
			return nil, fmt.Errorf("rebuild order %s: %w", orderID, err)
		}
		result.OrderCreated = err == nil
	} else if err != nil {
		return nil, err
	}

	var changed bool
	if payment.Status == models.PaymentStatusCompleted {
		changed, err = s.orders.MarkPaid(ctx, orderID)
	} else {
		changed, err = s.orders.MarkRefunded(ctx, orderID)
	}
	if err != nil {
		return nil, err
	}
	result.Changed = changed || result.OrderCreated

	result.Order, err = s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Order %s repaired: created=%t changed=%t payment_status=%s",
		orderID, result.OrderCreated, result.Changed, result.Order.PaymentStatus)
	return result, nil
}
