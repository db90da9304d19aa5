package repository

import (
	"context"
	"fmt"

	"github.com/Govind-619/PaySphere/models"
	"gorm.io/gorm"
)

// UnsettledOrder is a payment whose paired order does not yet reflect its outcome
type UnsettledOrder struct {
	OrderID            string                    `json:"order_id"`
	PaymentID          string                    `json:"payment_id"`
	PaymentStatus      models.PaymentStatus      `json:"payment_status"`
	OrderPaymentStatus models.OrderPaymentStatus `json:"order_payment_status"`
}

// OrderMissing reports whether no order row exists for the payment
func (u UnsettledOrder) OrderMissing() bool {
	return u.OrderPaymentStatus == ""
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order and its items
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.OrderID)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Preload("Items").Where("order_id = ?", orderID).First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// MarkPaid settles the order for a completed payment; false means nothing changed
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	return markOrderPaid(r.db.WithContext(ctx), orderID)
}

// MarkRefunded records a refunded payment on the order; false means nothing changed
func (r *OrderRepository) MarkRefunded(ctx context.Context, orderID string) (bool, error) {
	return markOrderRefunded(r.db.WithContext(ctx), orderID)
}

// MarkCancelled cancels an order whose payment was abandoned before it was paid
func (r *OrderRepository) MarkCancelled(ctx context.Context, orderID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ? AND payment_status <> ? AND status IN ?", orderID, models.OrderPaymentPaid,
			[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusConfirmed}).
		Updates(map[string]interface{}{"status": models.OrderStatusCancelled})
	if res.Error != nil {
		return false, fmt.Errorf("cancel order %s: %w", orderID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListUnsettled returns completed or refunded payments whose order is missing or behind
func (r *OrderRepository) ListUnsettled(ctx context.Context) ([]UnsettledOrder, error) {
	var rows []UnsettledOrder
	err := r.db.WithContext(ctx).Table("payments AS p").
		Select("p.order_id, p.id AS payment_id, p.status AS payment_status, COALESCE(o.payment_status, '') AS order_payment_status").
		Joins("LEFT JOIN orders AS o ON o.order_id = p.order_id").
		Where("(p.status = ? AND (o.id IS NULL OR o.payment_status <> ?)) OR (p.status = ? AND (o.id IS NULL OR o.payment_status <> ?))",
			models.PaymentStatusCompleted, models.OrderPaymentPaid,
			models.PaymentStatusRefunded, models.OrderPaymentRefunded).
		Order("p.updated_at").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list unsettled orders: %w", err)
	}
	return rows, nil
}

// markOrderPaid never touches an order that is already paid or refunded,
// and only confirms orders that are still pending.
func markOrderPaid(db *gorm.DB, orderID string) (bool, error) {
	res := db.Model(&models.Order{}).
		Where("order_id = ? AND payment_status IN ?", orderID,
			[]models.OrderPaymentStatus{models.OrderPaymentPending, models.OrderPaymentFailed}).
		Updates(map[string]interface{}{
			"payment_status": models.OrderPaymentPaid,
			"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
				models.OrderStatusPending, models.OrderStatusConfirmed),
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark order %s paid: %w", orderID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func markOrderRefunded(db *gorm.DB, orderID string) (bool, error) {
	res := db.Model(&models.Order{}).
		Where("order_id = ? AND payment_status <> ?", orderID, models.OrderPaymentRefunded).
		Updates(map[string]interface{}{"payment_status": models.OrderPaymentRefunded})
	if res.Error != nil {
		return false, fmt.Errorf("mark order %s refunded: %w", orderID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
