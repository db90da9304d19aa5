package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/PaySphere/models"
	"gorm.io/gorm"
)

// PaymentFilter narrows ListPayments; empty fields are ignored
type PaymentFilter struct {
	Status        models.PaymentStatus
	PaymentMethod models.PaymentMethod
	UserID        string
	OrderID       string
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts the payment and, when order is not nil, its paired order in one transaction.
// The unique order_id index turns a concurrent duplicate into ErrDuplicate.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: payment for order %s", ErrDuplicate, payment.OrderID)
			}
			return fmt.Errorf("insert payment: %w", err)
		}
		if order == nil {
			return nil
		}
		if err := tx.Create(order).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.OrderID)
			}
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return r.findOne(ctx, "order_id = ?", orderID)
}

func (r *PaymentRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	return r.findOne(ctx, "gateway_order_id = ?", gatewayOrderID)
}

func (r *PaymentRepository) FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	return r.findOne(ctx, "gateway_payment_id = ?", gatewayPaymentID)
}

func (r *PaymentRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where(query, arg).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// List returns one page of payments, newest first, with the total match count
func (r *PaymentRepository) List(ctx context.Context, f PaymentFilter, offset, limit int) ([]models.Payment, int64, error) {
	filter := func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.PaymentMethod != "" {
			q = q.Where("payment_method = ?", f.PaymentMethod)
		}
		if f.UserID != "" {
			q = q.Where("user_id = ?", f.UserID)
		}
		if f.OrderID != "" {
			q = q.Where("order_id = ?", f.OrderID)
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	var payments []models.Payment
	err := r.db.WithContext(ctx).Scopes(filter).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return payments, total, nil
}

// ListSettled returns completed and refunded payments created in [from, to), oldest first
func (r *PaymentRepository) ListSettled(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at >= ? AND created_at < ?",
			[]models.PaymentStatus{models.PaymentStatusCompleted, models.PaymentStatusRefunded}, from, to).
		Order("created_at").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list settled payments: %w", err)
	}
	return payments, nil
}

// Transition applies updates only if the payment is still in one of the from states
func (r *PaymentRepository) Transition(ctx context.Context, id string, from []models.PaymentStatus, updates map[string]interface{}) error {
	return transition(r.db.WithContext(ctx), id, from, updates)
}

// Complete moves the payment to completed and settles its order in the same transaction.
// orderSettled is false when the order row is missing or already paid; the payment commit stands
// either way and reconciliation picks up the missing order.
func (r *PaymentRepository) Complete(ctx context.Context, id, orderID string, from []models.PaymentStatus, updates map[string]interface{}) (orderSettled bool, err error) {
	updates["status"] = models.PaymentStatusCompleted
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, id, from, updates); err != nil {
			return err
		}
		settled, err := markOrderPaid(tx, orderID)
		if err != nil {
			return err
		}
		orderSettled = settled
		return nil
	})
	return orderSettled, err
}

// ClaimRefund marks a refund in flight so only one caller reaches the gateway
func (r *PaymentRepository) ClaimRefund(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ? AND (refund_status IS NULL OR refund_status IN ?)",
			id, models.PaymentStatusCompleted, []models.RefundStatus{models.RefundStatusNone, models.RefundStatusFailed}).
		Updates(map[string]interface{}{"refund_status": models.RefundStatusPending})
	if res.Error != nil {
		return fmt.Errorf("claim refund: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// ReleaseRefund records a refund attempt the gateway rejected; status stays completed
func (r *PaymentRepository) ReleaseRefund(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ? AND refund_status = ?", id, models.PaymentStatusCompleted, models.RefundStatusPending).
		Updates(map[string]interface{}{"refund_status": models.RefundStatusFailed})
	if res.Error != nil {
		return fmt.Errorf("release refund: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// CompleteRefund moves a payment with a refund in flight to refunded and marks its order refunded
func (r *PaymentRepository) CompleteRefund(ctx context.Context, id, orderID string, updates map[string]interface{}) error {
	updates["status"] = models.PaymentStatusRefunded
	updates["refund_status"] = models.RefundStatusProcessed
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ? AND refund_status = ?", id, models.PaymentStatusCompleted, models.RefundStatusPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("complete refund: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}
		_, err := markOrderRefunded(tx, orderID)
		return err
	})
}

func transition(db *gorm.DB, id string, from []models.PaymentStatus, updates map[string]interface{}) error {
	res := db.Model(&models.Payment{}).Where("id = ? AND status IN ?", id, from).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update payment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
