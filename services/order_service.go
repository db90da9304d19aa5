package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/repository"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/shopspring/decimal"
)

type OrderItemInput struct {
	SKU      string          `json:"sku,omitempty"`
	Name     string          `json:"name" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

type CreateOrderRequest struct {
	OrderID         string               `json:"order_id" binding:"required"`
	UserID          string               `json:"user_id" binding:"required"`
	Items           []OrderItemInput     `json:"items" binding:"required"`
	GSTRate         *decimal.Decimal     `json:"gst_rate,omitempty"`
	GSTNumber       string               `json:"gst_number,omitempty"`
	PaymentMethod   models.PaymentMethod `json:"payment_method,omitempty"`
	ShippingAddress models.Address       `json:"shipping_address"`
	BillingAddress  models.Address       `json:"billing_address"`
}

// orderSpec is everything newOrder needs; Subtotal is used only when there are no items
type orderSpec struct {
	OrderID       string
	UserID        string
	Items         []OrderItemInput
	Subtotal      decimal.Decimal
	Shipping      models.Address
	Billing       models.Address
	Rate          decimal.Decimal
	GSTNumber     string
	PaymentMethod models.PaymentMethod
}

// newOrder builds an order record with add-on GST over its item subtotal
func newOrder(spec orderSpec, now time.Time) *models.Order {
	subtotal := spec.Subtotal
	var items []models.OrderItem
	if len(spec.Items) > 0 {
		subtotal = decimal.Zero
		for _, in := range spec.Items {
			price := in.Price.Round(2)
			line := price.Mul(decimal.NewFromInt(int64(in.Quantity)))
			subtotal = subtotal.Add(line)
			items = append(items, models.OrderItem{
				OrderID:   spec.OrderID,
				SKU:       in.SKU,
				Name:      in.Name,
				Quantity:  in.Quantity,
				Price:     price,
				LineTotal: line,
			})
		}
	}

	tax := utils.AddOnGST(subtotal, spec.Rate, utils.IsInterState(spec.Billing.State, spec.Shipping.State))
	return &models.Order{
		OrderID:       spec.OrderID,
		UserID:        spec.UserID,
		Items:         items,
		Currency:      models.CurrencyINR,
		Subtotal:      tax.TaxableAmount,
		GSTAmount:     tax.TotalGST,
		TotalAmount:   tax.GrossAmount,
		GSTRate:       spec.Rate,
		GSTNumber:     spec.GSTNumber,
		IsInterState:  tax.IsInterState,
		CGST:          tax.CGST,
		SGST:          tax.SGST,
		IGST:          tax.IGST,
		TotalGST:      tax.TotalGST,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.OrderPaymentPending,
		PaymentMethod: spec.PaymentMethod,
		Shipping:      spec.Shipping,
		Billing:       spec.Billing,
		RetainUntil:   now.AddDate(models.RetentionYears, 0, 0),
	}
}

// CreateOrder stores an order ahead of its payment
func (s *PaymentService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	utils.LogInfo("Creating order %s with %d items", req.OrderID, len(req.Items))

	rate := s.cfg.DefaultGSTRate
	if req.GSTRate != nil {
		rate = *req.GSTRate
	}

	var errs utils.FieldValidationErrors
	if strings.TrimSpace(req.OrderID) == "" {
		errs = append(errs, utils.FieldValidationError{Field: "order_id", Message: "Order ID is required"})
	}
	if strings.TrimSpace(req.UserID) == "" {
		errs = append(errs, utils.FieldValidationError{Field: "user_id", Message: "User ID is required"})
	}
	if len(req.Items) == 0 {
		errs = append(errs, utils.FieldValidationError{Field: "items", Message: "At least one item is required"})
	}
	if req.PaymentMethod != "" && !req.PaymentMethod.Valid() {
		errs = append(errs, utils.FieldValidationError{Field: "payment_method", Message: "Unsupported payment method"})
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, utils.FieldValidationError{Field: "gst_rate", Message: "GST rate must be between 0 and 100"})
	}
	if ok, msg := utils.ValidateGSTIN(req.GSTNumber); !ok {
		errs = append(errs, utils.FieldValidationError{Field: "gst_number", Message: msg})
	}
	errs = append(errs, utils.ValidateAddress("shipping_address", req.ShippingAddress)...)
	errs = append(errs, utils.ValidateAddress("billing_address", req.BillingAddress)...)
	errs = append(errs, validateItems(req.Items)...)
	if len(errs) > 0 {
		utils.LogError("Order validation failed for %s: %v", req.OrderID, errs)
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, errs)
	}

	order := newOrder(orderSpec{
		OrderID:       req.OrderID,
		UserID:        req.UserID,
		Items:         req.Items,
		Shipping:      req.ShippingAddress,
		Billing:       req.BillingAddress,
		Rate:          rate,
		GSTNumber:     strings.ToUpper(req.GSTNumber),
		PaymentMethod: req.PaymentMethod,
	}, s.now())

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOrder, req.OrderID)
		}
		return nil, err
	}
	utils.LogInfo("Order %s created, subtotal %s, GST %s, total %s", order.OrderID, order.Subtotal, order.GSTAmount, order.TotalAmount)
	return order, nil
}

func (s *PaymentService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := s.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return o, err
}

func validateItems(items []OrderItemInput) utils.FieldValidationErrors {
	var errs utils.FieldValidationErrors
	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.Name) == "" {
			errs = append(errs, utils.FieldValidationError{Field: field + ".name", Message: "Item name is required"})
		}
		if it.Quantity < 1 {
			errs = append(errs, utils.FieldValidationError{Field: field + ".quantity", Message: "Quantity must be at least 1"})
		}
		if it.Price.IsNegative() {
			errs = append(errs, utils.FieldValidationError{Field: field + ".price", Message: "Price cannot be negative"})
		}
	}
	return errs
}
