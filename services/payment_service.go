// Package services holds the payment lifecycle and webhook reconciliation logic.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/PaySphere/config"
	"github.com/Govind-619/PaySphere/gateway"
	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/repository"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/shopspring/decimal"
)

// maxAmount is the largest value a decimal(10,2) column holds
var maxAmount = decimal.RequireFromString("99999999.99")

var openStatuses = []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing}

type CreatePaymentRequest struct {
	OrderID         string               `json:"order_id" binding:"required"`
	UserID          string               `json:"user_id" binding:"required"`
	Amount          decimal.Decimal      `json:"amount" binding:"required"`
	Currency        string               `json:"currency"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" binding:"required"`
	GSTRate         *decimal.Decimal     `json:"gst_rate,omitempty"`
	GSTNumber       string               `json:"gst_number,omitempty"`
	CustomerName    string               `json:"customer_name,omitempty"`
	CustomerEmail   string               `json:"customer_email,omitempty"`
	CustomerPhone   string               `json:"customer_phone,omitempty"`
	Description     string               `json:"description,omitempty"`
	UPIID           string               `json:"upi_id,omitempty"`
	BillingAddress  models.Address       `json:"billing_address"`
	DeliveryAddress models.Address       `json:"delivery_address"`
	// Items describe the paired order when it does not exist yet
	Items []OrderItemInput `json:"items,omitempty"`
}

// CreatePaymentResult carries the stored payment and what the client needs to open checkout
type CreatePaymentResult struct {
	Payment         *models.Payment        `json:"payment"`
	GatewayMetadata map[string]interface{} `json:"gateway_metadata,omitempty"`
}

// ConfirmPaymentRequest is the proof the client got back from the gateway checkout.
// Instrument fields are optional and only recorded on success.
type ConfirmPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
	UPIApp           string `json:"upi_app,omitempty"`
	UPITransactionID string `json:"upi_transaction_id,omitempty"`
	CardLast4        string `json:"card_last4,omitempty"`
	CardBrand        string `json:"card_brand,omitempty"`
	CardType         string `json:"card_type,omitempty"`
}

type RefundPaymentRequest struct {
	// Amount defaults to the full payment amount
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason string           `json:"reason"`
}

// PaymentService drives the payment state machine. All status writes are
// conditional on the status read before the write.
type PaymentService struct {
	cfg      *config.Config
	gateways *gateway.Registry
	payments *repository.PaymentRepository
	orders   *repository.OrderRepository
	notifier Notifier
	now      func() time.Time
}

func NewPaymentService(cfg *config.Config, gateways *gateway.Registry, payments *repository.PaymentRepository,
	orders *repository.OrderRepository, notifier Notifier) *PaymentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PaymentService{
		cfg:      cfg,
		gateways: gateways,
		payments: payments,
		orders:   orders,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreatePayment records a new pending payment for an order. For gateway methods the
// provider-side order is created first; if that fails nothing is persisted.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	utils.LogInfo("Creating payment for order %s, method %s, amount %s", req.OrderID, req.PaymentMethod, req.Amount)

	rate := s.cfg.DefaultGSTRate
	if req.GSTRate != nil {
		rate = *req.GSTRate
	}
	if errs := validateCreatePayment(req, rate); len(errs) > 0 {
		utils.LogError("Payment validation failed for order %s: %v", req.OrderID, errs)
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, errs)
	}

	if _, err := s.payments.FindByOrderID(ctx, req.OrderID); err == nil {
		utils.LogError("Payment already exists for order %s", req.OrderID)
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePayment, req.OrderID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("look up payment for order %s: %w", req.OrderID, err)
	}

	interState := utils.IsInterState(req.BillingAddress.State, req.DeliveryAddress.State)
	existingOrder, err := s.orders.FindByOrderID(ctx, req.OrderID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("look up order %s: %w", req.OrderID, err)
	}
	if existingOrder != nil {
		if err := checkJurisdiction(existingOrder, interState); err != nil {
			return nil, err
		}
	}

	gw, err := s.gateways.ForMethod(req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	provider := gw.Provider()

	amount := req.Amount.Round(2)
	tax := utils.GrossUpGST(amount, rate, interState)
	now := s.now()

	payment := &models.Payment{
		OrderID:         req.OrderID,
		UserID:          req.UserID,
		Amount:          amount,
		Currency:        models.CurrencyINR,
		PaymentMethod:   req.PaymentMethod,
		PaymentProvider: provider,
		Status:          models.PaymentStatusPending,
		UPIID:           req.UPIID,
		GSTNumber:       strings.ToUpper(req.GSTNumber),
		GSTRate:         rate,
		IsInterState:    tax.IsInterState,
		TaxableAmount:   tax.TaxableAmount,
		CGST:            tax.CGST,
		SGST:            tax.SGST,
		IGST:            tax.IGST,
		TotalGST:        tax.TotalGST,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Description:     req.Description,
		Billing:         req.BillingAddress,
		Delivery:        req.DeliveryAddress,
		RetainUntil:     now.AddDate(models.RetentionYears, 0, 0),
	}

	var metadata map[string]interface{}
	if provider != models.PaymentProviderCOD {
		initiation, err := s.initiate(ctx, gw, gateway.InitiateRequest{
			AmountPaise: utils.ToPaise(amount),
			Currency:    models.CurrencyINR,
			OrderID:     req.OrderID,
			Method:      req.PaymentMethod,
			Customer: gateway.Customer{
				UserID: req.UserID,
				Name:   req.CustomerName,
				Email:  req.CustomerEmail,
				Phone:  req.CustomerPhone,
			},
		})
		if err != nil {
			return nil, err
		}
		payment.GatewayOrderID = initiation.CorrelationID
		metadata = initiation.Metadata
		utils.LogInfo("Gateway order %s created for order %s", initiation.CorrelationID, req.OrderID)
	}

	var order *models.Order
	if existingOrder == nil {
		order = newOrder(orderSpec{
			OrderID:       req.OrderID,
			UserID:        req.UserID,
			Items:         req.Items,
			Subtotal:      tax.TaxableAmount,
			Shipping:      req.DeliveryAddress,
			Billing:       req.BillingAddress,
			Rate:          rate,
			GSTNumber:     payment.GSTNumber,
			PaymentMethod: req.PaymentMethod,
		}, now)
	}

	err = s.payments.Create(ctx, payment, order)
	if errors.Is(err, repository.ErrDuplicateOrder) {
		// the order was created concurrently; pair with it instead
		existingOrder, err = s.orders.FindByOrderID(ctx, req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("reload order %s: %w", req.OrderID, err)
		}
		if err := checkJurisdiction(existingOrder, interState); err != nil {
			return nil, err
		}
		payment.ID = ""
		err = s.payments.Create(ctx, payment, nil)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			utils.LogError("Concurrent payment creation rejected for order %s", req.OrderID)
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePayment, req.OrderID)
		}
		utils.LogError("Failed to persist payment for order %s: %v", req.OrderID, err)
		return nil, fmt.Errorf("persist payment: %w", err)
	}

	utils.LogInfo("Payment %s created for order %s with status %s", payment.ID, payment.OrderID, payment.Status)
	return &CreatePaymentResult{Payment: payment, GatewayMetadata: metadata}, nil
}

// ConfirmPayment verifies the gateway proof and completes the payment together with its order.
// A rejected proof fails the payment and leaves the order untouched.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID string, req ConfirmPaymentRequest) (*models.Payment, error) {
	utils.LogInfo("Confirming payment %s", paymentID)

	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.Status.IsOpen() {
		utils.LogError("Cannot confirm payment %s in status %s", paymentID, payment.Status)
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidState, payment.Status)
	}

	gw, err := s.gateways.ForProvider(payment.PaymentProvider)
	if err != nil {
		return nil, fmt.Errorf("gateway for payment %s: %w", paymentID, err)
	}

	var verified bool
	if req.GatewayOrderID != "" && req.GatewayOrderID != payment.GatewayOrderID {
		utils.LogError("Gateway order mismatch for payment %s: got %s, want %s", paymentID, req.GatewayOrderID, payment.GatewayOrderID)
		verified = false
	} else {
		verified, err = s.verify(ctx, gw, gateway.Proof{
			GatewayOrderID:   payment.GatewayOrderID,
			GatewayPaymentID: req.GatewayPaymentID,
			Signature:        req.Signature,
		})
		if err != nil {
			return nil, err
		}
	}

	if !verified {
		err := s.payments.Transition(ctx, payment.ID, openStatuses, map[string]interface{}{
			"status":             models.PaymentStatusFailed,
			"gateway_payment_id": req.GatewayPaymentID,
			"gateway_signature":  req.Signature,
		})
		if errors.Is(err, repository.ErrStaleState) {
			return nil, fmt.Errorf("%w: payment changed during confirmation", ErrInvalidState)
		}
		if err != nil {
			return nil, err
		}
		utils.LogError("Verification failed for payment %s, marked failed", paymentID)
		return nil, fmt.Errorf("%w: payment %s", ErrVerificationFailed, paymentID)
	}

	updates := map[string]interface{}{}
	setIfPresent(updates, "gateway_payment_id", req.GatewayPaymentID)
	setIfPresent(updates, "gateway_signature", req.Signature)
	setIfPresent(updates, "upi_app", req.UPIApp)
	setIfPresent(updates, "upi_transaction_id", req.UPITransactionID)
	setIfPresent(updates, "card_last4", req.CardLast4)
	setIfPresent(updates, "card_brand", req.CardBrand)
	setIfPresent(updates, "card_type", req.CardType)

	settled, err := s.payments.Complete(ctx, payment.ID, payment.OrderID, openStatuses, updates)
	if errors.Is(err, repository.ErrStaleState) {
		utils.LogError("Payment %s changed state during confirmation", paymentID)
		return nil, fmt.Errorf("%w: payment changed during confirmation", ErrInvalidState)
	}
	if err != nil {
		return nil, err
	}
	if !settled {
		utils.LogError("Payment %s completed but order %s was not settled; reconciliation required", paymentID, payment.OrderID)
	}

	payment, err = s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Payment %s completed for order %s", payment.ID, payment.OrderID)
	s.notifier.PaymentCompleted(payment)
	return payment, nil
}

// RefundPayment refunds a completed payment. Only one refund can be in flight;
// a gateway rejection leaves the payment completed and retryable.
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID string, req RefundPaymentRequest) (*models.Payment, error) {
	utils.LogInfo("Refund requested for payment %s", paymentID)

	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusCompleted {
		utils.LogError("Refund rejected for payment %s in status %s", paymentID, payment.Status)
		return nil, fmt.Errorf("%w: only completed payments can be refunded", ErrInvalidState)
	}
	if payment.RefundStatus == models.RefundStatusPending {
		return nil, fmt.Errorf("%w: a refund is already in progress", ErrInvalidState)
	}

	amount := payment.Amount
	if req.Amount != nil {
		amount = req.Amount.Round(2)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be greater than 0", ErrValidationFailed)
	}
	if amount.GreaterThan(payment.Amount) {
		utils.LogError("Refund amount %s exceeds payment amount %s for payment %s", amount, payment.Amount, paymentID)
		return nil, fmt.Errorf("%w: %s > %s", ErrRefundAmountExceeded, amount, payment.Amount)
	}

	gw, err := s.gateways.ForProvider(payment.PaymentProvider)
	if err != nil {
		return nil, fmt.Errorf("gateway for payment %s: %w", paymentID, err)
	}

	if err := s.payments.ClaimRefund(ctx, payment.ID); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, fmt.Errorf("%w: payment changed before refund", ErrInvalidState)
		}
		return nil, err
	}

	result, err := s.refund(ctx, gw, gateway.RefundRequest{
		GatewayPaymentID: payment.GatewayPaymentID,
		AmountPaise:      utils.ToPaise(amount),
		Reason:           req.Reason,
		OrderID:          payment.OrderID,
	})
	if errors.Is(err, ErrGatewayTimeout) {
		// outcome unknown; the refund stays pending until a refund notification settles it
		utils.LogError("Refund for payment %s timed out, left pending", paymentID)
		return nil, err
	}
	if err != nil {
		if relErr := s.payments.ReleaseRefund(ctx, payment.ID); relErr != nil {
			utils.LogError("Failed to release refund claim for payment %s: %v", paymentID, relErr)
		}
		utils.LogError("Gateway refund failed for payment %s: %v", paymentID, err)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	refundedAt := s.now()
	err = s.payments.CompleteRefund(ctx, payment.ID, payment.OrderID, map[string]interface{}{
		"refund_id":     result.RefundID,
		"refund_amount": &amount,
		"refund_reason": req.Reason,
		"refunded_at":   &refundedAt,
	})
	if err != nil {
		utils.LogError("Refund %s issued but not recorded for payment %s: %v", result.RefundID, paymentID, err)
		return nil, fmt.Errorf("record refund %s: %w", result.RefundID, err)
	}

	payment, err = s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Payment %s refunded, refund id %s, amount %s", payment.ID, result.RefundID, amount)
	s.notifier.PaymentRefunded(payment)
	return payment, nil
}

// CancelPayment abandons a payment that has no outcome yet. The paired order is
// cancelled too unless it has already been paid.
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.Status.IsOpen() {
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidState, payment.Status)
	}

	err = s.payments.Transition(ctx, payment.ID, openStatuses, map[string]interface{}{"status": models.PaymentStatusCancelled})
	if errors.Is(err, repository.ErrStaleState) {
		return nil, fmt.Errorf("%w: payment changed during cancellation", ErrInvalidState)
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.orders.MarkCancelled(ctx, payment.OrderID); err != nil {
		utils.LogError("Payment %s cancelled but order %s was not: %v", paymentID, payment.OrderID, err)
	}

	utils.LogInfo("Payment %s cancelled", paymentID)
	return s.find(ctx, paymentID)
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return s.find(ctx, paymentID)
}

func (s *PaymentService) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	p, err := s.payments.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: for order %s", ErrPaymentNotFound, orderID)
	}
	return p, err
}

func (s *PaymentService) ListPayments(ctx context.Context, filter repository.PaymentFilter, offset, limit int) ([]models.Payment, int64, error) {
	return s.payments.List(ctx, filter, offset, limit)
}

func (s *PaymentService) find(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := s.payments.FindByID(ctx, paymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}
	return p, err
}

func (s *PaymentService) initiate(ctx context.Context, gw gateway.Gateway, req gateway.InitiateRequest) (*gateway.Initiation, error) {
	res, err := withTimeout(ctx, s.cfg.GatewayTimeout, func(ctx context.Context) (*gateway.Initiation, error) {
		return gw.Initiate(ctx, req)
	})
	if errors.Is(err, ErrGatewayTimeout) {
		utils.LogError("Gateway initiation timed out for order %s", req.OrderID)
		return nil, err
	}
	if err != nil {
		utils.LogError("Gateway initiation failed for order %s: %v", req.OrderID, err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayInitiationFailed, err)
	}
	return res, nil
}

func (s *PaymentService) verify(ctx context.Context, gw gateway.Gateway, proof gateway.Proof) (bool, error) {
	ok, err := withTimeout(ctx, s.cfg.GatewayTimeout, func(ctx context.Context) (bool, error) {
		return gw.Verify(ctx, proof)
	})
	if err != nil && !errors.Is(err, ErrGatewayTimeout) {
		return false, fmt.Errorf("verify payment proof: %w", err)
	}
	return ok, err
}

func (s *PaymentService) refund(ctx context.Context, gw gateway.Gateway, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	return withTimeout(ctx, s.cfg.GatewayTimeout, func(ctx context.Context) (*gateway.RefundResult, error) {
		return gw.Refund(ctx, req)
	})
}

// withTimeout bounds a gateway call. The call keeps its own goroutine if it ignores ctx,
// but the caller is released when the deadline passes.
func withTimeout[T any](ctx context.Context, d time.Duration, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return r.val, fmt.Errorf("%w: %v", ErrGatewayTimeout, r.err)
		}
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrGatewayTimeout, ctx.Err())
	}
}

func checkJurisdiction(order *models.Order, interState bool) error {
	if order.IsInterState != interState {
		utils.LogError("Jurisdiction mismatch for order %s: order inter-state=%t, payment inter-state=%t",
			order.OrderID, order.IsInterState, interState)
		return fmt.Errorf("%w: addresses disagree with order %s on inter-state supply", ErrValidationFailed, order.OrderID)
	}
	return nil
}

func setIfPresent(updates map[string]interface{}, column, value string) {
	if value != "" {
		updates[column] = value
	}
}

func validateCreatePayment(req CreatePaymentRequest, rate decimal.Decimal) utils.FieldValidationErrors {
	var errs utils.FieldValidationErrors
	add := func(field, msg string) {
		errs = append(errs, utils.FieldValidationError{Field: field, Message: msg})
	}

	if strings.TrimSpace(req.OrderID) == "" {
		add("order_id", "Order ID is required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		add("user_id", "User ID is required")
	}
	if !req.PaymentMethod.Valid() {
		add("payment_method", "Payment method must be one of upi, card, netbanking, wallet, cash_on_delivery")
	}
	if !req.Amount.IsPositive() {
		add("amount", "Amount must be greater than 0")
	} else if req.Amount.GreaterThan(maxAmount) {
		add("amount", "Amount exceeds the maximum supported value")
	} else if !req.Amount.Equal(req.Amount.Round(2)) {
		add("amount", "Amount must not have more than 2 decimal places")
	}
	if req.Currency != "" && !strings.EqualFold(req.Currency, models.CurrencyINR) {
		add("currency", "Only INR is supported")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		add("gst_rate", "GST rate must be between 0 and 100")
	}
	if ok, msg := utils.ValidateGSTIN(req.GSTNumber); !ok {
		add("gst_number", msg)
	}
	if req.CustomerEmail != "" {
		if ok, msg := utils.ValidateEmail(req.CustomerEmail); !ok {
			add("customer_email", msg)
		}
	}
	if ok, msg := utils.ValidatePhone(req.CustomerPhone); !ok {
		add("customer_phone", msg)
	}
	if ok, msg := utils.ValidateUPIID(req.UPIID); !ok {
		add("upi_id", msg)
	}
	errs = append(errs, utils.ValidateAddress("billing_address", req.BillingAddress)...)
	errs = append(errs, utils.ValidateAddress("delivery_address", req.DeliveryAddress)...)
	errs = append(errs, validateItems(req.Items)...)
	return errs
}
