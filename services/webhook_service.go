package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Govind-619/PaySphere/gateway"
	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/repository"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Razorpay webhook event types the reconciler acts on
const (
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventOrderPaid         = "order.paid"
	EventRefundProcessed   = "refund.processed"
	EventRefundFailed      = "refund.failed"
)

// WebhookEnvelope is the part of a Razorpay notification the reconciler reads
type WebhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment,omitempty"`
		Order *struct {
			Entity orderEntity `json:"entity"`
		} `json:"order,omitempty"`
		Refund *struct {
			Entity refundEntity `json:"entity"`
		} `json:"refund,omitempty"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	VPA              string `json:"vpa"`
	ErrorDescription string `json:"error_description"`
	Card             *struct {
		Last4   string `json:"last4"`
		Network string `json:"network"`
		Type    string `json:"type"`
	} `json:"card,omitempty"`
	AcquirerData struct {
		UPITransactionID string `json:"upi_transaction_id"`
	} `json:"acquirer_data"`
}

type orderEntity struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type refundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// WebhookResult describes how a notification was handled
type WebhookResult struct {
	EventID   string                    `json:"event_id"`
	EventType string                    `json:"event_type"`
	Status    models.WebhookEventStatus `json:"status"`
	PaymentID string                    `json:"payment_id,omitempty"`
	Duplicate bool                      `json:"duplicate"`
}

// WebhookService verifies gateway notifications and applies them to payments.
// Only forward transitions are applied, so redelivered or late events are no-ops.
type WebhookService struct {
	secret   string
	insecure bool
	payments *repository.PaymentRepository
	events   *repository.WebhookEventRepository
	notifier Notifier
}

// NewWebhookService verifies with secret; an empty secret is accepted only when insecure is set
func NewWebhookService(secret string, insecure bool, payments *repository.PaymentRepository,
	events *repository.WebhookEventRepository, notifier Notifier) *WebhookService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &WebhookService{
		secret:   secret,
		insecure: insecure,
		payments: payments,
		events:   events,
		notifier: notifier,
	}
}

// HandleRazorpay processes one notification. body must be the raw request bytes.
// eventID may be empty, in which case the body digest identifies the event.
func (s *WebhookService) HandleRazorpay(ctx context.Context, body []byte, signature, eventID string) (*WebhookResult, error) {
	if err := s.authenticate(body, signature); err != nil {
		return nil, err
	}

	var env WebhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		utils.LogError("Malformed webhook payload: %v", err)
		return nil, fmt.Errorf("%w: malformed webhook payload: %v", ErrValidationFailed, err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("%w: webhook has no event type", ErrValidationFailed)
	}
	if eventID == "" {
		sum := sha256.Sum256(body)
		eventID = hex.EncodeToString(sum[:])
	}
	utils.LogInfo("Webhook %s received, event %s", eventID, env.Event)

	result := &WebhookResult{EventID: eventID, EventType: env.Event}

	record := &models.WebhookEvent{
		Provider:       models.PaymentProviderRazorpay,
		EventID:        eventID,
		EventType:      env.Event,
		GatewayOrderID: env.gatewayOrderID(),
		Payload:        datatypes.JSON(body),
		Status:         models.WebhookEventReceived,
	}
	if err := s.events.Insert(ctx, record); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		existing, err := s.events.Find(ctx, models.PaymentProviderRazorpay, eventID)
		if err != nil {
			return nil, err
		}
		if existing.Status == models.WebhookEventProcessed || existing.Status == models.WebhookEventIgnored {
			utils.LogInfo("Webhook %s already handled with status %s", eventID, existing.Status)
			result.Status = existing.Status
			result.Duplicate = true
			return result, nil
		}
		// an earlier delivery failed part way; handle it again
		record = existing
	}

	status, paymentID, err := s.apply(ctx, &env)
	result.PaymentID = paymentID
	if err != nil {
		utils.LogError("Webhook %s (%s) failed: %v", eventID, env.Event, err)
		if finErr := s.events.Finish(ctx, record.ID, models.WebhookEventFailed, err); finErr != nil && !errors.Is(finErr, repository.ErrStaleState) {
			utils.LogError("Failed to record webhook %s outcome: %v", eventID, finErr)
		}
		return nil, err
	}
	if err := s.events.Finish(ctx, record.ID, status, nil); err != nil {
		if !errors.Is(err, repository.ErrStaleState) {
			return nil, err
		}
		// a concurrent delivery of the same event settled it first
		settled, findErr := s.events.Find(ctx, models.PaymentProviderRazorpay, eventID)
		if findErr != nil {
			return nil, findErr
		}
		utils.LogInfo("Webhook %s already handled with status %s", eventID, settled.Status)
		result.Status = settled.Status
		result.Duplicate = true
		return result, nil
	}
	result.Status = status
	utils.LogInfo("Webhook %s (%s) %s for payment %s", eventID, env.Event, status, paymentID)
	return result, nil
}

func (s *WebhookService) authenticate(body []byte, signature string) error {
	if s.secret == "" {
		if !s.insecure {
			return fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
		}
		utils.LogDebug("Webhook accepted without signature check (insecure mode)")
		return nil
	}
	if signature == "" {
		utils.LogError("Webhook rejected: missing signature")
		return fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}
	if !gateway.VerifyHMAC(s.secret, body, signature) {
		utils.LogError("Webhook rejected: signature mismatch")
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}

func (s *WebhookService) apply(ctx context.Context, env *WebhookEnvelope) (models.WebhookEventStatus, string, error) {
	switch env.Event {
	case EventPaymentAuthorized, EventPaymentCaptured, EventPaymentFailed, EventOrderPaid:
		payment, err := s.lookupPayment(ctx, env)
		if err != nil || payment == nil {
			return models.WebhookEventIgnored, "", err
		}
		var status models.WebhookEventStatus
		switch env.Event {
		case EventPaymentAuthorized:
			status, err = s.authorized(ctx, payment, env)
		case EventPaymentCaptured:
			status, err = s.captured(ctx, payment, env)
		case EventPaymentFailed:
			status, err = s.failed(ctx, payment, env)
		default:
			status, err = s.orderPaid(ctx, payment, env)
		}
		return status, payment.ID, err
	case EventRefundProcessed, EventRefundFailed:
		return s.refundOutcome(ctx, env)
	default:
		utils.LogInfo("Unhandled webhook event %s acknowledged", env.Event)
		return models.WebhookEventIgnored, "", nil
	}
}

// lookupPayment returns nil without error when no payment matches
func (s *WebhookService) lookupPayment(ctx context.Context, env *WebhookEnvelope) (*models.Payment, error) {
	if orderID := env.gatewayOrderID(); orderID != "" {
		p, err := s.payments.FindByGatewayOrderID(ctx, orderID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if env.Payload.Payment != nil && env.Payload.Payment.Entity.ID != "" {
		p, err := s.payments.FindByGatewayPaymentID(ctx, env.Payload.Payment.Entity.ID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	utils.LogError("Webhook %s matches no payment (gateway order %s)", env.Event, env.gatewayOrderID())
	return nil, nil
}

func (s *WebhookService) authorized(ctx context.Context, p *models.Payment, env *WebhookEnvelope) (models.WebhookEventStatus, error) {
	if p.Status != models.PaymentStatusPending {
		return models.WebhookEventIgnored, nil
	}
	updates := map[string]interface{}{"status": models.PaymentStatusProcessing}
	if env.Payload.Payment != nil {
		setIfPresent(updates, "gateway_payment_id", env.Payload.Payment.Entity.ID)
	}
	return transitionOutcome(s.payments.Transition(ctx, p.ID, []models.PaymentStatus{models.PaymentStatusPending}, updates))
}

// captured completes the payment and settles its order. A failed payment may still be
// captured because the gateway reports that money was taken.
func (s *WebhookService) captured(ctx context.Context, p *models.Payment, env *WebhookEnvelope) (models.WebhookEventStatus, error) {
	from := []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing, models.PaymentStatusFailed}
	if !containsStatus(from, p.Status) {
		if p.Status == models.PaymentStatusCancelled {
			utils.LogError("Payment %s was cancelled but the gateway captured it; manual refund needed", p.ID)
		}
		return models.WebhookEventIgnored, nil
	}

	updates := map[string]interface{}{}
	if env.Payload.Payment != nil {
		entity := env.Payload.Payment.Entity
		if entity.Amount != 0 && entity.Amount != utils.ToPaise(p.Amount) {
			return models.WebhookEventFailed, fmt.Errorf("%w: captured %d paise, payment %s expects %d",
				ErrValidationFailed, entity.Amount, p.ID, utils.ToPaise(p.Amount))
		}
		instrumentUpdates(updates, entity)
	}
	return s.complete(ctx, p, from, updates)
}

func (s *WebhookService) orderPaid(ctx context.Context, p *models.Payment, env *WebhookEnvelope) (models.WebhookEventStatus, error) {
	if !p.Status.IsOpen() {
		return models.WebhookEventIgnored, nil
	}
	updates := map[string]interface{}{}
	if env.Payload.Payment != nil {
		instrumentUpdates(updates, env.Payload.Payment.Entity)
	}
	return s.complete(ctx, p, openStatuses, updates)
}

func (s *WebhookService) complete(ctx context.Context, p *models.Payment, from []models.PaymentStatus, updates map[string]interface{}) (models.WebhookEventStatus, error) {
	settled, err := s.payments.Complete(ctx, p.ID, p.OrderID, from, updates)
	if errors.Is(err, repository.ErrStaleState) {
		return models.WebhookEventIgnored, nil
	}
	if err != nil {
		return models.WebhookEventFailed, err
	}
	if !settled {
		utils.LogError("Payment %s completed by webhook but order %s not settled; reconciliation required", p.ID, p.OrderID)
	}
	if completed, err := s.payments.FindByID(ctx, p.ID); err == nil {
		s.notifier.PaymentCompleted(completed)
	}
	return models.WebhookEventProcessed, nil
}

// failed only applies to payments that have no outcome yet
func (s *WebhookService) failed(ctx context.Context, p *models.Payment, env *WebhookEnvelope) (models.WebhookEventStatus, error) {
	if !p.Status.IsOpen() {
		utils.LogInfo("Ignoring payment.failed for payment %s in status %s", p.ID, p.Status)
		return models.WebhookEventIgnored, nil
	}
	updates := map[string]interface{}{"status": models.PaymentStatusFailed}
	if env.Payload.Payment != nil {
		setIfPresent(updates, "gateway_payment_id", env.Payload.Payment.Entity.ID)
		if reason := env.Payload.Payment.Entity.ErrorDescription; reason != "" {
			utils.LogInfo("Payment %s failed at gateway: %s", p.ID, reason)
		}
	}
	return transitionOutcome(s.payments.Transition(ctx, p.ID, openStatuses, updates))
}

// refundOutcome settles a refund whose synchronous call timed out
func (s *WebhookService) refundOutcome(ctx context.Context, env *WebhookEnvelope) (models.WebhookEventStatus, string, error) {
	if env.Payload.Refund == nil || env.Payload.Refund.Entity.PaymentID == "" {
		return models.WebhookEventIgnored, "", nil
	}
	refund := env.Payload.Refund.Entity
	p, err := s.payments.FindByGatewayPaymentID(ctx, refund.PaymentID)
	if errors.Is(err, repository.ErrNotFound) {
		utils.LogError("Refund %s matches no payment (gateway payment %s)", refund.ID, refund.PaymentID)
		return models.WebhookEventIgnored, "", nil
	}
	if err != nil {
		return models.WebhookEventFailed, "", err
	}
	if p.Status != models.PaymentStatusCompleted || p.RefundStatus != models.RefundStatusPending {
		return models.WebhookEventIgnored, p.ID, nil
	}

	if env.Event == EventRefundFailed {
		status, err := transitionOutcome(s.payments.ReleaseRefund(ctx, p.ID))
		return status, p.ID, err
	}

	amount := p.Amount
	if refund.Amount > 0 {
		amount = utils.FromPaise(refund.Amount)
	}
	now := time.Now()
	status, err := transitionOutcome(s.payments.CompleteRefund(ctx, p.ID, p.OrderID, map[string]interface{}{
		"refund_id":     refund.ID,
		"refund_amount": &amount,
		"refunded_at":   &now,
	}))
	if status == models.WebhookEventProcessed {
		if refunded, err := s.payments.FindByID(ctx, p.ID); err == nil {
			s.notifier.PaymentRefunded(refunded)
		}
	}
	return status, p.ID, err
}

func (e *WebhookEnvelope) gatewayOrderID() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.OrderID != "" {
		return e.Payload.Payment.Entity.OrderID
	}
	if e.Payload.Order != nil {
		return e.Payload.Order.Entity.ID
	}
	return ""
}

func instrumentUpdates(updates map[string]interface{}, e paymentEntity) {
	setIfPresent(updates, "gateway_payment_id", e.ID)
	setIfPresent(updates, "upi_id", e.VPA)
	setIfPresent(updates, "upi_transaction_id", e.AcquirerData.UPITransactionID)
	if e.Card != nil {
		setIfPresent(updates, "card_last4", e.Card.Last4)
		setIfPresent(updates, "card_brand", e.Card.Network)
		setIfPresent(updates, "card_type", e.Card.Type)
	}
}

// transitionOutcome treats a lost conditional update as an already-applied event
func transitionOutcome(err error) (models.WebhookEventStatus, error) {
	if errors.Is(err, repository.ErrStaleState) {
		return models.WebhookEventIgnored, nil
	}
	if err != nil {
		return models.WebhookEventFailed, err
	}
	return models.WebhookEventProcessed, nil
}

func containsStatus(list []models.PaymentStatus, s models.PaymentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RefundAmount is the refunded amount, or zero when the payment has no refund
func RefundAmount(p *models.Payment) decimal.Decimal {
	if p.RefundAmount == nil {
		return decimal.Zero
	}
	return *p.RefundAmount
}
