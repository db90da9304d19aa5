package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Govind-619/PaySphere/config"
	"github.com/Govind-619/PaySphere/gateway"
	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/repository"
	"github.com/Govind-619/PaySphere/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testKeySecret     = "rzp_test_secret"
	testWebhookSecret = "whsec_test"
)

// fakeGateway stands in for Razorpay; nil funcs fall back to a well-behaved default
type fakeGateway struct {
	initiate func(ctx context.Context, req gateway.InitiateRequest) (*gateway.Initiation, error)
	verify   func(ctx context.Context, proof gateway.Proof) (bool, error)
	refund   func(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error)

	initiateCalls atomic.Int32
	refundCalls   atomic.Int32
}

func (f *fakeGateway) Provider() models.PaymentProvider { return models.PaymentProviderRazorpay }

func (f *fakeGateway) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.Initiation, error) {
	f.initiateCalls.Add(1)
	if f.initiate != nil {
		return f.initiate(ctx, req)
	}
	return &gateway.Initiation{
		CorrelationID: "order_" + req.OrderID,
		Metadata:      map[string]interface{}{"razorpay_order_id": "order_" + req.OrderID},
	}, nil
}

func (f *fakeGateway) Verify(ctx context.Context, proof gateway.Proof) (bool, error) {
	if f.verify != nil {
		return f.verify(ctx, proof)
	}
	payload := []byte(proof.GatewayOrderID + "|" + proof.GatewayPaymentID)
	return gateway.VerifyHMAC(testKeySecret, payload, proof.Signature), nil
}

func (f *fakeGateway) Refund(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	n := f.refundCalls.Add(1)
	if f.refund != nil {
		return f.refund(ctx, req)
	}
	return &gateway.RefundResult{RefundID: fmt.Sprintf("rfnd_%d", n), Status: "processed"}, nil
}

// blockUntilDone simulates a gateway that never answers
func blockUntilDone[T any](ctx context.Context) (T, error) {
	<-ctx.Done()
	var zero T
	return zero, ctx.Err()
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	refunded  []string
}

func (n *recordingNotifier) PaymentCompleted(p *models.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, p.ID)
}

func (n *recordingNotifier) PaymentRefunded(p *models.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refunded = append(n.refunded, p.ID)
}

type fixture struct {
	db       *gorm.DB
	cfg      *config.Config
	gw       *fakeGateway
	notifier *recordingNotifier
	payments *repository.PaymentRepository
	orders   *repository.OrderRepository
	svc      *PaymentService
	webhooks *WebhookService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		PrimaryGateway:        config.GatewayRazorpay,
		RazorpayKey:           "rzp_test_key",
		RazorpaySecret:        testKeySecret,
		RazorpayWebhookSecret: testWebhookSecret,
		GatewayTimeout:        time.Second,
		DefaultGSTRate:        decimal.NewFromInt(18),
	}
	gw := &fakeGateway{}
	notifier := &recordingNotifier{}
	payments := repository.NewPaymentRepository(db)
	orders := repository.NewOrderRepository(db)
	registry := gateway.NewRegistry(gw, gateway.CashOnDelivery{})
	return &fixture{
		db:       db,
		cfg:      cfg,
		gw:       gw,
		notifier: notifier,
		payments: payments,
		orders:   orders,
		svc:      NewPaymentService(cfg, registry, payments, orders, notifier),
		webhooks: NewWebhookService(cfg.RazorpayWebhookSecret, false, payments,
			repository.NewWebhookEventRepository(db), notifier),
	}
}

func address(state string) models.Address {
	return models.Address{
		Name:       "Asha Rao",
		Line1:      "12 MG Road",
		City:       "Pune",
		State:      state,
		PostalCode: "411001",
		Phone:      "9876543210",
	}
}

func paymentRequest(orderID string, method models.PaymentMethod, billingState, deliveryState string) CreatePaymentRequest {
	return CreatePaymentRequest{
		OrderID:         orderID,
		UserID:          "user-1",
		Amount:          decimal.RequireFromString("1180.00"),
		PaymentMethod:   method,
		CustomerName:    "asha rao",
		CustomerEmail:   "asha@example.com",
		BillingAddress:  address(billingState),
		DeliveryAddress: address(deliveryState),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) createUPI(t *testing.T, orderID string) *models.Payment {
	t.Helper()
	res, err := f.svc.CreatePayment(context.Background(), paymentRequest(orderID, models.PaymentMethodUPI, "Maharashtra", "Maharashtra"))
	require.NoError(t, err)
	return res.Payment
}

// checkoutProof is what Razorpay checkout hands back for a successful payment
func checkoutProof(p *models.Payment, gatewayPaymentID string) ConfirmPaymentRequest {
	return ConfirmPaymentRequest{
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
		Signature:        gateway.Sign(testKeySecret, []byte(p.GatewayOrderID+"|"+gatewayPaymentID)),
	}
}

func (f *fixture) completedPayment(t *testing.T, orderID string) *models.Payment {
	t.Helper()
	p := f.createUPI(t, orderID)
	p, err := f.svc.ConfirmPayment(context.Background(), p.ID, checkoutProof(p, "pay_"+orderID))
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, id string) *models.Payment {
	t.Helper()
	p, err := f.payments.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (f *fixture) order(t *testing.T, orderID string) *models.Order {
	t.Helper()
	o, err := f.orders.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return o
}
