package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newPayment(orderID string) *models.Payment {
	return &models.Payment{
		OrderID:         orderID,
		UserID:          "user-1",
		Amount:          decimal.RequireFromString("1180.00"),
		Currency:        models.CurrencyINR,
		PaymentMethod:   models.PaymentMethodUPI,
		PaymentProvider: models.PaymentProviderRazorpay,
		Status:          models.PaymentStatusPending,
		GSTRate:         decimal.NewFromInt(18),
		GatewayOrderID:  "order_" + orderID,
	}
}

func newOrder(orderID string) *models.Order {
	return &models.Order{
		OrderID:       orderID,
		UserID:        "user-1",
		Currency:      models.CurrencyINR,
		GSTRate:       decimal.NewFromInt(18),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.OrderPaymentPending,
		Items: []models.OrderItem{
			{Name: "Notebook", Quantity: 2, Price: decimal.NewFromInt(500), LineTotal: decimal.NewFromInt(1000)},
		},
	}
}

func TestCreateAndFind(t *testing.T) {
	db := testutil.NewTestDB(t)
	payments := NewPaymentRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	p := newPayment("ORD-1")
	require.NoError(t, payments.Create(ctx, p, newOrder("ORD-1")))
	assert.NotEmpty(t, p.ID)

	got, err := payments.FindByOrderID(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("1180")))

	got, err = payments.FindByGatewayOrderID(ctx, "order_ORD-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	o, err := orders.FindByOrderID(ctx, "ORD-1")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Notebook", o.Items[0].Name)

	_, err = payments.FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateRejectsDuplicateOrderID(t *testing.T) {
	db := testutil.NewTestDB(t)
	payments := NewPaymentRepository(db)
	ctx := context.Background()

	require.NoError(t, payments.Create(ctx, newPayment("ORD-1"), nil))
	err := payments.Create(ctx, newPayment("ORD-1"), nil)
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)

	var count int64
	db.Model(&models.Payment{}).Where("order_id = ?", "ORD-1").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateRollsBackPaymentWhenOrderExists(t *testing.T) {
	db := testutil.NewTestDB(t)
	payments := NewPaymentRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, orders.Create(ctx, newOrder("ORD-1")))
	err := payments.Create(ctx, newPayment("ORD-1"), newOrder("ORD-1"))
	assert.True(t, errors.Is(err, ErrDuplicateOrder), "got %v", err)

	_, err = payments.FindByOrderID(ctx, "ORD-1")
	assert.True(t, errors.Is(err, ErrNotFound), "payment insert must roll back")
}

func TestTransitionIsConditional(t *testing.T) {
	db := testutil.NewTestDB(t)
	payments := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPayment("ORD-1")
	require.NoError(t, payments.Create(ctx, p, nil))

	open := []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing}
	require.NoError(t, payments.Transition(ctx, p.ID, open, map[string]interface{}{"status": models.PaymentStatusFailed}))

	err := payments.Transition(ctx, p.ID, open, map[string]interface{}{"status": models.PaymentStatusCompleted})
	assert.True(t, errors.Is(err, ErrStaleState))

	got, _ := payments.FindByID(ctx, p.ID)
	assert.Equal(t, models.PaymentStatusFailed, got.Status)
}

func TestCompleteSettlesOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	payments := NewPaymentRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	p := newPayment("ORD-1")
	require.NoError(t, payments.Create(ctx, p, newOrder("ORD-1")))

	settled, err := payments.Complete(ctx, p.ID, p.OrderID, []models.PaymentStatus{models.PaymentStatusPending},
		map[string]interface{}{"gateway_payment_id": "pay_1"})
	require.NoError(t, err)
	assert.True(t, settled)

	o, _ := orders.FindByOrderID(ctx, "ORD-1")
	assert.Equal(t, models.OrderPaymentPaid, o.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, o.Status)

	_, err = payments.Complete(ctx, p.ID, p.OrderID, []models.PaymentStatus{models.PaymentStatusPending}, map[string]interface{}{})
	assert.True(t, errors.Is(err, ErrStaleState))
}

func TestCompleteWithoutOrderIsReconcilable(t *testing.T) {
	db := testutil.NewTestDB(t)
	payments := NewPaymentRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	p := newPayment("ORD-1")
	require.NoError(t, payments.Create(ctx, p, nil))

	settled, err := payments.Complete(ctx, p.ID, p.OrderID, []models.PaymentStatus{models.PaymentStatusPending}, map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, settled)

	rows, err := orders.ListUnsettled(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ORD-1", rows[0].OrderID)
	assert.True(t, rows[0].OrderMissing())

	require.NoError(t, orders.Create(ctx, newOrder("ORD-1")))
	rows, _ = orders.ListUnsettled(ctx)
	require.Len(t, rows, 1)
	assert.Equal(t, models.OrderPaymentPending, rows[0].OrderPaymentStatus)

	changed, err := orders.MarkPaid(ctx, "ORD-1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = orders.MarkPaid(ctx, "ORD-1")
	require.NoError(t, err)
	assert.False(t, changed, "second repair is a no-op")

	rows, _ = orders.ListUnsettled(ctx)
	assert.Empty(t, rows)
}

func TestRefundClaimLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	payments := NewPaymentRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	p := newPayment("ORD-1")
	require.NoError(t, payments.Create(ctx, p, newOrder("ORD-1")))

	assert.True(t, errors.Is(payments.ClaimRefund(ctx, p.ID), ErrStaleState), "pending payments cannot be refunded")

	_, err := payments.Complete(ctx, p.ID, p.OrderID, []models.PaymentStatus{models.PaymentStatusPending}, map[string]interface{}{})
	require.NoError(t, err)

	require.NoError(t, payments.ClaimRefund(ctx, p.ID))
	assert.True(t, errors.Is(payments.ClaimRefund(ctx, p.ID), ErrStaleState), "only one refund in flight")

	require.NoError(t, payments.ReleaseRefund(ctx, p.ID))
	require.NoError(t, payments.ClaimRefund(ctx, p.ID), "failed refunds can be retried")

	amount := decimal.RequireFromString("100.00")
	require.NoError(t, payments.CompleteRefund(ctx, p.ID, p.OrderID, map[string]interface{}{
		"refund_id":     "rfnd_1",
		"refund_amount": &amount,
	}))

	got, _ := payments.FindByID(ctx, p.ID)
	assert.Equal(t, models.PaymentStatusRefunded, got.Status)
	assert.Equal(t, models.RefundStatusProcessed, got.RefundStatus)
	require.NotNil(t, got.RefundAmount)
	assert.True(t, got.RefundAmount.Equal(amount))

	o, _ := orders.FindByOrderID(ctx, "ORD-1")
	assert.Equal(t, models.OrderPaymentRefunded, o.PaymentStatus)
}

func TestListPayments(t *testing.T) {
	db := testutil.NewTestDB(t)
	payments := NewPaymentRepository(db)
	ctx := context.Background()

	for _, id := range []string{"ORD-1", "ORD-2", "ORD-3"} {
		require.NoError(t, payments.Create(ctx, newPayment(id), nil))
	}
	cod := newPayment("ORD-4")
	cod.PaymentMethod = models.PaymentMethodCashOnDelivery
	require.NoError(t, payments.Create(ctx, cod, nil))

	page, total, err := payments.List(ctx, PaymentFilter{PaymentMethod: models.PaymentMethodUPI}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	page, total, err = payments.List(ctx, PaymentFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, page, 4)
}

func TestWebhookEventDedup(t *testing.T) {
	db := testutil.NewTestDB(t)
	events := NewWebhookEventRepository(db)
	ctx := context.Background()

	ev := &models.WebhookEvent{
		Provider:  models.PaymentProviderRazorpay,
		EventID:   "evt_1",
		EventType: "payment.captured",
		Payload:   datatypes.JSON(`{"event":"payment.captured"}`),
		Status:    models.WebhookEventReceived,
	}
	require.NoError(t, events.Insert(ctx, ev))

	dup := *ev
	dup.ID = 0
	assert.True(t, errors.Is(events.Insert(ctx, &dup), ErrDuplicate))

	require.NoError(t, events.Finish(ctx, ev.ID, models.WebhookEventProcessed, nil))
	got, err := events.Find(ctx, models.PaymentProviderRazorpay, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookEventProcessed, got.Status)
	assert.NotNil(t, got.ProcessedAt)

	// a processed event is not overwritten by a slower delivery
	assert.True(t, errors.Is(events.Finish(ctx, ev.ID, models.WebhookEventIgnored, nil), ErrStaleState))
	assert.True(t, errors.Is(events.Finish(ctx, ev.ID, models.WebhookEventFailed, errors.New("late")), ErrStaleState))
	got, err = events.Find(ctx, models.PaymentProviderRazorpay, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookEventProcessed, got.Status)
}

func TestWebhookEventProcessedReplacesIgnored(t *testing.T) {
	db := testutil.NewTestDB(t)
	events := NewWebhookEventRepository(db)
	ctx := context.Background()

	ev := &models.WebhookEvent{
		Provider:  models.PaymentProviderRazorpay,
		EventID:   "evt_3",
		EventType: "payment.captured",
		Payload:   datatypes.JSON(`{"event":"payment.captured"}`),
		Status:    models.WebhookEventReceived,
	}
	require.NoError(t, events.Insert(ctx, ev))

	require.NoError(t, events.Finish(ctx, ev.ID, models.WebhookEventIgnored, nil))
	assert.True(t, errors.Is(events.Finish(ctx, ev.ID, models.WebhookEventIgnored, nil), ErrStaleState))
	require.NoError(t, events.Finish(ctx, ev.ID, models.WebhookEventProcessed, nil))

	got, err := events.Find(ctx, models.PaymentProviderRazorpay, "evt_3")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookEventProcessed, got.Status)
}

func TestWebhookEventFailedCanBeRetried(t *testing.T) {
	db := testutil.NewTestDB(t)
	events := NewWebhookEventRepository(db)
	ctx := context.Background()

	ev := &models.WebhookEvent{
		Provider:  models.PaymentProviderRazorpay,
		EventID:   "evt_2",
		EventType: "payment.captured",
		Payload:   datatypes.JSON(`{"event":"payment.captured"}`),
		Status:    models.WebhookEventReceived,
	}
	require.NoError(t, events.Insert(ctx, ev))
	require.NoError(t, events.Finish(ctx, ev.ID, models.WebhookEventFailed, errors.New("amount mismatch")))

	got, err := events.Find(ctx, models.PaymentProviderRazorpay, "evt_2")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookEventFailed, got.Status)
	assert.Equal(t, "amount mismatch", got.ProcessingError)
	assert.Nil(t, got.ProcessedAt)

	require.NoError(t, events.Finish(ctx, ev.ID, models.WebhookEventProcessed, nil))
	got, err = events.Find(ctx, models.PaymentProviderRazorpay, "evt_2")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookEventProcessed, got.Status)
	assert.Empty(t, got.ProcessingError)
}
