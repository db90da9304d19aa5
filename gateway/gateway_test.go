package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/Govind-619/PaySphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	data map[string]interface{}
	resp map[string]interface{}
	err  error
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.data = data
	return f.resp, f.err
}

type fakePayments struct {
	paymentID string
	amount    int
	resp      map[string]interface{}
	err       error
}

func (f *fakePayments) Refund(paymentID string, amount int, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.paymentID = paymentID
	f.amount = amount
	return f.resp, f.err
}

func newTestRazorpay(o *fakeOrders, p *fakePayments) *Razorpay {
	return &Razorpay{key: "rzp_test_key", secret: "topsecret", orders: o, payments: p}
}

func TestRegistryRoutesMethods(t *testing.T) {
	reg := NewRegistry(newTestRazorpay(&fakeOrders{}, &fakePayments{}), CashOnDelivery{})

	for _, m := range []models.PaymentMethod{models.PaymentMethodUPI, models.PaymentMethodCard, models.PaymentMethodNetBanking, models.PaymentMethodWallet} {
		p, err := reg.ProviderFor(m)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentProviderRazorpay, p)
	}

	p, err := reg.ProviderFor(models.PaymentMethodCashOnDelivery)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentProviderCOD, p)

	_, err = reg.ForMethod("crypto")
	assert.True(t, errors.Is(err, ErrUnsupportedMethod))
}

func TestRazorpayInitiate(t *testing.T) {
	orders := &fakeOrders{resp: map[string]interface{}{"id": "order_abc"}}
	g := newTestRazorpay(orders, &fakePayments{})

	init, err := g.Initiate(context.Background(), InitiateRequest{
		AmountPaise: 118000,
		Currency:    "INR",
		OrderID:     "ORD-1",
		Method:      models.PaymentMethodUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", init.CorrelationID)
	assert.Equal(t, int64(118000), orders.data["amount"])
	assert.Equal(t, "order_rcptid_ORD-1", orders.data["receipt"])
	assert.Contains(t, init.Metadata, "upi_apps")
}

func TestRazorpayInitiateFailure(t *testing.T) {
	g := newTestRazorpay(&fakeOrders{err: errors.New("bad request")}, &fakePayments{})
	_, err := g.Initiate(context.Background(), InitiateRequest{OrderID: "ORD-1"})
	assert.Error(t, err)

	g = newTestRazorpay(&fakeOrders{resp: map[string]interface{}{}}, &fakePayments{})
	_, err = g.Initiate(context.Background(), InitiateRequest{OrderID: "ORD-1"})
	assert.Error(t, err)
}

func TestRazorpayVerify(t *testing.T) {
	g := newTestRazorpay(&fakeOrders{}, &fakePayments{})
	sig := Sign("topsecret", []byte("order_abc|pay_xyz"))

	ok, err := g.Verify(context.Background(), Proof{GatewayOrderID: "order_abc", GatewayPaymentID: "pay_xyz", Signature: sig})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Verify(context.Background(), Proof{GatewayOrderID: "order_abc", GatewayPaymentID: "pay_other", Signature: sig})
	assert.False(t, ok)

	ok, _ = g.Verify(context.Background(), Proof{GatewayOrderID: "order_abc", GatewayPaymentID: "pay_xyz", Signature: "not-hex"})
	assert.False(t, ok)

	ok, _ = g.Verify(context.Background(), Proof{GatewayOrderID: "order_abc", GatewayPaymentID: "pay_xyz"})
	assert.False(t, ok)
}

func TestRazorpayRefund(t *testing.T) {
	payments := &fakePayments{resp: map[string]interface{}{"id": "rfnd_1", "status": "processed"}}
	g := newTestRazorpay(&fakeOrders{}, payments)

	res, err := g.Refund(context.Background(), RefundRequest{GatewayPaymentID: "pay_xyz", AmountPaise: 50000, Reason: "damaged"})
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", res.RefundID)
	assert.Equal(t, "pay_xyz", payments.paymentID)
	assert.Equal(t, 50000, payments.amount)

	_, err = g.Refund(context.Background(), RefundRequest{AmountPaise: 50000})
	assert.Error(t, err)
}

func TestCashOnDelivery(t *testing.T) {
	ok, err := CashOnDelivery{}.Verify(context.Background(), Proof{})
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := CashOnDelivery{}.Refund(context.Background(), RefundRequest{AmountPaise: 100})
	require.NoError(t, err)
	assert.Contains(t, res.RefundID, "cod_rfnd_")
}

func TestVerifyHMAC(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := Sign("whsec", body)
	assert.True(t, VerifyHMAC("whsec", body, sig))
	assert.False(t, VerifyHMAC("other", body, sig))
	assert.False(t, VerifyHMAC("whsec", append(body, ' '), sig))
}
