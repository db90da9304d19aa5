package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/utils"
	razorpay "github.com/razorpay/razorpay-go"
)

// upiApps is returned to UPI clients so they can offer an intent picker
var upiApps = []string{"google_pay", "phonepe", "paytm", "bhim"}

type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type razorpayPayments interface {
	Refund(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay implements Gateway on top of razorpay-go
type Razorpay struct {
	key      string
	secret   string
	orders   razorpayOrders
	payments razorpayPayments
}

// NewRazorpay creates a Razorpay gateway for the given API key pair
func NewRazorpay(key, secret string) *Razorpay {
	client := razorpay.NewClient(key, secret)
	return &Razorpay{
		key:      key,
		secret:   secret,
		orders:   client.Order,
		payments: client.Payment,
	}
}

func (r *Razorpay) Provider() models.PaymentProvider {
	return models.PaymentProviderRazorpay
}

// Initiate creates a Razorpay order the client checkout will pay against
func (r *Razorpay) Initiate(ctx context.Context, req InitiateRequest) (*Initiation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orderData := map[string]interface{}{
		"amount":          req.AmountPaise,
		"currency":        req.Currency,
		"receipt":         "order_rcptid_" + req.OrderID,
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"order_id": req.OrderID,
			"user_id":  req.Customer.UserID,
			"method":   string(req.Method),
		},
	}
	utils.LogDebug("Creating Razorpay order for order ID: %s, amount: %d paise", req.OrderID, req.AmountPaise)

	rzOrder, err := r.orders.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	id, _ := rzOrder["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order create: response has no order id")
	}

	meta := map[string]interface{}{
		"key":               r.key,
		"razorpay_order_id": id,
	}
	if req.Method == models.PaymentMethodUPI {
		meta["upi_apps"] = upiApps
	}
	return &Initiation{CorrelationID: id, Metadata: meta}, nil
}

// Verify checks the checkout signature, HMAC-SHA256 of "order_id|payment_id"
func (r *Razorpay) Verify(ctx context.Context, proof Proof) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if proof.GatewayOrderID == "" || proof.GatewayPaymentID == "" || proof.Signature == "" {
		return false, nil
	}
	return VerifyHMAC(r.secret, []byte(proof.GatewayOrderID+"|"+proof.GatewayPaymentID), proof.Signature), nil
}

// Refund issues a refund against a captured Razorpay payment
func (r *Razorpay) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.GatewayPaymentID == "" {
		return nil, fmt.Errorf("razorpay refund: payment has no gateway payment id")
	}

	data := map[string]interface{}{
		"speed": "normal",
		"notes": map[string]interface{}{
			"order_id": req.OrderID,
			"reason":   req.Reason,
		},
	}
	res, err := r.payments.Refund(req.GatewayPaymentID, int(req.AmountPaise), data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay refund: %w", err)
	}
	id, _ := res["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay refund: response has no refund id")
	}
	status, _ := res["status"].(string)
	return &RefundResult{RefundID: id, Status: status}, nil
}

// Sign returns the hex HMAC-SHA256 of payload under secret
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC compares signature against the expected HMAC in constant time
func VerifyHMAC(secret string, payload []byte, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hmac.Equal(h.Sum(nil), got)
}
