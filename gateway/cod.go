package gateway

import (
	"context"

	"github.com/Govind-619/PaySphere/models"
	"github.com/google/uuid"
)

// CashOnDelivery settles offline: there is nothing to initiate and
// delivery confirmation is the proof of payment.
type CashOnDelivery struct{}

func (CashOnDelivery) Provider() models.PaymentProvider {
	return models.PaymentProviderCOD
}

func (CashOnDelivery) Initiate(ctx context.Context, req InitiateRequest) (*Initiation, error) {
	return &Initiation{Metadata: map[string]interface{}{"message": "Order created for cash on delivery"}}, nil
}

func (CashOnDelivery) Verify(ctx context.Context, proof Proof) (bool, error) {
	return true, ctx.Err()
}

// Refund records a cash refund handed back by the delivery partner
func (CashOnDelivery) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &RefundResult{RefundID: "cod_rfnd_" + uuid.NewString(), Status: "processed"}, nil
}
