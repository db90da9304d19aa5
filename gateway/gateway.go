// Package gateway defines the contract the payment core needs from a payment
// provider, and the lookup from payment method to provider.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/Govind-619/PaySphere/models"
)

// ErrUnsupportedMethod is returned when no gateway serves a payment method
var ErrUnsupportedMethod = errors.New("no gateway configured for payment method")

// Customer identifies the payer to the provider
type Customer struct {
	UserID string
	Name   string
	Email  string
	Phone  string
}

type InitiateRequest struct {
	AmountPaise int64
	Currency    string
	OrderID     string
	Method      models.PaymentMethod
	Customer    Customer
}

// Initiation is the provider-side order or intent created for a payment
type Initiation struct {
	CorrelationID string
	Metadata      map[string]interface{}
}

// Proof is what the client reports back after completing payment with the provider
type Proof struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

type RefundRequest struct {
	GatewayPaymentID string
	AmountPaise      int64
	Reason           string
	OrderID          string
}

type RefundResult struct {
	RefundID string
	Status   string
}

// Gateway is implemented once per provider
type Gateway interface {
	Provider() models.PaymentProvider
	Initiate(ctx context.Context, req InitiateRequest) (*Initiation, error)
	Verify(ctx context.Context, proof Proof) (bool, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

// Registry maps payment methods to providers and providers to gateways
type Registry struct {
	providers map[models.PaymentMethod]models.PaymentProvider
	gateways  map[models.PaymentProvider]Gateway
}

// NewRegistry routes cash on delivery to cod and every other method to primary
func NewRegistry(primary Gateway, cod Gateway) *Registry {
	r := &Registry{
		providers: make(map[models.PaymentMethod]models.PaymentProvider),
		gateways: map[models.PaymentProvider]Gateway{
			primary.Provider(): primary,
			cod.Provider():     cod,
		},
	}
	for _, m := range models.PaymentMethods {
		if m == models.PaymentMethodCashOnDelivery {
			r.providers[m] = cod.Provider()
			continue
		}
		r.providers[m] = primary.Provider()
	}
	return r
}

// ProviderFor returns the provider that handles method
func (r *Registry) ProviderFor(method models.PaymentMethod) (models.PaymentProvider, error) {
	p, ok := r.providers[method]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	return p, nil
}

// ForMethod returns the gateway that handles method
func (r *Registry) ForMethod(method models.PaymentMethod) (Gateway, error) {
	p, err := r.ProviderFor(method)
	if err != nil {
		return nil, err
	}
	return r.ForProvider(p)
}

// ForProvider returns the gateway registered for provider
func (r *Registry) ForProvider(provider models.PaymentProvider) (Gateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s", ErrUnsupportedMethod, provider)
	}
	return g, nil
}
