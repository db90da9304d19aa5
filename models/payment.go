package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// IsOpen reports whether the payment is still awaiting an outcome
func (s PaymentStatus) IsOpen() bool {
	return s == PaymentStatusPending || s == PaymentStatusProcessing
}

type PaymentMethod string

const (
	PaymentMethodUPI            PaymentMethod = "upi"
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodNetBanking     PaymentMethod = "netbanking"
	PaymentMethodWallet         PaymentMethod = "wallet"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// PaymentMethods lists every supported method in display order
var PaymentMethods = []PaymentMethod{
	PaymentMethodUPI,
	PaymentMethodCard,
	PaymentMethodNetBanking,
	PaymentMethodWallet,
	PaymentMethodCashOnDelivery,
}

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

type PaymentProvider string

const (
	PaymentProviderRazorpay PaymentProvider = "razorpay"
	PaymentProviderPayU     PaymentProvider = "payu"
	PaymentProviderPhonePe  PaymentProvider = "phonepe"
	PaymentProviderCOD      PaymentProvider = "cod"
)

type RefundStatus string

const (
	RefundStatusNone      RefundStatus = ""
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusProcessed RefundStatus = "processed"
	RefundStatusFailed    RefundStatus = "failed"
)

// CurrencyINR is the only supported currency
const CurrencyINR = "INR"

// RetentionYears is how long payment and order records are kept
const RetentionYears = 7

// Payment is the record of a single payment for an order.
// Tax fields are derived by the payment service and never taken from a client.
type Payment struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string          `json:"order_id" gorm:"uniqueIndex;not null"`
	UserID          string          `json:"user_id" gorm:"index;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);not null;default:INR"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(32);not null"`
	PaymentProvider PaymentProvider `json:"payment_provider" gorm:"type:varchar(32);not null"`
	Status          PaymentStatus   `json:"status" gorm:"type:varchar(32);index;not null;default:pending"`

	GatewayOrderID   string `json:"gateway_order_id,omitempty" gorm:"index"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty" gorm:"index"`
	GatewaySignature string `json:"-" gorm:"type:text"`

	UPIID            string `json:"upi_id,omitempty"`
	UPIApp           string `json:"upi_app,omitempty"`
	UPITransactionID string `json:"upi_transaction_id,omitempty"`
	CardLast4        string `json:"card_last4,omitempty" gorm:"type:varchar(4)"`
	CardBrand        string `json:"card_brand,omitempty"`
	CardType         string `json:"card_type,omitempty"`

	GSTNumber     string          `json:"gst_number,omitempty"`
	GSTRate       decimal.Decimal `json:"gst_rate" gorm:"type:decimal(5,2);not null"`
	IsInterState  bool            `json:"is_inter_state"`
	TaxableAmount decimal.Decimal `json:"taxable_amount" gorm:"type:decimal(10,2)"`
	CGST          decimal.Decimal `json:"cgst" gorm:"column:cgst;type:decimal(10,2)"`
	SGST          decimal.Decimal `json:"sgst" gorm:"column:sgst;type:decimal(10,2)"`
	IGST          decimal.Decimal `json:"igst" gorm:"column:igst;type:decimal(10,2)"`
	TotalGST      decimal.Decimal `json:"total_gst" gorm:"column:total_gst;type:decimal(10,2)"`

	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	Description   string `json:"description,omitempty" gorm:"type:text"`

	Billing  Address `json:"billing_address" gorm:"embedded;embeddedPrefix:billing_"`
	Delivery Address `json:"delivery_address" gorm:"embedded;embeddedPrefix:delivery_"`

	RefundID     string           `json:"refund_id,omitempty"`
	RefundAmount *decimal.Decimal `json:"refund_amount,omitempty" gorm:"type:decimal(10,2)"`
	RefundReason string           `json:"refund_reason,omitempty" gorm:"type:text"`
	RefundedAt   *time.Time       `json:"refunded_at,omitempty"`
	RefundStatus RefundStatus     `json:"refund_status,omitempty" gorm:"type:varchar(16)"`

	RetainUntil time.Time `json:"retain_until"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns the record id
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
