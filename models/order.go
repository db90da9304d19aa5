package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

// Order status constants
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

type OrderPaymentStatus string

const (
	OrderPaymentPending  OrderPaymentStatus = "pending"
	OrderPaymentPaid     OrderPaymentStatus = "paid"
	OrderPaymentFailed   OrderPaymentStatus = "failed"
	OrderPaymentRefunded OrderPaymentStatus = "refunded"
)

// Order is paired 1:1 with a Payment through OrderID.
// PaymentStatus only changes as a side effect of the paired payment.
type Order struct {
	ID            string             `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID       string             `gorm:"uniqueIndex;not null" json:"order_id"`
	UserID        string             `gorm:"index;not null" json:"user_id"`
	Items         []OrderItem        `gorm:"foreignKey:OrderID;references:OrderID" json:"items"`
	Currency      string             `gorm:"type:varchar(3);not null;default:INR" json:"currency"`
	Subtotal      decimal.Decimal    `gorm:"type:decimal(10,2)" json:"subtotal"`
	GSTAmount     decimal.Decimal    `gorm:"column:gst_amount;type:decimal(10,2)" json:"gst_amount"`
	TotalAmount   decimal.Decimal    `gorm:"type:decimal(10,2)" json:"total_amount"`
	GSTRate       decimal.Decimal    `gorm:"type:decimal(5,2);not null" json:"gst_rate"`
	GSTNumber     string             `json:"gst_number,omitempty"`
	IsInterState  bool               `json:"is_inter_state"`
	CGST          decimal.Decimal    `gorm:"column:cgst;type:decimal(10,2)" json:"cgst"`
	SGST          decimal.Decimal    `gorm:"column:sgst;type:decimal(10,2)" json:"sgst"`
	IGST          decimal.Decimal    `gorm:"column:igst;type:decimal(10,2)" json:"igst"`
	TotalGST      decimal.Decimal    `gorm:"column:total_gst;type:decimal(10,2)" json:"total_gst"`
	Status        OrderStatus        `gorm:"type:varchar(32);index;not null;default:pending" json:"status"`
	PaymentStatus OrderPaymentStatus `gorm:"type:varchar(32);index;not null;default:pending" json:"payment_status"`
	PaymentMethod PaymentMethod      `gorm:"type:varchar(32)" json:"payment_method,omitempty"`
	Shipping      Address            `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Billing       Address            `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	RetainUntil   time.Time          `json:"retain_until"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   string          `gorm:"index;not null" json:"order_id"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(10,2)" json:"line_total"`
}

// BeforeCreate assigns the record id
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
