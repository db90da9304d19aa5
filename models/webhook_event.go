package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventStatus string

const (
	WebhookEventReceived  WebhookEventStatus = "received"
	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventIgnored   WebhookEventStatus = "ignored"
	WebhookEventFailed    WebhookEventStatus = "failed"
)

// WebhookEvent stores every verified gateway notification.
// (provider, event_id) is unique so redeliveries are detected.
type WebhookEvent struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	Provider        PaymentProvider    `gorm:"type:varchar(32);not null;uniqueIndex:ux_webhook_events_provider_event,priority:1" json:"provider"`
	EventID         string             `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_provider_event,priority:2" json:"event_id"`
	EventType       string             `gorm:"type:varchar(100);not null;index" json:"event_type"`
	GatewayOrderID  string             `gorm:"index" json:"gateway_order_id,omitempty"`
	Payload         datatypes.JSON     `json:"payload"`
	Status          WebhookEventStatus `gorm:"type:varchar(16);not null" json:"status"`
	ProcessingError string             `gorm:"type:text" json:"processing_error,omitempty"`
	ProcessedAt     *time.Time         `json:"processed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
