package utils

// Application constants
const (
	AppName    = "PaySphere"
	APIVersion = "v1"

	// Default pagination limit
	DefaultPaginationLimit = 10
	// Maximum pagination limit
	MaxPaginationLimit = 100

	// Admin token lifetime
	AdminTokenExpiration = "12h"
)

// Error messages
const (
	ErrInvalidToken    = "Invalid or expired token"
	ErrUnauthorized    = "Unauthorized access"
	ErrForbidden       = "Access forbidden"
	ErrInvalidRequest  = "Invalid request body"
	ErrPaymentNotFound = "Payment not found"
	ErrOrderNotFound   = "Order not found"
	ErrInternalServer  = "Internal server error"
)

// Success messages
const (
	MsgPaymentCreated   = "Payment created successfully"
	MsgPaymentConfirmed = "Payment confirmed successfully"
	MsgPaymentRefunded  = "Payment refunded successfully"
	MsgPaymentCancelled = "Payment cancelled successfully"
	MsgOrderCreated     = "Order created successfully"
	MsgWebhookAccepted  = "Webhook processed"
)
