package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind values carried by AppError so clients can branch without parsing messages
const (
	KindValidationFailed        = "validation_failed"
	KindDuplicatePayment        = "duplicate_payment"
	KindDuplicateOrder          = "duplicate_order"
	KindNotFound                = "not_found"
	KindInvalidState            = "invalid_state"
	KindRefundAmountExceeded    = "refund_amount_exceeded"
	KindGatewayInitiationFailed = "gateway_initiation_failed"
	KindGatewayTimeout          = "gateway_timeout"
	KindRefundFailed            = "refund_failed"
	KindVerificationFailed      = "verification_failed"
	KindInvalidSignature        = "invalid_signature"
	KindUnauthorized            = "unauthorized"
	KindForbidden               = "forbidden"
	KindInternal                = "internal"
)

// AppError represents an application error
type AppError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// BadRequestError creates a 400 Bad Request error
func BadRequestError(kind, message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, kind, message, err)
}

// UnauthorizedError creates a 401 Unauthorized error
func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(http.StatusUnauthorized, KindUnauthorized, message, err)
}

// NotFoundError creates a 404 Not Found error
func NotFoundError(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, message, err)
}

// ConflictError creates a 409 Conflict error
func ConflictError(kind, message string, err error) *AppError {
	return NewAppError(http.StatusConflict, kind, message, err)
}

// UnprocessableError creates a 422 Unprocessable Entity error
func UnprocessableError(kind, message string, err error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, kind, message, err)
}

// BadGatewayError creates a 502 Bad Gateway error
func BadGatewayError(kind, message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, kind, message, err)
}

// GatewayTimeoutError creates a 504 Gateway Timeout error
func GatewayTimeoutError(message string, err error) *AppError {
	return NewAppError(http.StatusGatewayTimeout, KindGatewayTimeout, message, err)
}

// InternalError creates a 500 Internal Server Error
func InternalError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindInternal, message, err)
}

// GetAppError returns the AppError anywhere in the error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

