package services

import (
	"errors"
	"fmt"
)

// Callers branch on these with errors.Is; every returned error wraps at most one of them.
var (
	ErrValidationFailed        = errors.New("validation failed")
	ErrDuplicatePayment        = errors.New("payment already exists for order")
	ErrDuplicateOrder          = errors.New("order already exists")
	ErrNotFound                = errors.New("not found")
	ErrInvalidState            = errors.New("invalid state for operation")
	ErrRefundAmountExceeded    = errors.New("refund amount exceeds payment amount")
	ErrGatewayInitiationFailed = errors.New("gateway initiation failed")
	ErrGatewayTimeout          = errors.New("gateway timed out")
	ErrRefundFailed            = errors.New("refund failed")
	ErrVerificationFailed      = errors.New("payment verification failed")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
)

// Lookups name what was missing; both still match ErrNotFound.
var (
	ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
)
