// Package controllers exposes the payment services over HTTP with gin.
package controllers

import (
	"errors"

	"github.com/Govind-619/PaySphere/services"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

// Controller holds the services behind every handler
type Controller struct {
	Payments *services.PaymentService
	Webhooks *services.WebhookService
}

func NewController(payments *services.PaymentService, webhooks *services.WebhookService) *Controller {
	return &Controller{Payments: payments, Webhooks: webhooks}
}

// respondError maps a service error onto the standard error response
func respondError(c *gin.Context, err error) {
	utils.AppErrorResponse(c, toAppError(err))
}

func toAppError(err error) *utils.AppError {
	if appErr := utils.GetAppError(err); appErr != nil {
		return appErr
	}
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		return utils.BadRequestError(utils.KindValidationFailed, "Validation failed", err)
	case errors.Is(err, services.ErrOrderNotFound):
		return utils.NotFoundError(utils.ErrOrderNotFound, err)
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundError(utils.ErrPaymentNotFound, err)
	case errors.Is(err, services.ErrDuplicatePayment):
		return utils.ConflictError(utils.KindDuplicatePayment, "A payment already exists for this order", err)
	case errors.Is(err, services.ErrDuplicateOrder):
		return utils.ConflictError(utils.KindDuplicateOrder, "Order already exists", err)
	case errors.Is(err, services.ErrInvalidState):
		return utils.ConflictError(utils.KindInvalidState, "Operation not allowed in the current payment state", err)
	case errors.Is(err, services.ErrRefundAmountExceeded):
		return utils.UnprocessableError(utils.KindRefundAmountExceeded, "Refund amount exceeds the payment amount", err)
	case errors.Is(err, services.ErrVerificationFailed):
		return utils.UnprocessableError(utils.KindVerificationFailed, "Payment verification failed", err)
	case errors.Is(err, services.ErrInvalidSignature):
		return utils.UnauthorizedError("Invalid webhook signature", err)
	case errors.Is(err, services.ErrGatewayInitiationFailed):
		return utils.BadGatewayError(utils.KindGatewayInitiationFailed, "Payment gateway rejected the request", err)
	case errors.Is(err, services.ErrRefundFailed):
		return utils.BadGatewayError(utils.KindRefundFailed, "Refund failed at the payment gateway", err)
	case errors.Is(err, services.ErrGatewayTimeout):
		return utils.GatewayTimeoutError("Payment gateway did not respond in time", err)
	}
	return utils.InternalError(utils.ErrInternalServer, err)
}

// bindJSON decodes the body and writes a 400 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.LogError("Invalid request body for %s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.ValidationError(c, utils.ErrInvalidRequest, err.Error())
		return false
	}
	return true
}
