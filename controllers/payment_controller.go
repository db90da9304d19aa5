package controllers

import (
	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/services"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

// POST /v1/payments
func (ctl *Controller) CreatePayment(c *gin.Context) {
	utils.LogInfo("CreatePayment called")

	var req services.CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := ctl.Payments.CreatePayment(c.Request.Context(), req)
	if err != nil {
		utils.LogError("Failed to create payment for order %s: %v", req.OrderID, err)
		respondError(c, err)
		return
	}

	utils.LogInfo("Payment %s created for order %s", res.Payment.ID, res.Payment.OrderID)
	utils.Created(c, utils.MsgPaymentCreated, res)
}

// POST /v1/payments/:id/confirm
func (ctl *Controller) ConfirmPayment(c *gin.Context) {
	paymentID := c.Param("id")
	utils.LogInfo("ConfirmPayment called for payment %s", paymentID)

	var req services.ConfirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := ctl.Payments.ConfirmPayment(c.Request.Context(), paymentID, req)
	if err != nil {
		utils.LogError("Failed to confirm payment %s: %v", paymentID, err)
		respondError(c, err)
		return
	}

	utils.LogInfo("Payment %s confirmed", paymentID)
	utils.Success(c, utils.MsgPaymentConfirmed, payment)
}

// POST /v1/payments/:id/refund
func (ctl *Controller) RefundPayment(c *gin.Context) {
	paymentID := c.Param("id")
	utils.LogInfo("RefundPayment called for payment %s", paymentID)

	var req services.RefundPaymentRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	payment, err := ctl.Payments.RefundPayment(c.Request.Context(), paymentID, req)
	if err != nil {
		utils.LogError("Failed to refund payment %s: %v", paymentID, err)
		respondError(c, err)
		return
	}

	utils.LogInfo("Payment %s refunded", paymentID)
	utils.Success(c, utils.MsgPaymentRefunded, payment)
}

// POST /v1/payments/:id/cancel
func (ctl *Controller) CancelPayment(c *gin.Context) {
	paymentID := c.Param("id")
	utils.LogInfo("CancelPayment called for payment %s", paymentID)

	payment, err := ctl.Payments.CancelPayment(c.Request.Context(), paymentID)
	if err != nil {
		utils.LogError("Failed to cancel payment %s: %v", paymentID, err)
		respondError(c, err)
		return
	}
	utils.Success(c, utils.MsgPaymentCancelled, payment)
}

// GET /v1/payments/:id
func (ctl *Controller) GetPayment(c *gin.Context) {
	paymentID := c.Param("id")
	payment, err := ctl.Payments.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		utils.LogError("Failed to load payment %s: %v", paymentID, err)
		respondError(c, err)
		return
	}
	utils.Success(c, "Payment retrieved successfully", payment)
}

// GET /v1/payments/order/:orderId
func (ctl *Controller) GetPaymentByOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	payment, err := ctl.Payments.GetPaymentByOrderID(c.Request.Context(), orderID)
	if err != nil {
		utils.LogError("Failed to load payment for order %s: %v", orderID, err)
		respondError(c, err)
		return
	}
	utils.Success(c, "Payment retrieved successfully", payment)
}

// GET /v1/payments/methods
func (ctl *Controller) ListPaymentMethods(c *gin.Context) {
	methods := make([]gin.H, 0, len(models.PaymentMethods))
	for _, m := range models.PaymentMethods {
		methods = append(methods, gin.H{
			"method": m,
			"name":   methodNames[m],
		})
	}
	utils.Success(c, "Payment methods retrieved successfully", gin.H{"methods": methods})
}

var methodNames = map[models.PaymentMethod]string{
	models.PaymentMethodUPI:            "UPI",
	models.PaymentMethodCard:           "Credit / Debit Card",
	models.PaymentMethodNetBanking:     "Net Banking",
	models.PaymentMethodWallet:         "Wallet",
	models.PaymentMethodCashOnDelivery: "Cash on Delivery",
}
