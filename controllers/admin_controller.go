package controllers

import (
	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/repository"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/admin/payments?status=&method=&user_id=&order_id=&page=&limit=
func (ctl *Controller) ListPayments(c *gin.Context) {
	utils.LogInfo("ListPayments called by %s", c.GetString("admin_email"))

	filter := repository.PaymentFilter{
		Status:        models.PaymentStatus(c.Query("status")),
		PaymentMethod: models.PaymentMethod(c.Query("method")),
		UserID:        c.Query("user_id"),
		OrderID:       c.Query("order_id"),
	}
	pagination := utils.NewPagination(c)

	payments, total, err := ctl.Payments.ListPayments(c.Request.Context(), filter, pagination.Offset, pagination.Limit)
	if err != nil {
		utils.LogError("Failed to list payments: %v", err)
		respondError(c, err)
		return
	}
	pagination.SetTotal(total)

	utils.LogInfo("Listed %d of %d payments", len(payments), total)
	utils.SuccessWithPagination(c, "Payments retrieved successfully", payments, pagination)
}

// GET /v1/admin/reconciliation
func (ctl *Controller) ListUnsettledOrders(c *gin.Context) {
	rows, err := ctl.Payments.ListUnsettledOrders(c.Request.Context())
	if err != nil {
		utils.LogError("Failed to list unsettled orders: %v", err)
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{
			"order_id":             r.OrderID,
			"payment_id":           r.PaymentID,
			"payment_status":       r.PaymentStatus,
			"order_payment_status": r.OrderPaymentStatus,
			"order_missing":        r.OrderMissing(),
		})
	}
	utils.LogInfo("Found %d unsettled orders", len(out))
	utils.Success(c, "Unsettled orders retrieved successfully", gin.H{"orders": out, "count": len(out)})
}

// POST /v1/admin/reconciliation/:orderId/repair
func (ctl *Controller) RepairOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	utils.LogInfo("RepairOrder called for order %s by %s", orderID, c.GetString("admin_email"))

	res, err := ctl.Payments.RepairOrder(c.Request.Context(), orderID)
	if err != nil {
		utils.LogError("Failed to repair order %s: %v", orderID, err)
		respondError(c, err)
		return
	}
	utils.Success(c, "Order reconciled successfully", res)
}
