package controllers

import (
	"github.com/Govind-619/PaySphere/services"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

// POST /v1/orders
func (ctl *Controller) CreateOrder(c *gin.Context) {
	utils.LogInfo("CreateOrder called")

	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctl.Payments.CreateOrder(c.Request.Context(), req)
	if err != nil {
		utils.LogError("Failed to create order %s: %v", req.OrderID, err)
		respondError(c, err)
		return
	}

	utils.LogInfo("Order %s created", order.OrderID)
	utils.Created(c, utils.MsgOrderCreated, order)
}

// GET /v1/orders/:orderId
func (ctl *Controller) GetOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	order, err := ctl.Payments.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		utils.LogError("Failed to load order %s: %v", orderID, err)
		respondError(c, err)
		return
	}
	utils.Success(c, "Order retrieved successfully", order)
}
