package routes

import (
	"github.com/Govind-619/PaySphere/controllers"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, ctl *controllers.Controller, jwtSecret string) {
	v1 := r.Group("/" + utils.APIVersion)

	payments := v1.Group("/payments")
	{
		payments.GET("/methods", ctl.ListPaymentMethods)
		payments.POST("", ctl.CreatePayment)
		payments.GET("/order/:orderId", ctl.GetPaymentByOrder)
		payments.GET("/:id", ctl.GetPayment)
		payments.POST("/:id/confirm", ctl.ConfirmPayment)
		payments.POST("/:id/refund", ctl.RefundPayment)
		payments.POST("/:id/cancel", ctl.CancelPayment)
		payments.GET("/:id/invoice", ctl.DownloadInvoice)
	}

	orders := v1.Group("/orders")
	{
		orders.POST("", ctl.CreateOrder)
		orders.GET("/:orderId", ctl.GetOrder)
	}

	// webhooks authenticate by signature, not by token
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/razorpay", ctl.RazorpayWebhook)
		webhooks.GET("/verify", ctl.VerifyWebhookEndpoint)
	}

	SetupAdminRoutes(v1, ctl, jwtSecret)

	r.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "Route not found")
	})
}
