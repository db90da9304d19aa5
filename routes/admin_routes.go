package routes

import (
	"github.com/Govind-619/PaySphere/controllers"
	"github.com/Govind-619/PaySphere/middleware"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers operator endpoints behind admin token auth
func SetupAdminRoutes(v1 *gin.RouterGroup, ctl *controllers.Controller, jwtSecret string) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuth(jwtSecret))
	{
		admin.GET("/payments", ctl.ListPayments)
		admin.GET("/reconciliation", ctl.ListUnsettledOrders)
		admin.POST("/reconciliation/:orderId/repair", ctl.RepairOrder)
		admin.GET("/reports/gst", ctl.ExportGSTReport)
	}
}
