package controllers

import (
	"fmt"
	"net/http"

	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/payments/:id/invoice
func (ctl *Controller) DownloadInvoice(c *gin.Context) {
	paymentID := c.Param("id")
	utils.LogInfo("DownloadInvoice called for payment %s", paymentID)

	pdf, err := ctl.Payments.Invoice(c.Request.Context(), paymentID)
	if err != nil {
		utils.LogError("Failed to build invoice for payment %s: %v", paymentID, err)
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", paymentID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
