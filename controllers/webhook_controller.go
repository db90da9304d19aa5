package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

// Razorpay notification headers
const (
	razorpaySignatureHeader = "X-Razorpay-Signature"
	razorpayEventIDHeader   = "X-Razorpay-Event-Id"

	// Razorpay payloads are a few KB; anything larger is not a notification
	maxWebhookBodyBytes = 1 << 20
)

// POST /v1/webhooks/razorpay
// The raw body is verified before it is decoded.
func (ctl *Controller) RazorpayWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(c, http.StatusRequestEntityTooLarge, "Request body too large", err.Error())
			return
		}
		utils.BadRequest(c, "Unable to read request body", err.Error())
		return
	}

	eventID := c.GetHeader(razorpayEventIDHeader)
	utils.LogInfo("Razorpay webhook received, event id %q, %d bytes", eventID, len(body))

	res, err := ctl.Webhooks.HandleRazorpay(c.Request.Context(), body, c.GetHeader(razorpaySignatureHeader), eventID)
	if err != nil {
		utils.LogError("Razorpay webhook %q rejected: %v", eventID, err)
		respondError(c, err)
		return
	}
	utils.Success(c, utils.MsgWebhookAccepted, res)
}

// GET /v1/webhooks/verify
func (ctl *Controller) VerifyWebhookEndpoint(c *gin.Context) {
	utils.Success(c, "Webhook endpoint is reachable", gin.H{
		"service": utils.AppName,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
