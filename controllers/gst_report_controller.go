package controllers

import (
	"fmt"
	"time"

	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

const reportDateLayout = "2006-01-02"

// GET /v1/admin/reports/gst?from=2024-04-01&to=2024-04-30
// Both dates are inclusive; the default period is the current month to date.
func (ctl *Controller) ExportGSTReport(c *gin.Context) {
	utils.LogInfo("ExportGSTReport called by %s", c.GetString("admin_email"))

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(reportDateLayout, v, now.Location())
		if err != nil {
			utils.LogError("Invalid report start date %q: %v", v, err)
			utils.ValidationError(c, "Invalid from date. Use YYYY-MM-DD", err.Error())
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(reportDateLayout, v, now.Location())
		if err != nil {
			utils.LogError("Invalid report end date %q: %v", v, err)
			utils.ValidationError(c, "Invalid to date. Use YYYY-MM-DD", err.Error())
			return
		}
		to = t
	}
	end := to.AddDate(0, 0, 1)

	file, summary, err := ctl.Payments.GSTReport(c.Request.Context(), from, end)
	if err != nil {
		utils.LogError("Failed to build GST report: %v", err)
		respondError(c, err)
		return
	}
	utils.LogInfo("GST report %s to %s: %d payments, total GST %s",
		from.Format(reportDateLayout), to.Format(reportDateLayout), summary.Payments, summary.TotalGST)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=gst_report_%s_%s.xlsx",
		from.Format(reportDateLayout), to.Format(reportDateLayout)))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write GST report: %v", err)
		return
	}
}
