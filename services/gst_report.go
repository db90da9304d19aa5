package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// GSTSummary totals tax collected over a reporting period
type GSTSummary struct {
	Payments      int             `json:"payments"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	TotalGST      decimal.Decimal `json:"total_gst"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	Refunded      decimal.Decimal `json:"refunded"`
}

// SummarizeGST adds up the tax columns of payments
func SummarizeGST(payments []models.Payment) GSTSummary {
	var s GSTSummary
	for i := range payments {
		p := &payments[i]
		s.Payments++
		s.TaxableAmount = s.TaxableAmount.Add(p.TaxableAmount)
		s.CGST = s.CGST.Add(p.CGST)
		s.SGST = s.SGST.Add(p.SGST)
		s.IGST = s.IGST.Add(p.IGST)
		s.TotalGST = s.TotalGST.Add(p.TotalGST)
		s.GrossAmount = s.GrossAmount.Add(p.Amount)
		s.Refunded = s.Refunded.Add(RefundAmount(p))
	}
	return s
}

// GSTReport builds the spreadsheet of settled payments created in [from, to)
func (s *PaymentService) GSTReport(ctx context.Context, from, to time.Time) (*xlsx.File, GSTSummary, error) {
	if !to.After(from) {
		return nil, GSTSummary{}, fmt.Errorf("%w: report end must be after its start", ErrValidationFailed)
	}
	payments, err := s.payments.ListSettled(ctx, from, to)
	if err != nil {
		return nil, GSTSummary{}, err
	}
	utils.LogInfo("Building GST report for %s to %s with %d payments", from.Format("2006-01-02"), to.Format("2006-01-02"), len(payments))

	file, err := BuildGSTReport(payments, from, to)
	if err != nil {
		return nil, GSTSummary{}, err
	}
	return file, SummarizeGST(payments), nil
}

// BuildGSTReport lays out one row per payment followed by period totals
func BuildGSTReport(payments []models.Payment, from, to time.Time) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("GST Report")
	if err != nil {
		return nil, fmt.Errorf("add report sheet: %w", err)
	}

	bold := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	bold.Font = *font

	title := sheet.AddRow()
	title.AddCell().SetString(utils.AppName + " - GST Report")
	sheet.AddRow().AddCell().SetString("Period: " + from.Format("2006-01-02") + " to " + to.Format("2006-01-02"))
	sheet.AddRow()

	headers := []string{"Date", "Order ID", "Payment ID", "Method", "Customer GSTIN", "Place of Supply",
		"Supply Type", "GST Rate", "Taxable Value", "CGST", "SGST", "IGST", "Total GST", "Invoice Value", "Status", "Refunded"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		cell.SetStyle(bold)
	}

	for i := range payments {
		p := &payments[i]
		supply := "Intra-state"
		if p.IsInterState {
			supply = "Inter-state"
		}
		row := sheet.AddRow()
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetString(p.OrderID)
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(string(p.PaymentMethod))
		row.AddCell().SetString(p.GSTNumber)
		row.AddCell().SetString(utils.Title(p.Delivery.State))
		row.AddCell().SetString(supply)
		row.AddCell().SetString(p.GSTRate.StringFixed(2))
		addMoney(row, p.TaxableAmount)
		addMoney(row, p.CGST)
		addMoney(row, p.SGST)
		addMoney(row, p.IGST)
		addMoney(row, p.TotalGST)
		addMoney(row, p.Amount)
		row.AddCell().SetString(string(p.Status))
		addMoney(row, RefundAmount(p))
	}

	sheet.AddRow()
	summary := SummarizeGST(payments)
	label := sheet.AddRow().AddCell()
	label.SetString("Summary")
	label.SetStyle(bold)
	for _, line := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"Taxable Value", summary.TaxableAmount},
		{"CGST", summary.CGST},
		{"SGST", summary.SGST},
		{"IGST", summary.IGST},
		{"Total GST", summary.TotalGST},
		{"Invoice Value", summary.GrossAmount},
		{"Refunded", summary.Refunded},
	} {
		row := sheet.AddRow()
		row.AddCell().SetString(line.name)
		addMoney(row, line.value)
	}
	return file, nil
}

func addMoney(row *xlsx.Row, v decimal.Decimal) {
	f, _ := v.Round(2).Float64()
	row.AddCell().SetFloatWithFormat(f, "0.00")
}
