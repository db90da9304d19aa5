package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/utils"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Invoice renders the GST tax invoice for a settled payment as PDF bytes
func (s *PaymentService) Invoice(ctx context.Context, paymentID string) ([]byte, error) {
	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusCompleted && payment.Status != models.PaymentStatusRefunded {
		return nil, fmt.Errorf("%w: invoices are only issued for completed payments", ErrInvalidState)
	}

	// the invoice is still issued from the payment alone when its order is missing
	order, err := s.GetOrder(ctx, payment.OrderID)
	if err != nil {
		utils.LogError("Invoice for payment %s rendered without order: %v", paymentID, err)
		order = nil
	}
	return RenderInvoice(payment, order)
}

// RenderInvoice lays out a tax invoice. Tax lines follow the payment's jurisdiction:
// CGST and SGST for intra-state supply, IGST otherwise.
func RenderInvoice(p *models.Payment, o *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, utils.AppName)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "TAX INVOICE")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(95, 7, "Order ID: "+p.OrderID)
	pdf.Cell(95, 7, "Date: "+p.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(7)
	pdf.Cell(95, 7, "Payment ID: "+p.ID)
	pdf.Cell(95, 7, "Payment Method: "+string(p.PaymentMethod))
	pdf.Ln(7)
	if p.GSTNumber != "" {
		pdf.Cell(95, 7, "Customer GSTIN: "+p.GSTNumber)
		pdf.Ln(7)
	}
	pdf.Cell(95, 7, "Place of Supply: "+utils.Title(p.Delivery.State))
	pdf.Ln(10)

	addressBlock(pdf, "Billed To:", p.CustomerName, p.Billing)
	addressBlock(pdf, "Shipped To:", p.Delivery.Name, p.Delivery)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(80, 8, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	if o != nil && len(o.Items) > 0 {
		for _, item := range o.Items {
			pdf.CellFormat(80, 8, item.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 8, item.Price.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 8, item.LineTotal.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	} else {
		description := p.Description
		if description == "" {
			description = "Order " + p.OrderID
		}
		pdf.CellFormat(80, 8, description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, "1", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 8, p.TaxableAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, p.TaxableAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	summaryLine(pdf, "Taxable Value:", p.TaxableAmount.StringFixed(2))
	rate := p.GSTRate.StringFixed(2) + "%"
	if p.IsInterState {
		summaryLine(pdf, "IGST @ "+rate+":", p.IGST.StringFixed(2))
	} else {
		half := p.GSTRate.Div(decimal.NewFromInt(2)).StringFixed(2) + "%"
		summaryLine(pdf, "CGST @ "+half+":", p.CGST.StringFixed(2))
		summaryLine(pdf, "SGST @ "+half+":", p.SGST.StringFixed(2))
	}
	summaryLine(pdf, "Total GST:", p.TotalGST.StringFixed(2))
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(140, 10, "Grand Total ("+p.Currency+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, p.Amount.StringFixed(2), "", 1, "R", false, 0, "")

	if p.Status == models.PaymentStatusRefunded {
		summaryLine(pdf, "Refunded:", RefundAmount(p).StringFixed(2))
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(0, 8, "This is a computer generated invoice.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

func addressBlock(pdf *gofpdf.Fpdf, title, name string, a models.Address) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(100, 7, title)
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 11)
	if name != "" {
		pdf.Cell(100, 6, name)
		pdf.Ln(5)
	}
	pdf.Cell(100, 6, a.Line1)
	pdf.Ln(5)
	if a.Line2 != "" {
		pdf.Cell(100, 6, a.Line2)
		pdf.Ln(5)
	}
	pdf.Cell(100, 6, a.City+", "+a.State+" - "+a.PostalCode)
	pdf.Ln(8)
}

func summaryLine(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 7, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(40, 7, value, "", 1, "R", false, 0, "")
}
