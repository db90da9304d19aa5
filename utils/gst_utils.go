package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GSTBreakdown is the result of a GST computation.
// CGST+SGST+IGST always equals TotalGST.
type GSTBreakdown struct {
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TotalGST      decimal.Decimal `json:"total_gst"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	// GrossAmount is the tax-inclusive amount
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	IsInterState bool            `json:"is_inter_state"`
}

// IsInterState compares billing and shipping states ignoring case and surrounding space.
// Both payment and order records must use this to classify a transaction.
func IsInterState(billingState, shippingState string) bool {
	return !strings.EqualFold(strings.TrimSpace(billingState), strings.TrimSpace(shippingState))
}

// GrossUpGST treats amount as tax-inclusive and extracts the GST it contains.
// Used for payment records.
func GrossUpGST(amount, rate decimal.Decimal, interState bool) GSTBreakdown {
	amount = amount.Round(2)
	divisor := decimal.NewFromInt(1).Add(rate.Div(hundred))
	taxable := amount.DivRound(divisor, 2)
	total := amount.Sub(taxable)

	b := SplitGST(total, interState)
	b.TaxableAmount = taxable
	b.GrossAmount = amount
	return b
}

// AddOnGST treats subtotal as tax-exclusive and adds GST on top.
// Used for order records.
func AddOnGST(subtotal, rate decimal.Decimal, interState bool) GSTBreakdown {
	subtotal = subtotal.Round(2)
	gst := subtotal.Mul(rate).Div(hundred).Round(2)

	b := SplitGST(gst, interState)
	b.TaxableAmount = subtotal
	b.GrossAmount = subtotal.Add(gst)
	return b
}

// SplitGST divides total into CGST/SGST for intra-state and IGST for inter-state.
// An odd paisa in an intra-state split goes to CGST.
func SplitGST(total decimal.Decimal, interState bool) GSTBreakdown {
	total = total.Round(2)
	b := GSTBreakdown{
		TotalGST:     total,
		CGST:         decimal.Zero,
		SGST:         decimal.Zero,
		IGST:         decimal.Zero,
		IsInterState: interState,
	}
	if interState {
		b.IGST = total
		return b
	}
	paise := total.Shift(2).IntPart()
	sgst := paise / 2
	b.SGST = decimal.New(sgst, -2)
	b.CGST = decimal.New(paise-sgst, -2)
	return b
}

// ToPaise converts a rupee amount to integer paise
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

// FromPaise converts integer paise to a rupee amount
func FromPaise(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}
