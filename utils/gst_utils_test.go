package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msg ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s %v", want, got, msg)
}

func TestGrossUpGST_IntraState(t *testing.T) {
	b := GrossUpGST(d("1180.00"), d("18"), IsInterState("Maharashtra", "Maharashtra"))

	assertDecimal(t, "1000.00", b.TaxableAmount)
	assertDecimal(t, "180.00", b.TotalGST)
	assertDecimal(t, "90.00", b.CGST)
	assertDecimal(t, "90.00", b.SGST)
	assertDecimal(t, "0", b.IGST)
	assert.False(t, b.IsInterState)
}

func TestGrossUpGST_InterState(t *testing.T) {
	b := GrossUpGST(d("1180.00"), d("18"), IsInterState("Maharashtra", "Karnataka"))

	assertDecimal(t, "1000.00", b.TaxableAmount)
	assertDecimal(t, "180.00", b.IGST)
	assertDecimal(t, "0", b.CGST)
	assertDecimal(t, "0", b.SGST)
	assert.True(t, b.IsInterState)
}

func TestAddOnGST(t *testing.T) {
	b := AddOnGST(d("1000.00"), d("18"), false)

	assertDecimal(t, "180.00", b.TotalGST)
	assertDecimal(t, "1180.00", b.GrossAmount)
	assertDecimal(t, "90.00", b.CGST)
	assertDecimal(t, "90.00", b.SGST)
}

// The same numeric amount yields different GST depending on the mode:
// payments are tax-inclusive, orders are tax-exclusive.
func TestModesAreNotInterchangeable(t *testing.T) {
	inclusive := GrossUpGST(d("1180.00"), d("18"), false)
	exclusive := AddOnGST(d("1180.00"), d("18"), false)

	assertDecimal(t, "180.00", inclusive.TotalGST)
	assertDecimal(t, "212.40", exclusive.TotalGST)
	assertDecimal(t, "1392.40", exclusive.GrossAmount)
}

func TestSplitGST_OddPaisaGoesToCGST(t *testing.T) {
	b := SplitGST(d("10.01"), false)

	assertDecimal(t, "5.01", b.CGST)
	assertDecimal(t, "5.00", b.SGST)
	assertDecimal(t, "10.01", b.CGST.Add(b.SGST).Add(b.IGST))
}

func TestIsInterState(t *testing.T) {
	assert.False(t, IsInterState("Maharashtra", " maharashtra "))
	assert.True(t, IsInterState("Maharashtra", "Karnataka"))
	assert.True(t, IsInterState("", "Karnataka"))
}

func TestGSTProperties(t *testing.T) {
	rates := []string{"0", "5", "12", "18", "28", "0.25", "3"}
	one := decimal.NewFromInt(1)
	tolerance := d("0.01")

	for paise := int64(1); paise <= 500000; paise += 997 {
		amount := FromPaise(paise)
		for _, r := range rates {
			rate := d(r)
			for _, inter := range []bool{false, true} {
				addOn := AddOnGST(amount, rate, inter)
				want := amount.Add(amount.Mul(rate).Div(hundred)).Round(2)
				assertDecimal(t, want.String(), addOn.GrossAmount, "add-on", amount, r)

				gross := GrossUpGST(amount, rate, inter)
				back := gross.TaxableAmount.Mul(one.Add(rate.Div(hundred))).Round(2)
				assert.True(t, back.Sub(amount).Abs().LessThanOrEqual(tolerance),
					"gross-up %s at %s: taxable %s", amount, r, gross.TaxableAmount)

				for _, b := range []GSTBreakdown{addOn, gross} {
					sum := b.CGST.Add(b.SGST).Add(b.IGST)
					assert.True(t, sum.Equal(b.TotalGST))
					if inter {
						assert.True(t, b.IGST.Equal(b.TotalGST))
						assert.True(t, b.CGST.IsZero() && b.SGST.IsZero())
					} else {
						assert.True(t, b.IGST.IsZero())
						assert.True(t, b.CGST.Sub(b.SGST).LessThanOrEqual(tolerance))
						assert.False(t, b.CGST.LessThan(b.SGST))
					}
				}
			}
		}
	}
}

func TestGrossUpIsIdempotent(t *testing.T) {
	a := GrossUpGST(d("999.99"), d("18"), false)
	b := GrossUpGST(d("999.99"), d("18"), false)
	assert.Equal(t, a.TaxableAmount.String(), b.TaxableAmount.String())
	assert.Equal(t, a.CGST.String(), b.CGST.String())
}

func TestPaiseConversion(t *testing.T) {
	assert.Equal(t, int64(118000), ToPaise(d("1180")))
	assertDecimal(t, "1180.00", FromPaise(118000))
}
