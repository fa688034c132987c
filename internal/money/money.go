// Package money holds the POS arithmetic. All amounts are decimals with two
// fractional digits; every arithmetic stage is rounded half-up before the
// next one uses it.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// VATRate is applied to the discounted subtotal.
var VATRate = decimal.RequireFromString("0.12")

// Line is one priced cart entry.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Totals is the money breakdown of a sale.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	VAT      decimal.Decimal `json:"vat"`
	Total    decimal.Decimal `json:"total"`
}

// Round2 rounds to cents. Amounts here are never negative, so shopspring's
// half-away-from-zero behaves as half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineSubtotal is round2(price × quantity).
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return Round2(price.Mul(decimal.NewFromInt(int64(quantity))))
}

// Compute derives subtotal, VAT and total from the lines and a flat discount.
// It does not validate the discount; callers decide the policy.
func Compute(lines []Line, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineSubtotal(l.Price, l.Quantity))
	}
	subtotal = Round2(subtotal)
	discount = Round2(discount)

	net := Round2(subtotal.Sub(discount))
	vat := Round2(net.Mul(VATRate))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		VAT:      vat,
		Total:    Round2(net.Add(vat)),
	}
}

// Change returns received − total, rounded. ok is false when received < total.
func Change(total, received decimal.Decimal) (change decimal.Decimal, ok bool) {
	received = Round2(received)
	if received.LessThan(total) {
		return decimal.Zero, false
	}
	return Round2(received.Sub(total)), true
}

// Verify re-checks the stored invariants of a persisted breakdown:
// vat = round2((subtotal−discount)×rate) and total = round2(subtotal−discount+vat).
func Verify(t Totals) error {
	net := Round2(t.Subtotal.Sub(t.Discount))
	if want := Round2(net.Mul(VATRate)); !want.Equal(t.VAT) {
		return fmt.Errorf("vat %s does not match expected %s", t.VAT.StringFixed(2), want.StringFixed(2))
	}
	if want := Round2(net.Add(t.VAT)); !want.Equal(t.Total) {
		return fmt.Errorf("total %s does not match expected %s", t.Total.StringFixed(2), want.StringFixed(2))
	}
	return nil
}
