package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeSingleLine(t *testing.T) {
	got := Compute([]Line{{Price: d("15.00"), Quantity: 3}}, decimal.Zero)

	assert.Equal(t, "45.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", got.Discount.StringFixed(2))
	assert.Equal(t, "5.40", got.VAT.StringFixed(2))
	assert.Equal(t, "50.40", got.Total.StringFixed(2))
}

func TestComputeWithDiscount(t *testing.T) {
	got := Compute([]Line{
		{Price: d("19.99"), Quantity: 2},
		{Price: d("4.50"), Quantity: 1},
	}, d("5"))

	// 39.98 + 4.50 = 44.48; net 39.48; vat 4.7376 -> 4.74; total 44.22
	assert.Equal(t, "44.48", got.Subtotal.StringFixed(2))
	assert.Equal(t, "4.74", got.VAT.StringFixed(2))
	assert.Equal(t, "44.22", got.Total.StringFixed(2))
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, "0.13", Round2(d("0.125")).StringFixed(2))
	assert.Equal(t, "0.12", Round2(d("0.1249")).StringFixed(2))
	assert.Equal(t, "10.01", Round2(d("10.005")).StringFixed(2))
}

func TestComputeRoundsVATPerStage(t *testing.T) {
	// net 0.625 is not reachable (cents only), so check vat rounding: 1.04 * 0.12 = 0.1248 -> 0.12
	got := Compute([]Line{{Price: d("1.04"), Quantity: 1}}, decimal.Zero)
	assert.Equal(t, "0.12", got.VAT.StringFixed(2))
	assert.Equal(t, "1.16", got.Total.StringFixed(2))
}

func TestChange(t *testing.T) {
	change, ok := Change(d("100.00"), d("120"))
	require.True(t, ok)
	assert.Equal(t, "20.00", change.StringFixed(2))

	_, ok = Change(d("100.00"), d("80"))
	assert.False(t, ok)

	change, ok = Change(d("50.40"), d("50.40"))
	require.True(t, ok)
	assert.True(t, change.IsZero())
}

func TestVerify(t *testing.T) {
	good := Compute([]Line{{Price: d("15.00"), Quantity: 3}}, decimal.Zero)
	assert.NoError(t, Verify(good))

	bad := good
	bad.Total = d("50.41")
	assert.Error(t, Verify(bad))

	bad = good
	bad.VAT = d("5.00")
	assert.Error(t, Verify(bad))
}
