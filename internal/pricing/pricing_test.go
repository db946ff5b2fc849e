package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalsStandardGST(t *testing.T) {
	// 1000.00 INR subtotal, free shipping, 18% GST.
	got := CalculateTotals(100000, 0, 18)

	assert.Equal(t, int64(18000), got.Tax)
	assert.Equal(t, int64(118000), got.Total)
}

func TestCalculateTotalsShippingIsTaxed(t *testing.T) {
	got := CalculateTotals(100000, 5000, 18)

	assert.Equal(t, int64(5000), got.Shipping)
	assert.Equal(t, int64(18900), got.Tax) // 18% of 1050.00
	assert.Equal(t, int64(123900), got.Total)
}

func TestCalculateTotalsRoundsHalfUp(t *testing.T) {
	// 3 paise at 18% = 0.54 paise -> rounds to 1.
	got := CalculateTotals(3, 0, 18)
	assert.Equal(t, int64(1), got.Tax)

	// 25 paise at 18% = 4.5 paise -> half rounds up to 5.
	got = CalculateTotals(25, 0, 18)
	assert.Equal(t, int64(5), got.Tax)

	// 2 paise at 18% = 0.36 paise -> rounds down to 0.
	got = CalculateTotals(2, 0, 18)
	assert.Equal(t, int64(0), got.Tax)
}

func TestCalculateTotalsZeroSubtotal(t *testing.T) {
	got := CalculateTotals(0, 0, 18)
	assert.Equal(t, Totals{}, got)
}

func TestCalculateTotalsDeterministic(t *testing.T) {
	for _, subtotal := range []int64{1, 99, 4999, 123457, 9999999} {
		first := CalculateTotals(subtotal, 4000, 18)
		second := CalculateTotals(subtotal, 4000, 18)
		assert.Equal(t, first, second)
		assert.Equal(t, first.Subtotal+first.Shipping+first.Tax, first.Total)
	}
}
