// Package pricing holds the checkout money math. Everything is integer paise;
// floating point never touches a monetary value.
package pricing

// Totals is the shipping/tax breakdown for a cart subtotal.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// CalculateTotals applies the flat shipping fee and the GST rate to a cart
// subtotal. Tax is rounded half-up to the nearest paisa using integer
// arithmetic: round(x*rate/100) == (x*rate + 50) / 100 for non-negative x.
func CalculateTotals(subtotal, shippingFee, taxRatePercent int64) Totals {
	taxable := subtotal + shippingFee
	tax := (taxable*taxRatePercent + 50) / 100

	return Totals{
		Subtotal: subtotal,
		Shipping: shippingFee,
		Tax:      tax,
		Total:    subtotal + shippingFee + tax,
	}
}
