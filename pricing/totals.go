package pricing

import "math/big"

var (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = Cents(5000)
	// ShippingFee is charged below the threshold.
	ShippingFee = Cents(999)
	// TaxRate applies to the subtotal only.
	TaxRate = big.NewRat(8, 100)
)

// Line is one priced entry of a cart or order.
type Line struct {
	UnitPrice Money
	Quantity  int
}

// Total returns the unit price times quantity.
func (l Line) Total() Money {
	return l.UnitPrice.MulInt(int64(l.Quantity))
}

// Totals is the cost breakdown of a set of lines.
type Totals struct {
	Subtotal              Money `json:"subtotal"`
	Shipping              Money `json:"shipping"`
	Tax                   Money `json:"tax"`
	Total                 Money `json:"total"`
	FreeShippingRemaining Money `json:"free_shipping_remaining"`
}

// ComputeTotals prices lines: shipping is free from FreeShippingThreshold up,
// tax is TaxRate of the subtotal, and every component is rounded to cents.
// An empty set of lines carries no charges at all; any non-empty set below the
// threshold pays ShippingFee, even when its subtotal rounds to zero.
func ComputeTotals(lines []Line) Totals {
	subtotal := Zero()
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	subtotal = subtotal.Round()

	remaining := Max(FreeShippingThreshold.Sub(subtotal), Zero())

	if len(lines) == 0 {
		return Totals{
			Subtotal:              Zero(),
			Shipping:              Zero(),
			Tax:                   Zero(),
			Total:                 Zero(),
			FreeShippingRemaining: remaining,
		}
	}

	shipping := ShippingFee
	if subtotal.Cmp(FreeShippingThreshold) >= 0 {
		shipping = Zero()
	}
	tax := subtotal.MulRat(TaxRate).Round()

	return Totals{
		Subtotal:              subtotal,
		Shipping:              shipping,
		Tax:                   tax,
		Total:                 subtotal.Add(shipping).Add(tax),
		FreeShippingRemaining: remaining,
	}
}
