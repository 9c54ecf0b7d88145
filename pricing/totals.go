package pricing

import (
	"math"

	"camshop-backend/models"
)

// RoundCents rounds a monetary amount to two decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Cents converts a monetary amount to integer minor units for the
// payment provider
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Totals computes the undiscounted and effective totals for an order's
// line items. The effective total uses the
// discountedPrice -> salePrice -> price precedence per line.
func Totals(items []models.OrderLineItem) (original, total float64) {
	for _, it := range items {
		original += it.Price * float64(it.Quantity)
		total += it.EffectivePrice() * float64(it.Quantity)
	}
	return RoundCents(original), RoundCents(total)
}
