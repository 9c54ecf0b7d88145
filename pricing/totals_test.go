package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"camshop-backend/models"
)

func TestTotalsNoDiscounts(t *testing.T) {
	original, total := Totals([]models.OrderLineItem{
		{Price: 50, Quantity: 2},
	})
	assert.Equal(t, 100.0, original)
	assert.Equal(t, 100.0, total)
}

func TestTotalsPricePrecedence(t *testing.T) {
	sale := 80.0
	discounted := 60.0
	original, total := Totals([]models.OrderLineItem{
		{Price: 100, Quantity: 1},
		{Price: 100, SalePrice: &sale, Quantity: 1},
		{Price: 100, SalePrice: &sale, DiscountedPrice: &discounted, Quantity: 1},
	})
	assert.Equal(t, 300.0, original)
	assert.Equal(t, 240.0, total)
}

func TestTotalsRounding(t *testing.T) {
	sale := 33.33
	_, total := Totals([]models.OrderLineItem{
		{Price: 40, SalePrice: &sale, Quantity: 3},
	})
	assert.InDelta(t, 99.99, total, 0.001)
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1999), Cents(19.99))
	assert.Equal(t, int64(100), Cents(0.999999))
}
