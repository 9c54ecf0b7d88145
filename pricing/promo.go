package pricing

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camshop-backend/models"
)

var (
	ErrInvalidCode  = errors.New("invalid promo code")
	ErrLimitReached = errors.New("promo code usage limit reached")
	ErrExpired      = errors.New("promo code expired")
	ErrBelowMinimum = errors.New("cart total is below the promo code minimum")
	ErrAlreadyUsed  = errors.New("promo code already used")
)

// Line is the resolved snapshot a cart line prices from. SalePrice is set
// only when an active sale covers the variant.
type Line struct {
	ProductID   primitive.ObjectID
	VariantID   primitive.ObjectID
	Category    string
	Subcategory string
	Brand       string
	Price       float64
	SalePrice   *float64
	Quantity    int
}

// UnitPrice is the sale price when present, else the base variant price
func (l Line) UnitPrice() float64 {
	if l.SalePrice != nil {
		return *l.SalePrice
	}
	return l.Price
}

// DiscountedItem carries the promo-discounted unit price for one line
type DiscountedItem struct {
	ProductID       primitive.ObjectID
	VariantID       primitive.ObjectID
	DiscountedPrice float64
}

// Result is the outcome of evaluating a promo code against a cart.
// Exactly one of DiscountedItems (percentage codes) or FixedDiscount
// (fixed codes) is populated.
type Result struct {
	DiscountedItems []DiscountedItem
	FixedDiscount   float64
	TotalPrice      float64
}

// Evaluate validates a promo code against the cart and computes its effect.
// It never mutates usage counters; usage accounting happens only on
// confirmed payment, so abandoned checkouts cannot inflate the count.
//
// Validation order: usage limit, active window, minimum order value
// (against the sale-priced total), per-user reuse. The caller resolves the
// code itself and reports a missing one as ErrInvalidCode.
func Evaluate(promo models.PromoCode, lines []Line, alreadyUsed bool, now time.Time) (Result, error) {
	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return Result{}, ErrLimitReached
	}
	if now.Before(promo.StartDate) {
		return Result{}, ErrExpired
	}
	if promo.EndDate != nil && now.After(*promo.EndDate) {
		return Result{}, ErrExpired
	}

	total := 0.0
	for _, l := range lines {
		total += l.UnitPrice() * float64(l.Quantity)
	}
	total = RoundCents(total)

	if total < promo.MinimumOrderValue {
		return Result{}, ErrBelowMinimum
	}
	if alreadyUsed {
		return Result{}, ErrAlreadyUsed
	}

	switch promo.Type {
	case models.PromoTypeFixed:
		discounted := RoundCents(total - promo.Value)
		if discounted < 0 {
			discounted = 0
		}
		return Result{FixedDiscount: promo.Value, TotalPrice: discounted}, nil
	case models.PromoTypePercentage:
		return evaluatePercentage(promo, lines), nil
	default:
		return Result{}, ErrInvalidCode
	}
}

func evaluatePercentage(promo models.PromoCode, lines []Line) Result {
	var res Result
	total := 0.0
	for _, l := range lines {
		unit := l.UnitPrice()
		if len(promo.Keywords) == 0 || matchesKeywords(l, promo.Keywords) {
			// Percentage discounts apply against the base variant
			// price, not the sale price.
			unit = RoundCents(l.Price * (1 - promo.Value/100))
			if unit < 0 {
				unit = 0
			}
			res.DiscountedItems = append(res.DiscountedItems, DiscountedItem{
				ProductID:       l.ProductID,
				VariantID:       l.VariantID,
				DiscountedPrice: unit,
			})
		}
		total += unit * float64(l.Quantity)
	}
	res.TotalPrice = RoundCents(total)
	return res
}

// matchesKeywords does a case-sensitive exact match against the line's
// category, brand and subcategory, matching the stored keyword strings
// as-is.
func matchesKeywords(l Line, keywords []string) bool {
	for _, k := range keywords {
		if l.Category == k || l.Brand == k || l.Subcategory == k {
			return true
		}
	}
	return false
}
