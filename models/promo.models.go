package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Promo code types
const (
	PromoTypePercentage = "percentage"
	PromoTypeFixed      = "fixed"
)

// PromoCode is a discount rule applied at checkout. Percentage codes with
// keywords discount only lines whose category/brand/subcategory matches a
// keyword exactly (case-sensitive); fixed codes subtract once from the cart
// total.
type PromoCode struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code              string             `bson:"code" json:"code"`
	Type              string             `bson:"type" json:"type"` // "percentage" or "fixed"
	Value             float64            `bson:"value" json:"value"`
	StartDate         time.Time          `bson:"start_date" json:"start_date"`
	EndDate           *time.Time         `bson:"end_date,omitempty" json:"end_date,omitempty"`
	MinimumOrderValue float64            `bson:"minimum_order_value" json:"minimum_order_value"`
	UsageLimit        *int               `bson:"usage_limit,omitempty" json:"usage_limit,omitempty"`
	UsageCount        int                `bson:"usage_count" json:"usage_count"`
	Keywords          []string           `bson:"keywords" json:"keywords"`
	Archived          bool               `bson:"archived" json:"archived"`
}

// PromoUsage is the per-user ledger of promo codes already redeemed.
// A code may appear at most once per user.
type PromoUsage struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	PromoCodeUsed []string           `bson:"promo_codes_used" json:"promo_codes_used"`
}
