package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variant is a purchasable configuration of a product (color/model),
// carrying its own price and stock
type Variant struct {
	VariantID primitive.ObjectID  `bson:"variant_id" json:"variant_id"`
	Name      string              `bson:"name" json:"name"`
	Color     string              `bson:"color" json:"color"`
	Image     string              `bson:"image" json:"image"`
	Price     float64             `bson:"price" json:"price"`
	Stocks    int                 `bson:"stocks" json:"stocks"`
	SaleID    *primitive.ObjectID `bson:"sale_id,omitempty" json:"sale_id,omitempty"`
}

// Product represents a catalog product with its variants
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Brand       string             `bson:"brand" json:"brand"`
	Category    string             `bson:"category" json:"category"`
	Subcategory string             `bson:"subcategory" json:"subcategory"`
	Description string             `bson:"description" json:"description"`
	Variants    []Variant          `bson:"variants" json:"variants"`
	Archived    bool               `bson:"archived" json:"archived"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Variant returns the variant with the given id, or nil if the product
// has no such variant
func (p *Product) Variant(id primitive.ObjectID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].VariantID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// Sale is a time-bounded percentage discount that variants can link to
type Sale struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title              string             `bson:"title" json:"title"`
	DiscountPercentage float64            `bson:"discount_percentage" json:"discount_percentage"`
	StartDate          time.Time          `bson:"start_date" json:"start_date"`
	EndDate            time.Time          `bson:"end_date" json:"end_date"`
	Archived           bool               `bson:"archived" json:"archived"`
}

// ActiveAt reports whether the sale applies at the given time
func (s *Sale) ActiveAt(now time.Time) bool {
	if s.Archived {
		return false
	}
	return !now.Before(s.StartDate) && !now.After(s.EndDate)
}
