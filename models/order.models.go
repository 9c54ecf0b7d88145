package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderLineItem is a snapshot of a purchased variant. Prices are captured at
// order-creation time and never recomputed from the live catalog, so
// historical orders stay immutable regardless of later price changes.
type OrderLineItem struct {
	ProductID       primitive.ObjectID `bson:"product_id" json:"product_id"`
	VariantID       primitive.ObjectID `bson:"variant_id" json:"variant_id"`
	Name            string             `bson:"name" json:"name"`
	VariantName     string             `bson:"variant_name" json:"variant_name"`
	VariantColor    string             `bson:"variant_color" json:"variant_color"`
	VariantImg      string             `bson:"variant_img" json:"variant_img"`
	Price           float64            `bson:"price" json:"price"`
	SalePrice       *float64           `bson:"sale_price,omitempty" json:"sale_price,omitempty"`
	DiscountedPrice *float64           `bson:"discounted_price,omitempty" json:"discounted_price,omitempty"`
	Quantity        int                `bson:"quantity" json:"quantity"`
}

// EffectivePrice is the unit price the line is charged at:
// discounted price if a promo applied, else sale price, else base price.
func (it OrderLineItem) EffectivePrice() float64 {
	if it.DiscountedPrice != nil {
		return *it.DiscountedPrice
	}
	if it.SalePrice != nil {
		return *it.SalePrice
	}
	return it.Price
}

// Order is the central aggregate. It is created pending when checkout is
// initiated and mutated only by the webhook processor and the status
// transition table. Orders are never deleted; archiving is a flag.
type Order struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CustomOrderID       string             `bson:"custom_order_id" json:"custom_order_id"`
	UserID              primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email               string             `bson:"email" json:"email"`
	Items               []OrderLineItem    `bson:"items" json:"items"`
	TotalAmount         float64            `bson:"total_amount" json:"total_amount"`
	OriginalTotalAmount float64            `bson:"original_total_amount" json:"original_total_amount"`
	DiscountAmount      float64            `bson:"discount_amount" json:"discount_amount"`
	ShippingCost        float64            `bson:"shipping_cost" json:"shipping_cost"`
	ShippingOption      string             `bson:"shipping_option" json:"shipping_option"`
	ShippingAddress     Address            `bson:"shipping_address" json:"shipping_address"`
	PromoCode           string             `bson:"promo_code,omitempty" json:"promo_code,omitempty"`
	Status              OrderStatus        `bson:"status" json:"status"`
	PaymentStatus       bool               `bson:"payment_status" json:"payment_status"`
	Fulfilled           bool               `bson:"fulfilled" json:"fulfilled"`
	SessionID           string             `bson:"session_id" json:"session_id"`
	SessionURL          string             `bson:"session_url" json:"session_url"`
	TrackingNo          string             `bson:"tracking_no,omitempty" json:"tracking_no,omitempty"`
	TrackingLink        string             `bson:"tracking_link,omitempty" json:"tracking_link,omitempty"`
	ReceiptLink         string             `bson:"receipt_link,omitempty" json:"receipt_link,omitempty"`
	Archived            bool               `bson:"archived" json:"archived"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
}
