package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is an append-only ledger row, one per successful charge event.
// StripePaymentID carries a unique index so a redelivered charge can never
// produce a second row.
type Payment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StripePaymentID string             `bson:"stripe_payment_id" json:"stripe_payment_id"`
	OrderID         primitive.ObjectID `bson:"order_id" json:"order_id"`
	CustomOrderID   string             `bson:"custom_order_id" json:"custom_order_id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	Amount          float64            `bson:"amount" json:"amount"`
	TotalAmount     float64            `bson:"total_amount" json:"total_amount"`
	PaymentStatus   string             `bson:"payment_status" json:"payment_status"`
	ReceiptURL      string             `bson:"receipt_url" json:"receipt_url"`
	Created         time.Time          `bson:"created" json:"created"`
}
