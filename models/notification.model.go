package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification statuses
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is a fire-and-forget side effect of order state transitions,
// shown in the admin back-office
type Notification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID       primitive.ObjectID `bson:"order_id" json:"order_id"`
	CustomOrderID string             `bson:"custom_order_id" json:"custom_order_id"`
	Type          string             `bson:"type" json:"type"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
