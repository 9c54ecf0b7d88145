package checkout

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camshop-backend/models"
)

// CatalogStore resolves live catalog data and adjusts stock
type CatalogStore interface {
	Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Sale(ctx context.Context, id primitive.ObjectID) (*models.Sale, error)
	// DecrementStock subtracts qty from the variant's stock. The update is
	// conditional on sufficient stock so the counter can never go negative.
	DecrementStock(ctx context.Context, productID, variantID primitive.ObjectID, qty int) error
}

// CartStore reads and clears a user's cart
type CartStore interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// OrderStore persists and mutates orders. Lookups return (nil, nil) when
// no order matches.
type OrderStore interface {
	FindByCustomID(ctx context.Context, customID string) (*models.Order, error)
	CustomIDExists(ctx context.Context, customID string) (bool, error)
	Insert(ctx context.Context, o *models.Order) error
	SetSession(ctx context.Context, customID, sessionID, sessionURL string) error
	// ConfirmPayment marks the order paid: status ordered, paymentStatus
	// true, receipt link set.
	ConfirmPayment(ctx context.Context, customID, receiptURL string) error
	// SetPaidAmount records the provider's authoritative total and clears
	// the session URL.
	SetPaidAmount(ctx context.Context, customID string, total float64) error
	MarkPaymentFailed(ctx context.Context, customID string) error
}

// PromoStore resolves promo codes and keeps the per-user usage ledger
type PromoStore interface {
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
	HasUsed(ctx context.Context, userID primitive.ObjectID, code string) (bool, error)
	// RecordUse appends the code to the user's ledger. It returns false
	// when the code was already recorded, making redelivery a no-op.
	RecordUse(ctx context.Context, userID primitive.ObjectID, code string) (bool, error)
	// IncrementUsage bumps the code's usage counter, conditional on the
	// usage limit when one is set.
	IncrementUsage(ctx context.Context, code string) error
}

// PaymentStore appends charge ledger rows
type PaymentStore interface {
	// InsertCharge returns false when a row for the charge id already
	// exists (the idempotency gate for charge processing).
	InsertCharge(ctx context.Context, p *models.Payment) (bool, error)
}

// NotificationStore writes back-office notifications
type NotificationStore interface {
	Add(ctx context.Context, n *models.Notification) error
	UnreadCount(ctx context.Context) (int64, error)
}

// UserStore appends order references to a user's history
type UserStore interface {
	AppendOrder(ctx context.Context, userID, orderID primitive.ObjectID) error
}

// Broadcaster pushes best-effort events to connected admin clients.
// Delivery is not required for order correctness.
type Broadcaster interface {
	Emit(event string, payload interface{})
}

// Mailer sends customer-facing order mail, fire-and-forget
type Mailer interface {
	SendOrderConfirmation(toEmail string, order *models.Order) error
}

// SessionLine is one provider line item, priced in minor units
type SessionLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest describes a hosted checkout session to create. The
// metadata fields are attached to both the session and its payment intent
// so webhook events can be correlated back to the order.
type SessionRequest struct {
	CustomOrderID  string
	UserID         string
	Email          string
	PromoCode      string
	ShippingOption string
	ShippingCost   float64
	Lines          []SessionLine
	IdempotencyKey string
}

// Session is a live hosted payment page bound to one order
type Session struct {
	ID  string
	URL string
}

// SessionProvider wraps the external payment provider
type SessionProvider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	// ExpireSession invalidates a hosted session. Expiring a session that
	// is already gone is treated as success.
	ExpireSession(ctx context.Context, sessionID string) error
}
