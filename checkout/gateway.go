package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"camshop-backend/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderPaid     = errors.New("order is already paid or being fulfilled")
)

// Gateway manages hosted payment sessions for existing orders
type Gateway struct {
	orders   OrderStore
	sessions SessionProvider
}

func NewGateway(orders OrderStore, sessions SessionProvider) *Gateway {
	return &Gateway{orders: orders, sessions: sessions}
}

// RecreateSession replaces an order's payment session with a fresh one,
// keeping the at-most-one-live-session invariant: any prior session is
// expired before the new one is created. Recreation is rejected once the
// order is paid or in a fulfilment state.
func (g *Gateway) RecreateSession(ctx context.Context, customOrderID string) (*models.Order, error) {
	order, err := g.orders.FindByCustomID(ctx, customOrderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentStatus ||
		order.Status == models.StatusProcessed ||
		order.Status == models.StatusShipped ||
		order.Status == models.StatusDelivered {
		return nil, ErrOrderPaid
	}

	if order.SessionID != "" {
		// A failed expiry must not block the new session; the provider
		// reporting the resource as already gone counts as success.
		if err := g.sessions.ExpireSession(ctx, order.SessionID); err != nil {
			log.Printf("checkout: expire session %s for order %s: %v", order.SessionID, customOrderID, err)
		}
	}

	session, err := g.sessions.CreateSession(ctx, SessionRequest{
		CustomOrderID:  order.CustomOrderID,
		UserID:         order.UserID.Hex(),
		Email:          order.Email,
		PromoCode:      order.PromoCode,
		ShippingOption: order.ShippingOption,
		ShippingCost:   order.ShippingCost,
		Lines:          recreateLines(order),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}

	if err := g.orders.SetSession(ctx, customOrderID, session.ID, session.URL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	order.SessionID = session.ID
	order.SessionURL = session.URL
	return order, nil
}

// recreateLines rebuilds provider line items from the order's captured
// prices. A fixed-discount order keeps its collapsed single-line shape.
func recreateLines(order *models.Order) []SessionLine {
	if order.DiscountAmount > 0 && lineDiscountTotal(order) == 0 {
		return sessionLines(order.Items, order.DiscountAmount, order.TotalAmount)
	}
	return sessionLines(order.Items, 0, order.TotalAmount)
}

func lineDiscountTotal(order *models.Order) int {
	n := 0
	for _, it := range order.Items {
		if it.DiscountedPrice != nil {
			n++
		}
	}
	return n
}
