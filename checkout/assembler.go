package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"camshop-backend/models"
	"camshop-backend/pricing"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNothingInStock  = errors.New("no cart item is in stock")
	ErrBadShipping     = errors.New("unknown shipping option")
	ErrSessionCreation = errors.New("could not create a payment session")
)

// Shipping rates by option name
var shippingRates = map[string]float64{
	"standard": 9.99,
	"express":  24.99,
	"pickup":   0,
}

// Assembler builds immutable pending orders from carts and binds them to a
// hosted payment session
type Assembler struct {
	catalog  CatalogStore
	carts    CartStore
	orders   OrderStore
	promos   PromoStore
	users    UserStore
	sessions SessionProvider
}

func NewAssembler(catalog CatalogStore, carts CartStore, orders OrderStore, promos PromoStore, users UserStore, sessions SessionProvider) *Assembler {
	return &Assembler{
		catalog:  catalog,
		carts:    carts,
		orders:   orders,
		promos:   promos,
		users:    users,
		sessions: sessions,
	}
}

// CreateOrder assembles a pending order from the user's cart. The payment
// session is created before the order is persisted: if the provider call
// fails nothing has been written and the cart is untouched, so no
// charge-able order without a usable session can exist. If persisting the
// order fails afterwards the session is expired as a compensating action.
func (a *Assembler) CreateOrder(ctx context.Context, userID primitive.ObjectID, email string, address models.Address, shippingOption, promoCode string) (*models.Order, error) {
	shippingCost, ok := shippingRates[shippingOption]
	if !ok {
		return nil, ErrBadShipping
	}

	cart, err := a.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	lines, items, err := ResolveLines(ctx, a.catalog, cart.Items, now)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNothingInStock
	}

	var fixedDiscount float64
	if promoCode != "" {
		res, err := a.evaluatePromo(ctx, promoCode, lines, userID, now)
		if err != nil {
			return nil, err
		}
		applyDiscounts(items, res.DiscountedItems)
		fixedDiscount = res.FixedDiscount
	}

	original, total := pricing.Totals(items)
	discount := pricing.RoundCents(original - total)
	if fixedDiscount > 0 {
		total = pricing.RoundCents(total - fixedDiscount)
		if total < 0 {
			total = 0
		}
		discount = fixedDiscount
	}

	customID, err := uniqueOrderID(ctx, a.orders, now)
	if err != nil {
		return nil, err
	}

	session, err := a.sessions.CreateSession(ctx, SessionRequest{
		CustomOrderID:  customID,
		UserID:         userID.Hex(),
		Email:          email,
		PromoCode:      promoCode,
		ShippingOption: shippingOption,
		ShippingCost:   shippingCost,
		Lines:          sessionLines(items, fixedDiscount, total),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}
	if session.URL == "" {
		return nil, ErrSessionCreation
	}

	order := &models.Order{
		CustomOrderID:       customID,
		UserID:              userID,
		Email:               email,
		Items:               items,
		TotalAmount:         total,
		OriginalTotalAmount: original,
		DiscountAmount:      discount,
		ShippingCost:        shippingCost,
		ShippingOption:      shippingOption,
		ShippingAddress:     address,
		PromoCode:           promoCode,
		Status:              models.StatusPending,
		SessionID:           session.ID,
		SessionURL:          session.URL,
		CreatedAt:           now,
	}
	if err := a.orders.Insert(ctx, order); err != nil {
		if expireErr := a.sessions.ExpireSession(ctx, session.ID); expireErr != nil {
			log.Printf("checkout: could not expire session %s after failed insert: %v", session.ID, expireErr)
		}
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if err := a.carts.Clear(ctx, userID); err != nil {
		log.Printf("checkout: could not clear cart for user %s: %v", userID.Hex(), err)
	}
	if err := a.users.AppendOrder(ctx, userID, order.ID); err != nil {
		log.Printf("checkout: could not append order %s to user history: %v", customID, err)
	}

	return order, nil
}

// EvaluatePromo runs the promo evaluator against the user's current cart
// without touching any state. Used for the cart preview endpoint.
func (a *Assembler) EvaluatePromo(ctx context.Context, userID primitive.ObjectID, promoCode string) (pricing.Result, error) {
	cart, err := a.carts.Get(ctx, userID)
	if err != nil {
		return pricing.Result{}, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return pricing.Result{}, ErrEmptyCart
	}
	now := time.Now()
	lines, _, err := ResolveLines(ctx, a.catalog, cart.Items, now)
	if err != nil {
		return pricing.Result{}, err
	}
	if len(lines) == 0 {
		return pricing.Result{}, ErrNothingInStock
	}
	return a.evaluatePromo(ctx, promoCode, lines, userID, now)
}

func (a *Assembler) evaluatePromo(ctx context.Context, code string, lines []pricing.Line, userID primitive.ObjectID, now time.Time) (pricing.Result, error) {
	promo, err := a.promos.FindByCode(ctx, code)
	if err != nil {
		return pricing.Result{}, fmt.Errorf("resolve promo code: %w", err)
	}
	if promo == nil {
		return pricing.Result{}, pricing.ErrInvalidCode
	}
	used, err := a.promos.HasUsed(ctx, userID, code)
	if err != nil {
		return pricing.Result{}, fmt.Errorf("check promo usage: %w", err)
	}
	return pricing.Evaluate(*promo, lines, used, now)
}

func applyDiscounts(items []models.OrderLineItem, discounted []pricing.DiscountedItem) {
	for _, d := range discounted {
		for i := range items {
			if items[i].ProductID == d.ProductID && items[i].VariantID == d.VariantID {
				price := d.DiscountedPrice
				items[i].DiscountedPrice = &price
			}
		}
	}
}

// sessionLines converts the order's line items to provider line items in
// minor units. A fixed discount has no per-line representation, so in that
// case the whole cart collapses into a single discounted line; shipping is
// always its own line.
func sessionLines(items []models.OrderLineItem, fixedDiscount, total float64) []SessionLine {
	if fixedDiscount > 0 {
		return []SessionLine{{
			Name:       "Order total (promo applied)",
			UnitAmount: pricing.Cents(total),
			Quantity:   1,
		}}
	}
	lines := make([]SessionLine, 0, len(items))
	for _, it := range items {
		name := it.Name
		if it.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", it.Name, it.VariantName)
		}
		lines = append(lines, SessionLine{
			Name:       name,
			UnitAmount: pricing.Cents(it.EffectivePrice()),
			Quantity:   int64(it.Quantity),
		})
	}
	return lines
}
