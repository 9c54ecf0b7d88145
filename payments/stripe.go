// Package payments wraps the Stripe API behind the checkout
// SessionProvider interface.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"camshop-backend/checkout"
	"camshop-backend/pricing"
)

// Metadata keys carried on both the session and its payment intent so
// webhook events can be correlated back to the order
const (
	MetaCustomOrderID = "custom_order_id"
	MetaPromoCode     = "promo_code"
	MetaUserID        = "user_id"
)

// StripeProvider creates and expires hosted checkout sessions
type StripeProvider struct {
	successURL string
	cancelURL  string
}

func NewStripeProvider(apiKey, successURL, cancelURL string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{successURL: successURL, cancelURL: cancelURL}
}

func (p *StripeProvider) CreateSession(ctx context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	metadata := map[string]string{
		MetaCustomOrderID: req.CustomOrderID,
		MetaPromoCode:     req.PromoCode,
		MetaUserID:        req.UserID,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(fmt.Sprintf("%s?order=%s", p.successURL, req.CustomOrderID)),
		CancelURL:     stripe.String(p.cancelURL),
		CustomerEmail: stripe.String(req.Email),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	params.Metadata = metadata
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	for _, line := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}
	if req.ShippingCost > 0 {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(pricing.Cents(req.ShippingCost)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("Shipping (%s)", req.ShippingOption)),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &checkout.Session{ID: s.ID, URL: s.URL}, nil
}

// ExpireSession invalidates a hosted session. Stripe rejects expiry of a
// session that is already expired or missing; both count as the session
// being gone, which is the state we wanted.
func (p *StripeProvider) ExpireSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	_, err := session.Expire(sessionID, params)
	if err == nil {
		return nil
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return nil
		}
	}
	return fmt.Errorf("expire checkout session %s: %w", sessionID, err)
}
