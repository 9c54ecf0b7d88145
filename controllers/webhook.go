package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"camshop-backend/checkout"
	"camshop-backend/payments"
)

// WebhookController receives Stripe event deliveries. It must be mounted
// outside the auth middleware and must see the raw, unparsed request body:
// signature verification runs over the exact bytes Stripe sent.
type WebhookController struct {
	Processor     *checkout.Processor
	SigningSecret string
}

func NewWebhookController(processor *checkout.Processor, signingSecret string) *WebhookController {
	return &WebhookController{Processor: processor, SigningSecret: signingSecret}
}

// HandleWebhook verifies the delivery signature and dispatches the event.
// Handler errors return 500 so Stripe redelivers; unrecognized event types
// are acknowledged and ignored.
func (wc *WebhookController) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error reading request body")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), wc.SigningSecret)
	if err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed event payload")
			return
		}
		err = wc.Processor.HandleSessionCompleted(ctx, checkout.SessionCompletedEvent{
			SessionID:     session.ID,
			CustomOrderID: session.Metadata[payments.MetaCustomOrderID],
			PromoCode:     session.Metadata[payments.MetaPromoCode],
			AmountTotal:   session.AmountTotal,
		})

	case "charge.succeeded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed event payload")
			return
		}
		err = wc.Processor.HandleChargeSucceeded(ctx, checkout.ChargeSucceededEvent{
			ChargeID:      charge.ID,
			CustomOrderID: charge.Metadata[payments.MetaCustomOrderID],
			Amount:        charge.Amount,
			ReceiptURL:    charge.ReceiptURL,
		})

	case "checkout.session.expired":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed event payload")
			return
		}
		err = wc.Processor.HandleSessionExpired(ctx, checkout.SessionExpiredEvent{
			CustomOrderID: session.Metadata[payments.MetaCustomOrderID],
		})

	default:
		// Not subscribed to this type; acknowledge so Stripe stops sending.
	}

	if err != nil {
		log.Printf("webhook: handling %s: %v", event.Type, err)
		writeError(w, http.StatusInternalServerError, "Error processing event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
