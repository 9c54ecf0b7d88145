package checkout

import (
	"context"
	"log"
	"time"

	"camshop-backend/models"
	"camshop-backend/pricing"
)

// Broadcast event names consumed by the admin back-office
const (
	EventNewOrder    = "new-order"
	EventUnreadCount = "unread-count"
)

// SessionCompletedEvent is the parsed checkout.session.completed payload
type SessionCompletedEvent struct {
	SessionID     string
	CustomOrderID string
	PromoCode     string
	AmountTotal   int64 // minor units
}

// ChargeSucceededEvent is the parsed charge.succeeded payload
type ChargeSucceededEvent struct {
	ChargeID      string
	CustomOrderID string
	Amount        int64 // minor units
	ReceiptURL    string
}

// SessionExpiredEvent is the parsed checkout.session.expired payload
type SessionExpiredEvent struct {
	CustomOrderID string
}

// Processor consumes asynchronous payment-provider callbacks. Deliveries
// may arrive out of order or duplicated, so every handler is idempotent:
// the per-order lock serializes concurrent deliveries and ledger writes
// gate repeated ones. Events that cannot be correlated to an order are
// dropped silently so the provider stops redelivering them.
type Processor struct {
	orders        OrderStore
	catalog       CatalogStore
	promos        PromoStore
	payments      PaymentStore
	notifications NotificationStore
	broadcaster   Broadcaster
	mailer        Mailer
	locks         *keyedMutex
}

func NewProcessor(orders OrderStore, catalog CatalogStore, promos PromoStore, payments PaymentStore, notifications NotificationStore, broadcaster Broadcaster, mailer Mailer) *Processor {
	return &Processor{
		orders:        orders,
		catalog:       catalog,
		promos:        promos,
		payments:      payments,
		notifications: notifications,
		broadcaster:   broadcaster,
		mailer:        mailer,
		locks:         newKeyedMutex(),
	}
}

// HandleSessionCompleted applies promo-usage bookkeeping exactly once and
// records the provider's authoritative total on the order.
func (p *Processor) HandleSessionCompleted(ctx context.Context, ev SessionCompletedEvent) error {
	if ev.CustomOrderID == "" {
		log.Printf("webhook: session completed without order metadata, dropping")
		return nil
	}
	unlock := p.locks.Lock(ev.CustomOrderID)
	defer unlock()

	order, err := p.orders.FindByCustomID(ctx, ev.CustomOrderID)
	if err != nil {
		return err
	}
	if order == nil {
		log.Printf("webhook: session completed for unknown order %s, dropping", ev.CustomOrderID)
		return nil
	}

	if ev.PromoCode != "" {
		// The ledger append is the exactly-once gate: the usage counter
		// moves only when this delivery actually added the code.
		added, err := p.promos.RecordUse(ctx, order.UserID, ev.PromoCode)
		if err != nil {
			return err
		}
		if added {
			if err := p.promos.IncrementUsage(ctx, ev.PromoCode); err != nil {
				return err
			}
		}
	}

	return p.orders.SetPaidAmount(ctx, ev.CustomOrderID, pricing.RoundCents(float64(ev.AmountTotal)/100))
}

// HandleChargeSucceeded marks the order paid and applies the stock,
// ledger, notification and fan-out side effects. The Payment insert gates
// duplicate deliveries, but only together with the order's payment flag: a
// redelivery whose ledger row already exists while the order is still
// unpaid means the prior delivery failed partway, so the remaining effects
// are resumed instead of skipped. Deliveries that find the order already
// paid return before any mutation.
func (p *Processor) HandleChargeSucceeded(ctx context.Context, ev ChargeSucceededEvent) error {
	if ev.CustomOrderID == "" {
		log.Printf("webhook: charge %s without order metadata, dropping", ev.ChargeID)
		return nil
	}
	unlock := p.locks.Lock(ev.CustomOrderID)
	defer unlock()

	order, err := p.orders.FindByCustomID(ctx, ev.CustomOrderID)
	if err != nil {
		return err
	}
	if order == nil {
		log.Printf("webhook: charge %s for unknown order %s, dropping", ev.ChargeID, ev.CustomOrderID)
		return nil
	}

	inserted, err := p.payments.InsertCharge(ctx, &models.Payment{
		StripePaymentID: ev.ChargeID,
		OrderID:         order.ID,
		CustomOrderID:   order.CustomOrderID,
		UserID:          order.UserID,
		Amount:          pricing.RoundCents(float64(ev.Amount) / 100),
		TotalAmount:     order.TotalAmount,
		PaymentStatus:   "succeeded",
		ReceiptURL:      ev.ReceiptURL,
		Created:         time.Now(),
	})
	if err != nil {
		return err
	}
	if !inserted && order.PaymentStatus {
		// The prior delivery completed; nothing left to do.
		return nil
	}

	if err := p.orders.ConfirmPayment(ctx, ev.CustomOrderID, ev.ReceiptURL); err != nil {
		return err
	}

	for _, it := range order.Items {
		if err := p.catalog.DecrementStock(ctx, it.ProductID, it.VariantID, it.Quantity); err != nil {
			// Stock drift is an operational follow-up, not a reason to
			// fail the delivery after payment is recorded.
			log.Printf("webhook: stock decrement for order %s variant %s: %v", ev.CustomOrderID, it.VariantID.Hex(), err)
		}
	}

	notification := &models.Notification{
		OrderID:       order.ID,
		CustomOrderID: order.CustomOrderID,
		Type:          EventNewOrder,
		Status:        models.NotificationUnread,
		CreatedAt:     time.Now(),
	}
	if err := p.notifications.Add(ctx, notification); err != nil {
		log.Printf("webhook: notification for order %s: %v", ev.CustomOrderID, err)
	}

	if p.broadcaster != nil {
		p.broadcaster.Emit(EventNewOrder, map[string]interface{}{
			"custom_order_id": order.CustomOrderID,
			"total_amount":    order.TotalAmount,
		})
		if count, err := p.notifications.UnreadCount(ctx); err == nil {
			p.broadcaster.Emit(EventUnreadCount, count)
		}
	}

	if p.mailer != nil {
		confirmed := *order
		confirmed.Status = models.StatusOrdered
		confirmed.PaymentStatus = true
		confirmed.ReceiptLink = ev.ReceiptURL
		go func() {
			if err := p.mailer.SendOrderConfirmation(confirmed.Email, &confirmed); err != nil {
				log.Printf("webhook: confirmation mail for order %s: %v", confirmed.CustomOrderID, err)
			}
		}()
	}

	return nil
}

// HandleSessionExpired marks a still-pending unpaid order as payment
// failed and drops its dead session URL.
func (p *Processor) HandleSessionExpired(ctx context.Context, ev SessionExpiredEvent) error {
	if ev.CustomOrderID == "" {
		return nil
	}
	unlock := p.locks.Lock(ev.CustomOrderID)
	defer unlock()

	order, err := p.orders.FindByCustomID(ctx, ev.CustomOrderID)
	if err != nil {
		return err
	}
	if order == nil || order.PaymentStatus || order.Status != models.StatusPending {
		return nil
	}
	return p.orders.MarkPaymentFailed(ctx, ev.CustomOrderID)
}
