package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"camshop-backend/models"
)

type processorFixture struct {
	orders        *fakeOrders
	catalog       *fakeCatalog
	promos        *fakePromos
	payments      *fakePayments
	notifications *fakeNotifications
	broadcaster   *fakeBroadcaster
	proc          *Processor
}

func newProcessorFixture() *processorFixture {
	f := &processorFixture{
		orders:        newFakeOrders(),
		catalog:       newFakeCatalog(),
		promos:        newFakePromos(),
		payments:      newFakePayments(),
		notifications: &fakeNotifications{},
		broadcaster:   &fakeBroadcaster{},
	}
	f.proc = NewProcessor(f.orders, f.catalog, f.promos, f.payments, f.notifications, f.broadcaster, nil)
	return f
}

// seedOrder registers a pending order whose single line references a
// catalog product with the given stock
func (f *processorFixture) seedOrder(customID string, qty, stocks int) *models.Order {
	productID, variantID := catalogProduct(f.catalog, "Lens", "Canon", 50, stocks)
	o := &models.Order{
		ID:            primitive.NewObjectID(),
		CustomOrderID: customID,
		UserID:        primitive.NewObjectID(),
		Email:         "buyer@example.com",
		Items: []models.OrderLineItem{{
			ProductID: productID,
			VariantID: variantID,
			Name:      "Canon Lens",
			Price:     50,
			Quantity:  qty,
		}},
		TotalAmount: 50 * float64(qty),
		Status:      models.StatusPending,
		SessionID:   "cs_live",
		SessionURL:  "https://pay.example.com/cs_live",
	}
	f.orders.byCustomID[customID] = o
	return o
}

func TestChargeSucceededMarksOrderPaid(t *testing.T) {
	f := newProcessorFixture()
	o := f.seedOrder("CMSHP2024XYZ001", 2, 10)

	err := f.proc.HandleChargeSucceeded(context.Background(), ChargeSucceededEvent{
		ChargeID:      "ch_1",
		CustomOrderID: o.CustomOrderID,
		Amount:        8000,
		ReceiptURL:    "https://receipts.example.com/ch_1",
	})
	require.NoError(t, err)

	stored := f.orders.byCustomID[o.CustomOrderID]
	assert.Equal(t, models.StatusOrdered, stored.Status)
	assert.True(t, stored.PaymentStatus)
	assert.Equal(t, "https://receipts.example.com/ch_1", stored.ReceiptLink)

	// Stock decremented once per line item.
	require.Len(t, f.catalog.decrements, 1)
	assert.Equal(t, 2, f.catalog.decrements[0].qty)
	assert.Equal(t, 8, f.catalog.products[o.Items[0].ProductID].Variants[0].Stocks)

	// Ledger row, notification and fan-out.
	require.Len(t, f.payments.rows, 1)
	assert.Equal(t, 80.0, f.payments.rows["ch_1"].Amount)
	require.Len(t, f.notifications.rows, 1)
	assert.Equal(t, models.NotificationUnread, f.notifications.rows[0].Status)
	assert.Equal(t, []string{EventNewOrder, EventUnreadCount}, f.broadcaster.events)
}

func TestChargeSucceededDeliveredTwice(t *testing.T) {
	f := newProcessorFixture()
	o := f.seedOrder("CMSHP2024XYZ002", 2, 10)

	ev := ChargeSucceededEvent{
		ChargeID:      "ch_dup",
		CustomOrderID: o.CustomOrderID,
		Amount:        10000,
		ReceiptURL:    "https://receipts.example.com/ch_dup",
	}
	require.NoError(t, f.proc.HandleChargeSucceeded(context.Background(), ev))
	require.NoError(t, f.proc.HandleChargeSucceeded(context.Background(), ev))

	// Exactly one ledger row and a single stock decrement per line.
	assert.Len(t, f.payments.rows, 1)
	assert.Len(t, f.catalog.decrements, 1)
	assert.Equal(t, 8, f.catalog.products[o.Items[0].ProductID].Variants[0].Stocks)
	assert.Len(t, f.notifications.rows, 1)
}

func TestChargeSucceededRedeliveryAfterConfirmFailure(t *testing.T) {
	f := newProcessorFixture()
	o := f.seedOrder("CMSHP2024XYZ010", 2, 10)
	f.orders.confirmErr = errors.New("write timeout")

	ev := ChargeSucceededEvent{
		ChargeID:      "ch_retry",
		CustomOrderID: o.CustomOrderID,
		Amount:        10000,
		ReceiptURL:    "https://receipts.example.com/ch_retry",
	}

	// First delivery writes the ledger row, then fails confirming the
	// order; the provider sees an error and redelivers.
	require.Error(t, f.proc.HandleChargeSucceeded(context.Background(), ev))
	require.Len(t, f.payments.rows, 1)
	assert.False(t, f.orders.byCustomID[o.CustomOrderID].PaymentStatus)
	assert.Empty(t, f.catalog.decrements)

	// The redelivery finds the row but an unpaid order, and resumes the
	// remaining effects.
	require.NoError(t, f.proc.HandleChargeSucceeded(context.Background(), ev))

	stored := f.orders.byCustomID[o.CustomOrderID]
	assert.Equal(t, models.StatusOrdered, stored.Status)
	assert.True(t, stored.PaymentStatus)
	assert.Equal(t, "https://receipts.example.com/ch_retry", stored.ReceiptLink)
	assert.Len(t, f.payments.rows, 1)
	require.Len(t, f.catalog.decrements, 1)
	assert.Equal(t, 8, f.catalog.products[o.Items[0].ProductID].Variants[0].Stocks)
	assert.Len(t, f.notifications.rows, 1)
}

func TestChargeSucceededUnknownOrderDropped(t *testing.T) {
	f := newProcessorFixture()

	err := f.proc.HandleChargeSucceeded(context.Background(), ChargeSucceededEvent{
		ChargeID:      "ch_orphan",
		CustomOrderID: "CMSHP2024GHOST",
		Amount:        100,
	})
	require.NoError(t, err)
	assert.Empty(t, f.payments.rows)
	assert.Empty(t, f.catalog.decrements)
}

func TestChargeSucceededMissingCorrelationIDDropped(t *testing.T) {
	f := newProcessorFixture()
	err := f.proc.HandleChargeSucceeded(context.Background(), ChargeSucceededEvent{ChargeID: "ch_nometa"})
	require.NoError(t, err)
	assert.Empty(t, f.payments.rows)
}

func TestChargeSucceededStockNeverNegative(t *testing.T) {
	f := newProcessorFixture()
	o := f.seedOrder("CMSHP2024XYZ003", 5, 3)

	err := f.proc.HandleChargeSucceeded(context.Background(), ChargeSucceededEvent{
		ChargeID:      "ch_short",
		CustomOrderID: o.CustomOrderID,
		Amount:        25000,
	})
	// Payment stays recorded; the failed decrement is an operational
	// follow-up, not a delivery failure.
	require.NoError(t, err)
	assert.Len(t, f.payments.rows, 1)
	assert.Equal(t, 3, f.catalog.products[o.Items[0].ProductID].Variants[0].Stocks)
}

func TestSessionCompletedSetsAuthoritativeTotal(t *testing.T) {
	f := newProcessorFixture()
	o := f.seedOrder("CMSHP2024XYZ004", 2, 10)

	err := f.proc.HandleSessionCompleted(context.Background(), SessionCompletedEvent{
		SessionID:     "cs_live",
		CustomOrderID: o.CustomOrderID,
		AmountTotal:   10999,
	})
	require.NoError(t, err)

	stored := f.orders.byCustomID[o.CustomOrderID]
	assert.Equal(t, 109.99, stored.TotalAmount)
	assert.Empty(t, stored.SessionURL)
}

func TestSessionCompletedRecordsPromoUseOnce(t *testing.T) {
	f := newProcessorFixture()
	o := f.seedOrder("CMSHP2024XYZ005", 1, 10)
	limit := 10
	f.promos.codes["SUMMER"] = &models.PromoCode{Code: "SUMMER", UsageLimit: &limit}

	ev := SessionCompletedEvent{
		SessionID:     "cs_live",
		CustomOrderID: o.CustomOrderID,
		PromoCode:     "SUMMER",
		AmountTotal:   5000,
	}
	require.NoError(t, f.proc.HandleSessionCompleted(context.Background(), ev))
	require.NoError(t, f.proc.HandleSessionCompleted(context.Background(), ev))

	assert.Equal(t, 1, f.promos.codes["SUMMER"].UsageCount)
	assert.True(t, f.promos.used[o.UserID.Hex()]["SUMMER"])
}

func TestSessionCompletedUsageNeverExceedsLimit(t *testing.T) {
	f := newProcessorFixture()
	limit := 2
	f.promos.codes["SCARCE"] = &models.PromoCode{Code: "SCARCE", UsageLimit: &limit, UsageCount: 2}
	o := f.seedOrder("CMSHP2024XYZ006", 1, 10)

	// A confirmation beyond the limit must not push the counter past it.
	err := f.proc.HandleSessionCompleted(context.Background(), SessionCompletedEvent{
		SessionID:     "cs_live",
		CustomOrderID: o.CustomOrderID,
		PromoCode:     "SCARCE",
		AmountTotal:   5000,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.promos.codes["SCARCE"].UsageCount)
}

func TestSessionCompletedUnknownOrderDropped(t *testing.T) {
	f := newProcessorFixture()
	err := f.proc.HandleSessionCompleted(context.Background(), SessionCompletedEvent{
		SessionID:     "cs_ghost",
		CustomOrderID: "CMSHP2024GHOST",
		AmountTotal:   100,
	})
	require.NoError(t, err)
}

func TestSessionExpiredMarksPendingOrderFailed(t *testing.T) {
	f := newProcessorFixture()
	o := f.seedOrder("CMSHP2024XYZ007", 1, 10)

	err := f.proc.HandleSessionExpired(context.Background(), SessionExpiredEvent{CustomOrderID: o.CustomOrderID})
	require.NoError(t, err)

	stored := f.orders.byCustomID[o.CustomOrderID]
	assert.Equal(t, models.StatusPaymentFailed, stored.Status)
	assert.Empty(t, stored.SessionURL)
}

func TestSessionExpiredLeavesPaidOrderAlone(t *testing.T) {
	f := newProcessorFixture()
	o := f.seedOrder("CMSHP2024XYZ008", 1, 10)
	f.orders.byCustomID[o.CustomOrderID].Status = models.StatusOrdered
	f.orders.byCustomID[o.CustomOrderID].PaymentStatus = true

	err := f.proc.HandleSessionExpired(context.Background(), SessionExpiredEvent{CustomOrderID: o.CustomOrderID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOrdered, f.orders.byCustomID[o.CustomOrderID].Status)
}
