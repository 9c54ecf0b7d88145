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

func pendingOrder(customID string) *models.Order {
	price := 50.0
	return &models.Order{
		ID:            primitive.NewObjectID(),
		CustomOrderID: customID,
		UserID:        primitive.NewObjectID(),
		Email:         "buyer@example.com",
		Items: []models.OrderLineItem{{
			ProductID: primitive.NewObjectID(),
			VariantID: primitive.NewObjectID(),
			Name:      "Canon Lens",
			Price:     price,
			Quantity:  2,
		}},
		TotalAmount:         100,
		OriginalTotalAmount: 100,
		ShippingOption:      "standard",
		ShippingCost:        9.99,
		Status:              models.StatusPending,
		SessionID:           "cs_old",
		SessionURL:          "https://pay.example.com/cs_old",
	}
}

func TestRecreateSessionNotFound(t *testing.T) {
	g := NewGateway(newFakeOrders(), &fakeSessions{})
	_, err := g.RecreateSession(context.Background(), "CMSHP2024MISSING")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRecreateSessionRejectedWhenPaid(t *testing.T) {
	orders := newFakeOrders()
	o := pendingOrder("CMSHP2024AAAAAA")
	o.PaymentStatus = true
	orders.byCustomID[o.CustomOrderID] = o

	g := NewGateway(orders, &fakeSessions{})
	_, err := g.RecreateSession(context.Background(), o.CustomOrderID)
	assert.ErrorIs(t, err, ErrOrderPaid)
}

func TestRecreateSessionRejectedInFulfilmentStates(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusProcessed, models.StatusShipped, models.StatusDelivered} {
		orders := newFakeOrders()
		o := pendingOrder("CMSHP2024BBBBBB")
		o.Status = status
		orders.byCustomID[o.CustomOrderID] = o

		g := NewGateway(orders, &fakeSessions{})
		_, err := g.RecreateSession(context.Background(), o.CustomOrderID)
		assert.ErrorIs(t, err, ErrOrderPaid, "status %s", status)
	}
}

func TestRecreateSessionExpiresPriorSession(t *testing.T) {
	orders := newFakeOrders()
	o := pendingOrder("CMSHP2024CCCCCC")
	orders.byCustomID[o.CustomOrderID] = o
	sessions := &fakeSessions{}

	g := NewGateway(orders, sessions)
	updated, err := g.RecreateSession(context.Background(), o.CustomOrderID)
	require.NoError(t, err)

	require.Len(t, sessions.expired, 1)
	assert.Equal(t, "cs_old", sessions.expired[0])
	require.Len(t, sessions.created, 1)
	assert.NotEqual(t, "cs_old", updated.SessionID)
	assert.Equal(t, updated.SessionID, orders.byCustomID[o.CustomOrderID].SessionID)
	assert.Equal(t, updated.SessionURL, orders.byCustomID[o.CustomOrderID].SessionURL)
}

func TestRecreateSessionExpiryFailureDoesNotBlock(t *testing.T) {
	orders := newFakeOrders()
	o := pendingOrder("CMSHP2024DDDDDD")
	orders.byCustomID[o.CustomOrderID] = o
	sessions := &fakeSessions{expireErr: errors.New("provider hiccup")}

	g := NewGateway(orders, sessions)
	updated, err := g.RecreateSession(context.Background(), o.CustomOrderID)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.SessionURL)
}

func TestRecreateSessionWithoutPriorSessionSkipsExpiry(t *testing.T) {
	orders := newFakeOrders()
	o := pendingOrder("CMSHP2024EEEEEE")
	o.SessionID = ""
	o.SessionURL = ""
	orders.byCustomID[o.CustomOrderID] = o
	sessions := &fakeSessions{}

	g := NewGateway(orders, sessions)
	_, err := g.RecreateSession(context.Background(), o.CustomOrderID)
	require.NoError(t, err)
	assert.Empty(t, sessions.expired)
}

func TestRecreateSessionKeepsCapturedPrices(t *testing.T) {
	orders := newFakeOrders()
	o := pendingOrder("CMSHP2024FFFFFF")
	orders.byCustomID[o.CustomOrderID] = o
	sessions := &fakeSessions{}

	g := NewGateway(orders, sessions)
	_, err := g.RecreateSession(context.Background(), o.CustomOrderID)
	require.NoError(t, err)

	require.Len(t, sessions.created, 1)
	require.Len(t, sessions.created[0].Lines, 1)
	assert.Equal(t, int64(5000), sessions.created[0].Lines[0].UnitAmount)
	assert.Equal(t, int64(2), sessions.created[0].Lines[0].Quantity)
}
