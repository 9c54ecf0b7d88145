package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"camshop-backend/checkout"
	"camshop-backend/models"
	"camshop-backend/pricing"
)

// CheckoutController turns carts into pending orders with hosted payment
// sessions
type CheckoutController struct {
	UserCollection  *mongo.Collection
	OrderCollection *mongo.Collection
	Assembler       *checkout.Assembler
	Gateway         *checkout.Gateway
}

func NewCheckoutController(db *mongo.Database, assembler *checkout.Assembler, gateway *checkout.Gateway) *CheckoutController {
	return &CheckoutController{
		UserCollection:  db.Collection("users"),
		OrderCollection: db.Collection("orders"),
		Assembler:       assembler,
		Gateway:         gateway,
	}
}

// CreateCheckout assembles a pending order from the user's cart and
// returns the hosted session to redirect to
func (cc *CheckoutController) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShippingAddress models.Address `json:"shipping_address"`
		ShippingOption  string         `json:"shipping_option"`
		PromoCode       string         `json:"promo_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, cc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	order, err := cc.Assembler.CreateOrder(ctx, user.ID, user.Email, req.ShippingAddress, req.ShippingOption, req.PromoCode)
	if err != nil {
		writeError(w, checkoutErrorStatus(err), checkoutErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"order":       order,
		"session_id":  order.SessionID,
		"session_url": order.SessionURL,
	})
}

// RetrySession issues a fresh payment session for a pending order whose
// previous session was lost or expired
func (cc *CheckoutController) RetrySession(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	customOrderID := params["custom_order_id"]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, cc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	// Ownership is checked before any provider call so a stranger's
	// request cannot churn another user's sessions.
	var existing models.Order
	if err := cc.OrderCollection.FindOne(ctx, bson.M{"custom_order_id": customOrderID}).Decode(&existing); err != nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	claims, _ := requestClaims(r)
	if existing.UserID != user.ID && (claims == nil || claims.Role != "admin") {
		writeError(w, http.StatusForbidden, "You do not have access to this order")
		return
	}

	order, err := cc.Gateway.RecreateSession(ctx, customOrderID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, checkout.ErrOrderPaid):
			writeError(w, http.StatusBadRequest, "Order is already paid")
		case errors.Is(err, checkout.ErrSessionCreation):
			writeError(w, http.StatusBadGateway, "Could not create a payment session")
		default:
			writeError(w, http.StatusInternalServerError, "Error recreating session")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":  order.SessionID,
		"session_url": order.SessionURL,
	})
}

func checkoutErrorStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNothingInStock),
		errors.Is(err, checkout.ErrBadShipping),
		errors.Is(err, pricing.ErrInvalidCode),
		errors.Is(err, pricing.ErrLimitReached),
		errors.Is(err, pricing.ErrExpired),
		errors.Is(err, pricing.ErrBelowMinimum),
		errors.Is(err, pricing.ErrAlreadyUsed):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrSessionCreation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func checkoutErrorMessage(err error) string {
	switch {
	case errors.Is(err, checkout.ErrBadShipping):
		return "Unknown shipping option"
	case errors.Is(err, checkout.ErrSessionCreation):
		return "Could not create a payment session"
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNothingInStock),
		errors.Is(err, pricing.ErrInvalidCode),
		errors.Is(err, pricing.ErrLimitReached),
		errors.Is(err, pricing.ErrExpired),
		errors.Is(err, pricing.ErrBelowMinimum),
		errors.Is(err, pricing.ErrAlreadyUsed):
		return promoErrorMessage(err)
	default:
		return "Error creating checkout"
	}
}
