package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"camshop-backend/checkout"
	"camshop-backend/models"
	"camshop-backend/pricing"
)

// PromoController handles promo code administration and the cart-preview
// evaluation endpoint
type PromoController struct {
	Collection     *mongo.Collection
	UserCollection *mongo.Collection
	Assembler      *checkout.Assembler
}

func NewPromoController(db *mongo.Database, assembler *checkout.Assembler) *PromoController {
	return &PromoController{
		Collection:     db.Collection("promocodes"),
		UserCollection: db.Collection("users"),
		Assembler:      assembler,
	}
}

// ApplyPromo evaluates a promo code against the user's current cart
// without committing anything; the usage counter only moves once payment
// is confirmed
func (pc *PromoController) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Promo code is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, pc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	res, err := pc.Assembler.EvaluatePromo(ctx, user.ID, req.Code)
	if err != nil {
		writeError(w, promoErrorStatus(err), promoErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"discounted_items": res.DiscountedItems,
		"fixed_discount":   res.FixedDiscount,
		"total_price":      res.TotalPrice,
	})
}

// promoErrorStatus maps evaluator errors onto HTTP status codes
func promoErrorStatus(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidCode),
		errors.Is(err, pricing.ErrLimitReached),
		errors.Is(err, pricing.ErrExpired),
		errors.Is(err, pricing.ErrBelowMinimum),
		errors.Is(err, pricing.ErrAlreadyUsed),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNothingInStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// promoErrorMessage keeps the distinct inline messages the storefront
// shows for each rejection
func promoErrorMessage(err error) string {
	switch {
	case errors.Is(err, pricing.ErrInvalidCode):
		return "Invalid promo code"
	case errors.Is(err, pricing.ErrLimitReached):
		return "Promo code usage limit reached"
	case errors.Is(err, pricing.ErrExpired):
		return "Promo code expired"
	case errors.Is(err, pricing.ErrBelowMinimum):
		return "Cart total is below the promo code minimum"
	case errors.Is(err, pricing.ErrAlreadyUsed):
		return "Promo code already used"
	case errors.Is(err, checkout.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, checkout.ErrNothingInStock):
		return "No item in your cart is in stock"
	default:
		return "Could not apply promo code"
	}
}

// GetPromos lists promo codes (admin only)
func (pc *PromoController) GetPromos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := pc.Collection.Find(ctx, bson.M{"archived": false})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching promo codes")
		return
	}
	defer cursor.Close(ctx)

	promos := []models.PromoCode{}
	if err := cursor.All(ctx, &promos); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading promo codes")
		return
	}

	writeJSON(w, http.StatusOK, promos)
}

// CreatePromo creates a promo code (admin only)
func (pc *PromoController) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var promo models.PromoCode
	if err := json.NewDecoder(r.Body).Decode(&promo); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if promo.Code == "" {
		writeError(w, http.StatusBadRequest, "Promo code is required")
		return
	}
	if promo.Type != models.PromoTypePercentage && promo.Type != models.PromoTypeFixed {
		writeError(w, http.StatusBadRequest, "Promo type must be percentage or fixed")
		return
	}
	if promo.Value <= 0 {
		writeError(w, http.StatusBadRequest, "Promo value must be positive")
		return
	}
	promo.UsageCount = 0

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.InsertOne(ctx, promo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusBadRequest, "Promo code already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error creating promo code")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": result.InsertedID})
}

// UpdatePromo updates a promo code's rule fields; the usage counter is
// webhook-owned and never writable here (admin only)
func (pc *PromoController) UpdatePromo(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid promo code ID")
		return
	}

	var promo models.PromoCode
	if err := json.NewDecoder(r.Body).Decode(&promo); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	update := bson.M{
		"type":                promo.Type,
		"value":               promo.Value,
		"start_date":          promo.StartDate,
		"end_date":            promo.EndDate,
		"minimum_order_value": promo.MinimumOrderValue,
		"usage_limit":         promo.UsageLimit,
		"keywords":            promo.Keywords,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating promo code")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Promo code not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Promo code updated"})
}

// ArchivePromo retires a promo code (admin only)
func (pc *PromoController) ArchivePromo(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid promo code ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"archived": true}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error archiving promo code")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Promo code not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Promo code archived"})
}
