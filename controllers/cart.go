package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"camshop-backend/models"
)

// CartController handles cart requests
type CartController struct {
	Collection     *mongo.Collection
	UserCollection *mongo.Collection
}

// NewCartController creates a new CartController
func NewCartController(db *mongo.Database) *CartController {
	return &CartController{
		Collection:     db.Collection("carts"),
		UserCollection: db.Collection("users"),
	}
}

// AddToCart adds a product variant to the user's cart, merging quantities
// for an existing line
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if item.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, cc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var cart models.Cart
	err = cc.Collection.FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&cart)
	if err != nil {
		cart = models.Cart{UserID: user.ID, Items: []models.CartItem{item}}
		if _, err := cc.Collection.InsertOne(ctx, cart); err != nil {
			writeError(w, http.StatusInternalServerError, "Error creating cart")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Item added to cart"})
		return
	}

	updated := false
	for i, existing := range cart.Items {
		if existing.ProductID == item.ProductID && existing.VariantID == item.VariantID {
			cart.Items[i].Quantity += item.Quantity
			updated = true
			break
		}
	}
	if !updated {
		cart.Items = append(cart.Items, item)
	}

	if _, err := cc.Collection.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{"$set": bson.M{"items": cart.Items}}); err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating cart")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Item added to cart"})
}

// UpdateCartItem replaces the quantity of one cart line
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if item.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, cc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	result, err := cc.Collection.UpdateOne(ctx,
		bson.M{
			"user_id": user.ID,
			"items": bson.M{"$elemMatch": bson.M{
				"product_id": item.ProductID,
				"variant_id": item.VariantID,
			}},
		},
		bson.M{"$set": bson.M{"items.$.quantity": item.Quantity}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating cart")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart updated"})
}

// RemoveFromCart removes a variant line from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	productID, err := primitive.ObjectIDFromHex(params["product_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	variantID, err := primitive.ObjectIDFromHex(params["variant_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid variant ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, cc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	_, err = cc.Collection.UpdateOne(ctx,
		bson.M{"user_id": user.ID},
		bson.M{"$pull": bson.M{"items": bson.M{
			"product_id": productID,
			"variant_id": variantID,
		}}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating cart")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, cc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var cart models.Cart
	if err := cc.Collection.FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&cart); err != nil {
		// An absent cart document is just an empty cart.
		writeJSON(w, http.StatusOK, models.Cart{UserID: user.ID, Items: []models.CartItem{}})
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, cc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if _, err := cc.Collection.DeleteOne(ctx, bson.M{"user_id": user.ID}); err != nil {
		writeError(w, http.StatusInternalServerError, "Error clearing cart")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}
