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

// WishlistController manages the per-user wishlist stored on the user
// document
type WishlistController struct {
	UserCollection *mongo.Collection
}

func NewWishlistController(db *mongo.Database) *WishlistController {
	return &WishlistController{UserCollection: db.Collection("users")}
}

// GetWishlist returns the user's saved variants
func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, wc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.Wishlist == nil {
		user.Wishlist = []models.WishlistItem{}
	}
	writeJSON(w, http.StatusOK, user.Wishlist)
}

// AddToWishlist saves a variant; adding the same variant twice is a no-op
func (wc *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var item models.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, wc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	_, err = wc.UserCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$addToSet": bson.M{"wishlist": item}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating wishlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Added to wishlist"})
}

// RemoveFromWishlist drops a saved variant
func (wc *WishlistController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
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
	user, err := currentUser(ctx, r, wc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	_, err = wc.UserCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$pull": bson.M{"wishlist": bson.M{
			"product_id": productID,
			"variant_id": variantID,
		}}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating wishlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from wishlist"})
}
