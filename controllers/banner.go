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

// BannerController manages storefront promotion banners
type BannerController struct {
	Collection *mongo.Collection
}

func NewBannerController(db *mongo.Database) *BannerController {
	return &BannerController{Collection: db.Collection("banners")}
}

// GetActiveBanners lists banners shown on the storefront (public)
func (bc *BannerController) GetActiveBanners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := bc.Collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching banners")
		return
	}
	defer cursor.Close(ctx)

	banners := []models.Banner{}
	if err := cursor.All(ctx, &banners); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading banners")
		return
	}

	writeJSON(w, http.StatusOK, banners)
}

// GetBanners lists all banners (admin only)
func (bc *BannerController) GetBanners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := bc.Collection.Find(ctx, bson.M{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching banners")
		return
	}
	defer cursor.Close(ctx)

	banners := []models.Banner{}
	if err := cursor.All(ctx, &banners); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading banners")
		return
	}

	writeJSON(w, http.StatusOK, banners)
}

// CreateBanner creates a banner (admin only)
func (bc *BannerController) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var banner models.Banner
	if err := json.NewDecoder(r.Body).Decode(&banner); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if banner.Title == "" || banner.Image == "" {
		writeError(w, http.StatusBadRequest, "Banner title and image are required")
		return
	}
	banner.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := bc.Collection.InsertOne(ctx, banner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating banner")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": result.InsertedID})
}

// UpdateBanner updates a banner (admin only)
func (bc *BannerController) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid banner ID")
		return
	}

	var banner models.Banner
	if err := json.NewDecoder(r.Body).Decode(&banner); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	update := bson.M{
		"title":  banner.Title,
		"image":  banner.Image,
		"link":   banner.Link,
		"active": banner.Active,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := bc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating banner")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Banner not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Banner updated"})
}

// DeleteBanner removes a banner (admin only)
func (bc *BannerController) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid banner ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := bc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error deleting banner")
		return
	}
	if result.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "Banner not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Banner deleted"})
}
