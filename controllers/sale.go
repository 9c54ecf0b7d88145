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

// SaleController manages time-bounded price overrides (admin only)
type SaleController struct {
	Collection *mongo.Collection
}

func NewSaleController(db *mongo.Database) *SaleController {
	return &SaleController{Collection: db.Collection("sales")}
}

// GetSales lists all sales
func (sc *SaleController) GetSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := sc.Collection.Find(ctx, bson.M{"archived": false})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching sales")
		return
	}
	defer cursor.Close(ctx)

	sales := []models.Sale{}
	if err := cursor.All(ctx, &sales); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading sales")
		return
	}

	writeJSON(w, http.StatusOK, sales)
}

// CreateSale creates a sale
func (sc *SaleController) CreateSale(w http.ResponseWriter, r *http.Request) {
	var sale models.Sale
	if err := json.NewDecoder(r.Body).Decode(&sale); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if sale.DiscountPercentage <= 0 || sale.DiscountPercentage > 100 {
		writeError(w, http.StatusBadRequest, "Discount percentage must be between 0 and 100")
		return
	}
	if !sale.EndDate.After(sale.StartDate) {
		writeError(w, http.StatusBadRequest, "Sale end date must be after the start date")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := sc.Collection.InsertOne(ctx, sale)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating sale")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": result.InsertedID})
}

// UpdateSale updates a sale
func (sc *SaleController) UpdateSale(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale ID")
		return
	}

	var sale models.Sale
	if err := json.NewDecoder(r.Body).Decode(&sale); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := sc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": sale})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating sale")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Sale not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Sale updated"})
}

// ArchiveSale retires a sale; variants still linked to it fall back to
// their base price
func (sc *SaleController) ArchiveSale(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := sc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"archived": true}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error archiving sale")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Sale not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Sale archived"})
}
