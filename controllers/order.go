package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"camshop-backend/models"
	"camshop-backend/utils"
)

// OrderController handles order history, tracking and back-office
// fulfilment
type OrderController struct {
	Collection     *mongo.Collection
	UserCollection *mongo.Collection
	Email          *utils.EmailService
}

func NewOrderController(db *mongo.Database, email *utils.EmailService) *OrderController {
	return &OrderController{
		Collection:     db.Collection("orders"),
		UserCollection: db.Collection("users"),
		Email:          email,
	}
}

// GetMyOrders lists the authenticated user's orders, newest first
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, oc.UserCollection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := oc.Collection.Find(ctx, bson.M{"user_id": user.ID, "archived": false}, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetOrderStatus returns one order by its customer-facing ID. Customers
// can only see their own orders; admins can see any.
func (oc *OrderController) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	customOrderID := params["custom_order_id"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := oc.Collection.FindOne(ctx, bson.M{"custom_order_id": customOrderID}).Decode(&order); err != nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	claims, ok := requestClaims(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if claims.Role != "admin" {
		user, err := currentUser(ctx, r, oc.UserCollection)
		if err != nil || user.ID != order.UserID {
			writeError(w, http.StatusForbidden, "You do not have access to this order")
			return
		}
	}

	writeJSON(w, http.StatusOK, order)
}

// GetAllOrders lists every order, optionally filtered by status
// (admin only)
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{"archived": false}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := oc.Collection.Find(ctx, filter, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus drives the status transition table (admin only). A
// request that would not change anything is acknowledged without a write.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	customOrderID := params["custom_order_id"]

	var req struct {
		Action       string `json:"action"`
		TrackingNo   string `json:"tracking_no"`
		TrackingLink string `json:"tracking_link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := oc.Collection.FindOne(ctx, bson.M{"custom_order_id": customOrderID}).Decode(&order); err != nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	changed, message, err := models.ApplyAction(&order, models.StatusAction(req.Action), req.TrackingNo, req.TrackingLink)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownAction):
			writeError(w, http.StatusBadRequest, "Unknown order action")
		case errors.Is(err, models.ErrNotCancellable):
			writeError(w, http.StatusBadRequest, "Shipped or delivered orders cannot be cancelled")
		case errors.Is(err, models.ErrTrackingRequired):
			writeError(w, http.StatusBadRequest, "Tracking number and link are required before shipping")
		case errors.Is(err, models.ErrNotRefundable):
			writeError(w, http.StatusBadRequest, "Order is not in refund process")
		default:
			writeError(w, http.StatusInternalServerError, "Error updating order")
		}
		return
	}

	if changed {
		update := bson.M{
			"status":        order.Status,
			"fulfilled":     order.Fulfilled,
			"tracking_no":   order.TrackingNo,
			"tracking_link": order.TrackingLink,
		}
		if _, err := oc.Collection.UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": update}); err != nil {
			writeError(w, http.StatusInternalServerError, "Error updating order")
			return
		}

		if order.Status == models.StatusShipped && models.StatusAction(req.Action) == models.ActionShipped && oc.Email != nil {
			shipped := order
			go func() {
				if err := oc.Email.SendShippingNotice(shipped.Email, &shipped); err != nil {
					log.Printf("orders: shipping notice for %s: %v", shipped.CustomOrderID, err)
				}
			}()
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"order":   order,
	})
}

// ArchiveOrder hides an order from the default listings (admin only)
func (oc *OrderController) ArchiveOrder(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := oc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"archived": true}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error archiving order")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Order archived"})
}
