package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"camshop-backend/checkout"
	"camshop-backend/models"
)

// NotificationController serves the admin back-office notification feed
type NotificationController struct {
	Collection  *mongo.Collection
	Broadcaster checkout.Broadcaster
}

func NewNotificationController(db *mongo.Database, broadcaster checkout.Broadcaster) *NotificationController {
	return &NotificationController{
		Collection:  db.Collection("notifications"),
		Broadcaster: broadcaster,
	}
}

// GetNotifications lists notifications, newest first (admin only)
func (nc *NotificationController) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(100)
	cursor, err := nc.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching notifications")
		return
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading notifications")
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// GetUnreadCount returns the number of unread notifications (admin only)
func (nc *NotificationController) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := nc.Collection.CountDocuments(ctx, bson.M{"status": models.NotificationUnread})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error counting notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

// MarkRead marks one notification as read and pushes the new unread count
// to connected back-office clients (admin only)
func (nc *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := nc.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.NotificationRead}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating notification")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}

	nc.broadcastUnread(ctx)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllRead marks every notification as read (admin only)
func (nc *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := nc.Collection.UpdateMany(ctx,
		bson.M{"status": models.NotificationUnread},
		bson.M{"$set": bson.M{"status": models.NotificationRead}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating notifications")
		return
	}

	nc.broadcastUnread(ctx)
	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

func (nc *NotificationController) broadcastUnread(ctx context.Context) {
	if nc.Broadcaster == nil {
		return
	}
	count, err := nc.Collection.CountDocuments(ctx, bson.M{"status": models.NotificationUnread})
	if err != nil {
		return
	}
	nc.Broadcaster.Emit(checkout.EventUnreadCount, count)
}
