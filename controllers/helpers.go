package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"camshop-backend/middleware"
	"camshop-backend/models"
	"camshop-backend/utils"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the structured error payload the UI displays inline
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requestClaims extracts the authenticated user's claims from the request
// context
func requestClaims(r *http.Request) (*utils.Claims, bool) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	return claims, ok
}

// currentUser resolves the authenticated user's document
func currentUser(ctx context.Context, r *http.Request, users *mongo.Collection) (*models.User, error) {
	claims, ok := requestClaims(r)
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	var user models.User
	if err := users.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
