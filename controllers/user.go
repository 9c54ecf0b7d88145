package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"camshop-backend/models"
	"camshop-backend/utils"
)

// UserController handles account and customer requests
type UserController struct {
	Collection   *mongo.Collection
	EmailService *utils.EmailService
}

// NewUserController creates a new UserController
func NewUserController(db *mongo.Database, emailService *utils.EmailService) *UserController {
	return &UserController{
		Collection:   db.Collection("users"),
		EmailService: emailService,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if user.Email == "" || user.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}
	user.Password = string(hashedPassword)
	user.Role = "user"
	user.IsVerified = false
	user.Wishlist = []models.WishlistItem{}
	user.Orders = []primitive.ObjectID{}

	verificationToken, err := utils.GenerateJWT("", user.Email, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error generating verification token")
		return
	}
	user.VerificationToken = verificationToken

	if _, err := uc.Collection.InsertOne(ctx, user); err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	go func() {
		if err := uc.EmailService.SendVerificationEmail(user.Email, verificationToken); err != nil {
			log.Printf("Failed to send verification email to %s: %v", user.Email, err)
		}
	}()

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Verification token missing")
		return
	}

	claims := &utils.Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return utils.JwtKey, nil
	}); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"verification_token": token}).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "User not found or already verified")
		return
	}

	_, err := uc.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"is_verified":        true,
			"verification_token": "",
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating verification status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully. You can now log in."})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.IsVerified {
		writeError(w, http.StatusUnauthorized, "Email not verified")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := currentUser(ctx, r, uc.Collection)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	user.Password = ""
	user.VerificationToken = ""
	writeJSON(w, http.StatusOK, user)
}

// GetCustomers lists customer accounts for the back-office (admin only)
func (uc *UserController) GetCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	projection := bson.M{"password": 0, "verification_token": 0}
	cursor, err := uc.Collection.Find(ctx, bson.M{"role": "user"}, options.Find().SetProjection(projection))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching customers")
		return
	}
	defer cursor.Close(ctx)

	customers := []models.User{}
	if err := cursor.All(ctx, &customers); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading customers")
		return
	}

	writeJSON(w, http.StatusOK, customers)
}
