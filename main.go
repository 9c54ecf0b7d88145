package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"camshop-backend/checkout"
	"camshop-backend/controllers"
	"camshop-backend/payments"
	"camshop-backend/realtime"
	"camshop-backend/routes"
	"camshop-backend/store"
	"camshop-backend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	utils.JwtKey = []byte(jwtSecret)

	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	st := store.New(client, "camshop")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()
	db := st.Database()

	emailService := utils.NewEmailService()
	hub := realtime.NewHub()

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:3000"
	}
	stripeProvider := payments.NewStripeProvider(
		os.Getenv("STRIPE_SECRET_KEY"),
		clientURL+"/checkout/success",
		clientURL+"/checkout/cancel",
	)

	assembler := checkout.NewAssembler(st, st, st, st, st, stripeProvider)
	gateway := checkout.NewGateway(st, stripeProvider)
	processor := checkout.NewProcessor(st, st, st, st, st, hub, emailService)

	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		Users:         controllers.NewUserController(db, emailService),
		Products:      controllers.NewProductController(db),
		Sales:         controllers.NewSaleController(db),
		Carts:         controllers.NewCartController(db),
		Wishlists:     controllers.NewWishlistController(db),
		Promos:        controllers.NewPromoController(db, assembler),
		Orders:        controllers.NewOrderController(db, emailService),
		Checkout:      controllers.NewCheckoutController(db, assembler, gateway),
		Webhook:       controllers.NewWebhookController(processor, os.Getenv("STRIPE_WEBHOOK_SECRET")),
		Notifications: controllers.NewNotificationController(db, hub),
		Banners:       controllers.NewBannerController(db),
		Hub:           hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server running on port %s", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", port), router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
