package routes

import (
	"github.com/gorilla/mux"

	"camshop-backend/controllers"
	"camshop-backend/middleware"
	"camshop-backend/realtime"
)

// Controllers bundles every handler group the router mounts
type Controllers struct {
	Users         *controllers.UserController
	Products      *controllers.ProductController
	Sales         *controllers.SaleController
	Carts         *controllers.CartController
	Wishlists     *controllers.WishlistController
	Promos        *controllers.PromoController
	Orders        *controllers.OrderController
	Checkout      *controllers.CheckoutController
	Webhook       *controllers.WebhookController
	Notifications *controllers.NotificationController
	Banners       *controllers.BannerController
	Hub           *realtime.Hub
}

// RegisterRoutes wires every endpoint onto the router. The webhook route
// is mounted outside the auth middleware: Stripe signs the raw body and
// carries no bearer token.
func RegisterRoutes(router *mux.Router, c Controllers) {
	// Public routes
	router.HandleFunc("/api/register", c.Users.Register).Methods("POST")
	router.HandleFunc("/api/verify-email", c.Users.VerifyEmail).Methods("GET")
	router.HandleFunc("/api/login", c.Users.Login).Methods("POST")
	router.HandleFunc("/api/products", c.Products.GetProducts).Methods("GET")
	router.HandleFunc("/api/products/{id}", c.Products.GetProductByID).Methods("GET")
	router.HandleFunc("/api/banners", c.Banners.GetActiveBanners).Methods("GET")
	router.HandleFunc("/api/webhook", c.Webhook.HandleWebhook).Methods("POST")

	// Authenticated routes
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(middleware.AuthMiddleware)
	authed.HandleFunc("/profile", c.Users.GetProfile).Methods("GET")

	authed.HandleFunc("/cart", c.Carts.GetCart).Methods("GET")
	authed.HandleFunc("/cart", c.Carts.AddToCart).Methods("POST")
	authed.HandleFunc("/cart", c.Carts.UpdateCartItem).Methods("PUT")
	authed.HandleFunc("/cart", c.Carts.ClearCart).Methods("DELETE")
	authed.HandleFunc("/cart/{product_id}/{variant_id}", c.Carts.RemoveFromCart).Methods("DELETE")

	authed.HandleFunc("/wishlist", c.Wishlists.GetWishlist).Methods("GET")
	authed.HandleFunc("/wishlist", c.Wishlists.AddToWishlist).Methods("POST")
	authed.HandleFunc("/wishlist/{product_id}/{variant_id}", c.Wishlists.RemoveFromWishlist).Methods("DELETE")

	authed.HandleFunc("/promos/apply", c.Promos.ApplyPromo).Methods("POST")

	authed.HandleFunc("/checkout", c.Checkout.CreateCheckout).Methods("POST")
	authed.HandleFunc("/checkout/{custom_order_id}/session", c.Checkout.RetrySession).Methods("POST")

	authed.HandleFunc("/orders", c.Orders.GetMyOrders).Methods("GET")
	authed.HandleFunc("/orders/{custom_order_id}", c.Orders.GetOrderStatus).Methods("GET")

	// Admin routes
	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware, middleware.AdminMiddleware)

	admin.HandleFunc("/customers", c.Users.GetCustomers).Methods("GET")

	admin.HandleFunc("/products", c.Products.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", c.Products.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", c.Products.ArchiveProduct).Methods("DELETE")

	admin.HandleFunc("/sales", c.Sales.GetSales).Methods("GET")
	admin.HandleFunc("/sales", c.Sales.CreateSale).Methods("POST")
	admin.HandleFunc("/sales/{id}", c.Sales.UpdateSale).Methods("PUT")
	admin.HandleFunc("/sales/{id}", c.Sales.ArchiveSale).Methods("DELETE")

	admin.HandleFunc("/promos", c.Promos.GetPromos).Methods("GET")
	admin.HandleFunc("/promos", c.Promos.CreatePromo).Methods("POST")
	admin.HandleFunc("/promos/{id}", c.Promos.UpdatePromo).Methods("PUT")
	admin.HandleFunc("/promos/{id}", c.Promos.ArchivePromo).Methods("DELETE")

	admin.HandleFunc("/orders", c.Orders.GetAllOrders).Methods("GET")
	admin.HandleFunc("/orders/{custom_order_id}/status", c.Orders.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/orders/{id}/archive", c.Orders.ArchiveOrder).Methods("PUT")

	admin.HandleFunc("/notifications", c.Notifications.GetNotifications).Methods("GET")
	admin.HandleFunc("/notifications/unread-count", c.Notifications.GetUnreadCount).Methods("GET")
	admin.HandleFunc("/notifications/read-all", c.Notifications.MarkAllRead).Methods("PUT")
	admin.HandleFunc("/notifications/{id}/read", c.Notifications.MarkRead).Methods("PUT")

	admin.HandleFunc("/banners", c.Banners.GetBanners).Methods("GET")
	admin.HandleFunc("/banners", c.Banners.CreateBanner).Methods("POST")
	admin.HandleFunc("/banners/{id}", c.Banners.UpdateBanner).Methods("PUT")
	admin.HandleFunc("/banners/{id}", c.Banners.DeleteBanner).Methods("DELETE")

	// Back-office realtime feed. The browser websocket API cannot set an
	// Authorization header, so the upgrade endpoint sits outside the
	// bearer-token middleware.
	router.HandleFunc("/ws/admin", c.Hub.ServeWS)
}
