package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/carrier"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/gateway"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/orders"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("⚠️ product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}
	if err := database.EnsureBlogIndexes(db); err != nil {
		log.Printf("⚠️ blog index warning: %v", err)
	}

	gatewayClient := gateway.NewClient(
		config.AppEnv.RazorpayKeyID,
		config.AppEnv.RazorpayKeySecret,
		config.AppEnv.RazorpayBaseURL,
		config.AppEnv.MinOrderAmount,
	)
	carrierClient := carrier.NewClient(
		config.AppEnv.DelhiveryToken,
		config.AppEnv.DelhiveryBaseURL,
	)

	orderService := orders.NewService(
		orders.NewMongoOrderStore(db),
		orders.NewMongoProductStore(db),
		orders.NewMongoTxn(client),
		gatewayClient,
		config.AppEnv.ShippingFee,
		config.AppEnv.TaxRatePercent,
		config.AppEnv.PendingOrderTTL,
	)

	rateStore := middleware.NewMemoryRateStore()

	r := gin.Default()

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.GET("/blogs", handlers.GetBlogs(db))
	r.GET("/blogs/:slug", handlers.GetBlogBySlug(db))
	r.POST("/quote-requests", handlers.CreateQuoteRequest(db))

	r.POST("/orders", handlers.CreateOrder(db, orderService))
	r.GET("/orders/track", handlers.TrackOrder(orderService))
	r.POST("/payments/order", handlers.CreatePaymentOrder(orderService, gatewayClient))
	r.POST("/payments/verify",
		middleware.RateLimit(rateStore, 30, time.Minute),
		handlers.VerifyPayment(orderService),
	)

	r.POST("/carrier/webhook", handlers.CarrierWebhook(orderService))

	r.POST("/admin/login",
		middleware.RateLimit(rateStore, 10, time.Minute),
		handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL),
	)

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/orders", handlers.GetOrders(db))
		admin.GET("/orders/:id", handlers.GetOrder(orderService))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(orderService))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))
		admin.POST("/orders/bulk-delete", handlers.BulkDeleteOrders(db))

		admin.POST("/orders/:id/shipment", handlers.CreateShipment(orderService, carrierClient, config.AppEnv.PickupLocation))
		admin.POST("/orders/:id/fulfillment", handlers.MarkOrderShipped(orderService))
		admin.GET("/shipments/track", handlers.TrackShipment(carrierClient))

		admin.GET("/blogs", handlers.GetAllBlogs(db))
		admin.POST("/blogs", handlers.CreateBlog(db))
		admin.PUT("/blogs/:id", handlers.UpdateBlog(db))
		admin.DELETE("/blogs/:id", handlers.DeleteBlog(db))

		admin.GET("/quote-requests", handlers.GetQuoteRequests(db))
		admin.PATCH("/quote-requests/:id", handlers.UpdateQuoteRequest(db))

		admin.GET("/offline-orders", handlers.GetOfflineOrders(db))
		admin.POST("/offline-orders", handlers.CreateOfflineOrder(db))
		admin.PUT("/offline-orders/:id", handlers.UpdateOfflineOrder(db))
		admin.DELETE("/offline-orders/:id", handlers.DeleteOfflineOrder(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
