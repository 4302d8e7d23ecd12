package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/chauffeurdeluxe/booking-backend/internal/database"
	"github.com/chauffeurdeluxe/booking-backend/internal/handlers"
	"github.com/chauffeurdeluxe/booking-backend/internal/middleware"
	"github.com/chauffeurdeluxe/booking-backend/internal/services"
	"github.com/chauffeurdeluxe/booking-backend/internal/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	jobStore := store.NewGormJobStore(db)

	// Initialize WebSocket hub for the ops dashboard
	hub := services.NewHub()
	go hub.Run()

	// Start the outbox dispatcher
	dispatcher := services.NewDispatcher(jobStore, hub)
	go dispatcher.Run(context.Background())

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{
		"https://bookingform-pi.vercel.app",
		"https://bookings.chauffeurdeluxe.com.au",
	}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"}
	r.Use(cors.New(config))

	// Payment provider webhook (signature-verified, no auth middleware)
	r.POST("/webhook", handlers.StripeWebhook(jobStore, jobStore))

	// Driver portal auth
	r.POST("/check-driver", handlers.CheckDriver(jobStore))
	r.POST("/driver-set-password", handlers.DriverSetPassword(jobStore))
	r.POST("/driver-login", handlers.DriverLogin(jobStore))

	// Admin surface
	r.GET("/pending-bookings", handlers.GetPendingBookings(jobStore))
	r.GET("/completed-jobs", handlers.GetCompletedJobs(jobStore))
	r.POST("/assign-job", handlers.AssignJob(jobStore, jobStore))
	r.GET("/ws", handlers.WebSocketHandler(hub))

	// Driver portal routes
	driver := r.Group("/")
	driver.Use(middleware.AuthMiddleware())
	{
		driver.GET("/driver-jobs", handlers.GetDriverJobs(jobStore))
		driver.POST("/update-job", handlers.UpdateJob(jobStore, jobStore))
		driver.POST("/complete-job", handlers.CompleteJob(jobStore, jobStore))
		driver.POST("/refuse-job", handlers.RefuseJob(jobStore, jobStore))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
