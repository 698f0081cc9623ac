package main

import (
	"log"
	"net/http"
	"time"

	"crm-server/config"
	"crm-server/database"
	"crm-server/handlers"
	"crm-server/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Connect to database
	db, err := database.Connect(config.AppConfig.DatabaseDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Initialize tables
	if err := db.InitializeTables(); err != nil {
		log.Fatal("Failed to initialize tables:", err)
	}

	// Initialize Cloudinary (optional, photo uploads answer 503 without it)
	if config.AppConfig.CloudinaryURL != "" {
		if err := services.InitializeCloudinary(config.AppConfig.CloudinaryURL); err != nil {
			log.Printf("Failed to initialize Cloudinary: %v", err)
		}
	} else {
		log.Printf("CLOUDINARY_URL not set, contact photo uploads disabled")
	}

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.Default()

	// Add CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure this properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "CRM Server is running",
		})
	})

	// Initialize handlers
	handlers.InitializeHandlers(db)

	// Auth strategy: AUTH_MODE=none auto-logs a dev admin, AUTH_MODE=jwt
	// requires a bearer token from /api/auth/login.
	strategy := handlers.NewAuthStrategy(config.AppConfig.AuthMode, config.AppConfig.JWTSecret)
	log.Printf("Auth mode: %s", config.AppConfig.AuthMode)

	// Login is outside the auth group so jwt mode can bootstrap
	router.POST("/api/auth/login", handlers.Login)

	// API routes
	api := router.Group("/api")
	api.Use(handlers.AuthMiddleware(strategy))
	{
		// Contact routes
		contacts := api.Group("/contacts")
		{
			contacts.GET("", handlers.GetContacts)
			contacts.GET("/:id", handlers.GetContact)
			contacts.POST("", handlers.CreateContact)
			contacts.PUT("/:id", handlers.UpdateContact)
			contacts.DELETE("/:id", handlers.DeleteContact)
			contacts.POST("/:id/photo", handlers.UploadContactPhoto)
		}

		// Opportunity routes
		opportunities := api.Group("/opportunities")
		{
			opportunities.GET("", handlers.GetOpportunities)
			opportunities.GET("/stages", handlers.GetOpportunityStages)
			opportunities.GET("/:id", handlers.GetOpportunity)
			opportunities.POST("", handlers.CreateOpportunity)
			opportunities.PUT("/:id", handlers.UpdateOpportunity)
			opportunities.DELETE("/:id", handlers.DeleteOpportunity)
		}

		// Task routes
		tasks := api.Group("/tasks")
		{
			tasks.GET("", handlers.GetTasks)
			tasks.GET("/:id", handlers.GetTask)
			tasks.POST("", handlers.CreateTask)
			tasks.PUT("/:id", handlers.UpdateTask)
			tasks.DELETE("/:id", handlers.DeleteTask)
		}

		// User routes
		users := api.Group("/users")
		{
			users.GET("", handlers.GetUsers)
			users.GET("/profile", handlers.GetUserProfile)
			users.POST("", handlers.CreateUser)
			users.PUT("/:id/status", handlers.ToggleUserStatus)
		}

		// Dashboard routes
		api.GET("/dashboard/stats", handlers.GetDashboardStats)
	}

	// Task reminder scheduler (needs a push webhook to deliver to)
	if config.AppConfig.NotifyWebhookURL != "" {
		scheduler := services.NewTaskScheduler(services.NewNotificationService(config.AppConfig.NotifyWebhookURL))
		scheduler.Start(5 * time.Minute)
		defer scheduler.Stop()
		log.Printf("Task reminder scheduler started")
	}

	// Start server
	log.Printf("Starting CRM Server on 0.0.0.0:%s", config.AppConfig.ServerPort)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+config.AppConfig.ServerPort, c.Handler(router)))
}
