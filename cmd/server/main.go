package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge-api/internal/config"
	"github.com/taskforge/taskforge-api/internal/database"
	"github.com/taskforge/taskforge-api/internal/handlers"
	"github.com/taskforge/taskforge-api/internal/middleware"
	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/repository"
	"github.com/taskforge/taskforge-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// Services
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTLifetime)
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, activityRepo, logger)
	userService := services.NewUserService(userRepo, activityRepo, logger)
	statsService := services.NewStatsService(taskRepo)
	activityService := services.NewActivityService(activityRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokenService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)
	statsHandler := handlers.NewStatsHandler(statsService)
	activityHandler := handlers.NewActivityHandler(activityService)

	requireAuth := middleware.RequireAuth(tokenService, userRepo)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskforge API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// User administration routes (admin only)
		users := api.Group("/users")
		users.Use(requireAuth, middleware.RequireRoles(models.RoleAdmin))
		{
			users.GET("", userHandler.ListUsers)
			users.PATCH("/:id/role", userHandler.UpdateUserRole)
		}

		// Statistics routes (protected)
		stats := api.Group("/stats")
		stats.Use(requireAuth)
		{
			stats.GET("/overview", statsHandler.GetOverview)
		}

		// Audit trail routes (admin only)
		activity := api.Group("/activity")
		activity.Use(requireAuth, middleware.RequireRoles(models.RoleAdmin))
		{
			activity.GET("", activityHandler.ListActivity)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
