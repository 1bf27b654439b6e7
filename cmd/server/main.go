package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/config"
	"github.com/kfujiw/raci-task-tracker/internal/constants"
	"github.com/kfujiw/raci-task-tracker/internal/database"
	"github.com/kfujiw/raci-task-tracker/internal/handlers"
	"github.com/kfujiw/raci-task-tracker/internal/middleware"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/kfujiw/raci-task-tracker/internal/repository"
	"github.com/kfujiw/raci-task-tracker/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations and seed the fixed role set
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedRoles(database.GetDB()); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	sopRepo := repository.NewSOPRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	instanceRepo := repository.NewInstanceRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	teamService := services.NewTeamService(teamRepo, userRepo)
	sopService := services.NewSOPService(sopRepo)
	templateService := services.NewTemplateService(templateRepo, instanceRepo, userRepo, sopRepo)
	instanceService := services.NewInstanceService(instanceRepo, templateRepo, userRepo)
	dashboardService := services.NewDashboardService(instanceService, instanceRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	sopHandler := handlers.NewSOPHandler(sopService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	instanceHandler := handlers.NewInstanceHandler(instanceService)
	notificationHandler := handlers.NewNotificationHandler(instanceService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, instanceService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "RACI Task Tracker API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Team routes (protected, admin-managed)
		teams := api.Group("/teams")
		teams.Use(middleware.RequireAuth(), middleware.LoadUserRoles())
		{
			teams.GET("", teamHandler.ListTeams)
			teams.GET("/:id", teamHandler.GetTeam)
			teams.POST("", middleware.RequireRole(models.RoleAdmin), teamHandler.CreateTeam)
			teams.PUT("/:id", middleware.RequireRole(models.RoleAdmin), teamHandler.UpdateTeam)
		}

		// SOP routes (protected)
		sops := api.Group("/sops")
		sops.Use(middleware.RequireAuth(), middleware.LoadUserRoles())
		{
			sops.GET("", sopHandler.ListSOPs)
			sops.GET("/:id", sopHandler.GetSOP)
			sops.POST("", middleware.RequireRole(models.RoleAdmin, models.RoleManager), sopHandler.CreateSOP)
			sops.PUT("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleManager), sopHandler.UpdateSOP)
		}

		// Template routes (protected)
		templates := api.Group("/templates")
		templates.Use(middleware.RequireAuth(), middleware.LoadUserRoles())
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.POST("", templateHandler.CreateTemplate)
			templates.GET("/:id", middleware.RequireTemplateAccess(), templateHandler.GetTemplate)
			templates.PUT("/:id", middleware.RequireTemplateAccess(), templateHandler.UpdateTemplate)
			templates.DELETE("/:id", middleware.RequireTemplateAccess(), templateHandler.DeactivateTemplate)
			templates.POST("/:id/instances", middleware.RequireTemplateAccess(), instanceHandler.CreateInstance)
		}

		// Instance routes (protected)
		instances := api.Group("/instances")
		instances.Use(middleware.RequireAuth(), middleware.LoadUserRoles())
		{
			instances.GET("", instanceHandler.ListInstances)
			instances.GET("/:id", middleware.RequireInstanceAccess(), instanceHandler.GetInstance)
			instances.POST("/:id/status", middleware.RequireInstanceAccess(), instanceHandler.ChangeStatus)
			instances.GET("/:id/status-logs", middleware.RequireInstanceAccess(), instanceHandler.ListStatusLogs)
			instances.GET("/:id/outcome", middleware.RequireInstanceAccess(), instanceHandler.GetOutcome)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth(), middleware.LoadUserRoles())
		{
			notifications.GET("", notificationHandler.ListNotifications)
		}

		// Dashboard routes (protected)
		dashboard := api.Group("/dashboard")
		dashboard.Use(middleware.RequireAuth(), middleware.LoadUserRoles())
		{
			dashboard.GET("", dashboardHandler.GetDashboard)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.LoadUserRoles(), middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/recurrence/run", dashboardHandler.RunRecurrenceSweep)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
