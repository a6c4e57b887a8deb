package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"gitboard/internal/config"
	"gitboard/internal/constants"
	"gitboard/internal/database"
	"gitboard/internal/handlers"
	"gitboard/internal/middleware"
	"gitboard/internal/repository"
	"gitboard/internal/services"
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

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()
	r.Use(middleware.RequestID())

	// Setup cookie session middleware
	isProduction := cfg.GinMode == "release"
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	accessService := services.NewAccessService(userRepo, projectRepo)
	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, userRepo, accessService)
	boardService := services.NewBoardService(boardRepo, taskRepo, accessService)
	taskService := services.NewTaskService(taskRepo, boardRepo, projectRepo, accessService)
	labelService := services.NewLabelService(labelRepo, taskRepo, boardRepo, accessService)
	commentService := services.NewCommentService(commentRepo, taskRepo, boardRepo, accessService)
	dashboardService := services.NewDashboardService(userRepo, projectRepo, taskRepo)
	auditService := services.NewAuditService(auditRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService, auditService)
	boardHandler := handlers.NewBoardHandler(boardService, auditService)
	taskHandler := handlers.NewTaskHandler(taskService, commentService, auditService)
	labelHandler := handlers.NewLabelHandler(labelService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "GitBoard API is running",
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

		// User admin routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.DELETE("/:id", authHandler.DeleteUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.PUT("/:id/status", projectHandler.SetProjectStatus)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.POST("/:id/members", projectHandler.AddMember)
			projects.PUT("/:id/members/:user_id", projectHandler.ChangeMemberRole)
			projects.DELETE("/:id/members/:user_id", projectHandler.RemoveMember)
			projects.POST("/:id/transfer", projectHandler.TransferOwnership)
			projects.GET("/:id/boards", boardHandler.ListBoards)
			projects.POST("/:id/boards", boardHandler.CreateBoard)
			projects.GET("/:id/labels", labelHandler.ListLabels)
			projects.POST("/:id/labels", labelHandler.CreateLabel)
		}

		// Board routes (protected)
		boards := api.Group("/boards")
		boards.Use(middleware.RequireAuth())
		{
			boards.GET("/:id", boardHandler.GetBoard)
			boards.PATCH("/:id", boardHandler.UpdateBoard)
			boards.DELETE("/:id", boardHandler.DeleteBoard)
			boards.POST("/:id/tasks", taskHandler.CreateTask)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/move", taskHandler.MoveTask)
			tasks.POST("/:id/reorder", taskHandler.ReorderTask)
			tasks.GET("/:id/history", taskHandler.GetHistory)
			tasks.GET("/:id/comments", taskHandler.ListComments)
			tasks.POST("/:id/comments", taskHandler.AddComment)
			tasks.POST("/:id/labels/:label_id", labelHandler.AttachLabel)
			tasks.DELETE("/:id/labels/:label_id", labelHandler.DetachLabel)
		}

		// Label routes (protected)
		labels := api.Group("/labels")
		labels.Use(middleware.RequireAuth())
		{
			labels.DELETE("/:id", labelHandler.DeleteLabel)
		}

		// Dashboard routes (protected)
		dashboard := api.Group("/dashboard")
		dashboard.Use(middleware.RequireAuth())
		{
			dashboard.GET("/summary", dashboardHandler.GetSummary)
			dashboard.GET("/admin", dashboardHandler.GetAdminStats)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
