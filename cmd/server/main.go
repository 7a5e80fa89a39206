package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kaustubh0601/Task-Management/internal/config"
	"github.com/kaustubh0601/Task-Management/internal/database"
	"github.com/kaustubh0601/Task-Management/internal/handlers"
	"github.com/kaustubh0601/Task-Management/internal/middleware"
	"github.com/kaustubh0601/Task-Management/internal/repository"
	"github.com/kaustubh0601/Task-Management/internal/services"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo)
	userService := services.NewUserService(userRepo, taskRepo)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecret)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)

	router := setupRouter(cfg, authHandler, taskHandler, userHandler, userRepo)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

func setupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	userHandler *handlers.UserHandler,
	userRepo repository.UserRepository,
) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(cfg.JWTSecret, userRepo))
		{
			authed.GET("/auth/me", authHandler.GetCurrentUser)
			authed.PUT("/auth/me", authHandler.UpdateCurrentUser)

			authed.GET("/users/assignable", userHandler.ListAssignableUsers)

			tasks := authed.Group("/tasks")
			{
				tasks.GET("", taskHandler.ListTasks)
				tasks.POST("", taskHandler.CreateTask)
				tasks.GET("/:id", taskHandler.GetTask)
				tasks.PATCH("/:id", taskHandler.UpdateTask)
				tasks.PATCH("/:id/status", taskHandler.SetTaskStatus)
				tasks.DELETE("/:id", taskHandler.DeleteTask)
				tasks.POST("/:id/notes", taskHandler.AddNote)
			}

			users := authed.Group("/users")
			users.Use(middleware.RequireAdmin())
			{
				users.GET("", userHandler.ListUsers)
				users.POST("", userHandler.CreateUser)
				users.GET("/:id", userHandler.GetUser)
				users.PUT("/:id", userHandler.UpdateUser)
				users.DELETE("/:id", userHandler.DeleteUser)
			}
		}
	}

	return router
}
