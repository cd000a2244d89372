package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nazotronic/Tourify/internal/api/handlers"
	"github.com/nazotronic/Tourify/internal/api/middleware"
	"github.com/nazotronic/Tourify/internal/cache"
	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/storage"
)

// SetupRouter configures and returns the main Gin engine. Storage and the
// task client are optional; the related endpoints degrade gracefully.
func SetupRouter(cfg *config.Config, database *mongo.Database, rdb *redis.Client, taskClient *asynq.Client) *gin.Engine {
	catalogCache := cache.NewCatalogCache(rdb, cfg.CatalogCacheTTL)

	authService, err := services.NewAuthService(database, cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize auth service: %v", err)
	}
	userService := services.NewUserService(database, cfg)
	tourService := services.NewTourService(database, cfg, catalogCache)
	bookingService := services.NewBookingService(database, cfg, taskClient)
	supportService := services.NewSupportService(database, cfg, taskClient)
	dashboardService := services.NewDashboardService(database, cfg)

	var s3Storage storage.IS3Storage
	if cfg.AwsS3Bucket != "" {
		s3Storage, err = storage.NewS3Storage(cfg)
		if err != nil {
			log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
		}
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	tourHandler := handlers.NewTourHandler(tourService, userService, s3Storage, taskClient)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	supportHandler := handlers.NewSupportHandler(supportService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Public routes
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/admin-login", authHandler.AdminLogin)
		v1.POST("/auth/logout", authHandler.Logout)

		// Catalog is public; a valid token lets saved preferences seed the filter
		v1.GET("/tours", middleware.OptionalAuthMiddleware(cfg.JwtSecret), tourHandler.ListTours)
		v1.GET("/tours/presets", tourHandler.ListPresets)
		v1.GET("/tours/:id", tourHandler.GetTour)

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/users/:id", userHandler.GetUser)
			authRequired.PUT("/users/:id", userHandler.UpdateUser)
			authRequired.PUT("/users/:id/password", authHandler.ChangePassword)
			authRequired.POST("/favourites/toggle", userHandler.ToggleFavourite)

			authRequired.GET("/bookings", bookingHandler.ListBookings)
			authRequired.GET("/bookings/:id", bookingHandler.GetBooking)
			authRequired.POST("/bookings", bookingHandler.CreateBooking)

			authRequired.GET("/support", supportHandler.ListMessages)
			authRequired.POST("/support", supportHandler.SendMessage)

			authRequired.GET("/dashboard", dashboardHandler.GetSummary)
		}

		// Admin routes. The middleware gate is a fast path; all services
		// verify the stored role again.
		adminRequired := v1.Group("/")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.GET("/users", userHandler.ListUsers)
			adminRequired.DELETE("/users/:id", userHandler.DeleteUser)

			adminRequired.POST("/tours", tourHandler.CreateTour)
			adminRequired.PUT("/tours/:id", tourHandler.UpdateTour)
			adminRequired.DELETE("/tours/:id", tourHandler.DeleteTour)
			adminRequired.POST("/tours/init", tourHandler.InitTours)
			adminRequired.POST("/tours/:id/upload-url", tourHandler.UploadURL)
			adminRequired.POST("/tours/:id/image", tourHandler.AttachImage)

			adminRequired.PUT("/bookings/:id", bookingHandler.UpdateBooking)
			adminRequired.PUT("/support/:id", supportHandler.UpdateMessage)
		}
	}

	return r
}

// EnsureIndexes creates the indexes the services rely on: unique emails and
// the lookups used by role-scoped listing.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = database.Collection("bookings").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create bookings user index: %w", err)
	}

	_, err = database.Collection("support_messages").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create support messages user index: %w", err)
	}
	return nil
}
