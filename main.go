package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nazotronic/Tourify/internal/api"
	"github.com/nazotronic/Tourify/internal/cache"
	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/email"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/storage"
	"github.com/nazotronic/Tourify/internal/tasks"
	"github.com/nazotronic/Tourify/internal/utils"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	if err := api.EnsureIndexes(startupCtx, mongoDb); err != nil {
		cancelStartup()
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Restore the admin role on the designated account, in case it was
	// lost during an incident or a fresh import
	authService, err := services.NewAuthService(mongoDb, cfg)
	if err != nil {
		cancelStartup()
		log.Fatalf("Failed to initialize auth service: %v", err)
	}
	if err := authService.EnsureAdminAccount(startupCtx); err != nil {
		log.Printf("WARNING: Admin role restoration failed: %v", err)
	}
	cancelStartup()

	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()

	var wg sync.WaitGroup
	var mainApiSrv *http.Server
	var taskSrv *asynq.Server

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		router := api.SetupRouter(cfg, mongoDb, redisClient, taskClient)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: router,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("API ListenAndServe error: %v", err)
			}
			fmt.Println("API server stopped.")
		}()
	}

	bgMode := func() {
		emailSender := email.NewSMTPSender(cfg)

		var s3Storage storage.IS3Storage
		if cfg.AwsS3Bucket != "" {
			s3Storage, err = storage.NewS3Storage(cfg)
			if err != nil {
				log.Fatalf("Failed to initialize S3 storage for worker: %v", err)
			}
		}

		catalogCache := cache.NewCatalogCache(redisClient, cfg.CatalogCacheTTL)
		tourService := services.NewTourService(mongoDb, cfg, catalogCache)

		processor := tasks.NewTaskProcessor(cfg, emailSender, s3Storage, tourService,
			findBookingFunc(mongoDb), findUserFunc(mongoDb))

		srv, mux := tasks.SetupServer(redisClient, processor)
		taskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Background task server starting...")
			if err := srv.Run(mux); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
			fmt.Println("Background task server stopped.")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified: %s", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if mainApiSrv != nil {
		fmt.Println("Shutting down API server...")
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}
	if taskSrv != nil {
		fmt.Println("Shutting down background task server...")
		taskSrv.Shutdown()
	}

	fmt.Println("Waiting for servers to stop...")
	wg.Wait()

	fmt.Println("Server gracefully stopped")
}

// findBookingFunc gives the task processor a direct booking lookup.
func findBookingFunc(database *mongo.Database) tasks.BookingLookup {
	return func(ctx context.Context, id utils.SixID) (*models.Booking, error) {
		var booking models.Booking
		err := database.Collection("bookings").FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, db.NotFound(fmt.Sprintf("booking %s not found", id.String()))
			}
			return nil, db.Unavailable(fmt.Sprintf("error finding booking %s", id.String()), err)
		}
		return &booking, nil
	}
}

// findUserFunc gives the task processor a direct user lookup.
func findUserFunc(database *mongo.Database) tasks.UserLookup {
	return func(ctx context.Context, id utils.SixID) (*models.User, error) {
		var user models.User
		err := database.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, db.NotFound(fmt.Sprintf("user %s not found", id.String()))
			}
			return nil, db.Unavailable(fmt.Sprintf("error finding user %s", id.String()), err)
		}
		return &user, nil
	}
}
