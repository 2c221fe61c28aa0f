package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawnest/service-marketplace/internal/application"
	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/config"
	"github.com/pawnest/service-marketplace/internal/database"
	bookingDomain "github.com/pawnest/service-marketplace/internal/domain/booking"
	"github.com/pawnest/service-marketplace/internal/handler"
	"github.com/pawnest/service-marketplace/internal/health"
	"github.com/pawnest/service-marketplace/internal/logger"
	"github.com/pawnest/service-marketplace/internal/middleware"
	"github.com/pawnest/service-marketplace/internal/repository"
	"github.com/pawnest/service-marketplace/internal/storage"
)

const serviceName = "service-marketplace"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.PetModel{},
			&repository.ListingModel{},
			&repository.BookingModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL)

	// Initialize blob storage for uploaded photos
	blobStore, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.BaseURL, log)
	if err != nil {
		log.Fatal("failed to initialize blob storage", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	petRepo := repository.NewGormPetRepository(db)
	listingRepo := repository.NewGormListingRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)

	// Initialize pricing strategy
	pricingStrategy := bookingDomain.NewStandardPricingStrategy()

	// Initialize application services
	authService := application.NewAuthService(userRepo, jwtManager, log)
	petService := application.NewPetService(petRepo, blobStore, log)
	listingService := application.NewListingService(listingRepo, blobStore, log)
	bookingService := application.NewBookingService(bookingRepo, listingRepo, petRepo, pricingStrategy, log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	petHandler := handler.NewPetHandler(petService, blobStore)
	listingHandler := handler.NewListingHandler(listingService, blobStore)
	bookingHandler := handler.NewBookingHandler(bookingService, blobStore)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.SecurityHeaders())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Serve uploaded photos
	router.Static("/uploads", blobStore.Dir())

	// Register API routes
	authRequired := middleware.Auth(jwtManager, userRepo)
	optionalAuth := middleware.OptionalAuth(jwtManager, userRepo)
	ownerOnly := middleware.RequireRole(auth.RoleOwner)
	sitterOnly := middleware.RequireRole(auth.RoleSitter)

	api := &router.RouterGroup
	authHandler.RegisterRoutes(api, authRequired)
	petHandler.RegisterRoutes(api, authRequired, ownerOnly)
	listingHandler.RegisterRoutes(api, optionalAuth, authRequired, sitterOnly)
	bookingHandler.RegisterRoutes(api, authRequired, ownerOnly, sitterOnly)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
