// File: domostay/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"domostay/config"
	"domostay/database"
	reservationRepo "domostay/database/repository/reservation"
	"domostay/handlers"
	"domostay/middleware"
	"domostay/routes"
	"domostay/services/booking"
	"domostay/services/session"
	"domostay/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()

	cacheTTL := time.Duration(config.AppConfig.AvailabilityCacheTTLSeconds) * time.Second
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute

	// Redis-backed cache and session store when configured, in-process
	// otherwise. The in-process pair is single-node only.
	var availabilityCache booking.AvailabilityCache
	var sessionStore session.Store
	var redisClients []*redis.Client
	if utils.RedisConfigured() {
		utils.InitCache()
		utils.InitSessionCache()
		availabilityCache = booking.NewRedisAvailabilityCache(utils.GetCacheClient(), cacheTTL)
		sessionStore = session.NewRedisStore(utils.GetSessionCacheClient(), sessionTTL)
		redisClients = []*redis.Client{utils.GetCacheClient(), utils.GetSessionCacheClient()}
	} else {
		logger.Sugar().Info("main: REDIS_ADDR not set, using in-process cache and session store")
		availabilityCache = booking.NewMemoryAvailabilityCache(cacheTTL)
		sessionStore = session.NewMemoryStore(sessionTTL)
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories and services.
	repo := reservationRepo.NewGormReservationRepo(database.DB)
	bookingService := &booking.DefaultBookingService{
		Repo:       repo,
		Catalog:    booking.LoadCatalog(),
		Cache:      availabilityCache,
		MaxRetries: config.AppConfig.CreateMaxRetries,
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	sessionHandler := handlers.NewSessionHandler(sessionStore)

	routes.RegisterRoutes(router, bookingHandler, sessionHandler)
	utils.StartHealthMonitor(database.DB, redisClients)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
