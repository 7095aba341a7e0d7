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
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/api"
	"github.com/jstittsworth/fpl-advisor/internal/api/handlers"
	"github.com/jstittsworth/fpl-advisor/internal/api/middleware"
	"github.com/jstittsworth/fpl-advisor/internal/providers"
	"github.com/jstittsworth/fpl-advisor/internal/services"
	"github.com/jstittsworth/fpl-advisor/pkg/config"
	"github.com/jstittsworth/fpl-advisor/pkg/database"
	"github.com/jstittsworth/fpl-advisor/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	logLevel := "info"
	if cfg.IsDevelopment() {
		logLevel = "debug"
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log := logger.InitLogger(logLevel, cfg.IsDevelopment())

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Core services
	cacheService := services.NewCacheService(redisClient)
	webSocketHub := services.NewWebSocketHub()
	go webSocketHub.Run()

	fplClient := providers.NewFPLClient(cfg.FPLBaseURL, cfg.FPLRateLimit, cfg.FPLTimeout, cfg.CircuitBreakerThreshold, log)
	ingestion := services.NewIngestionService(fplClient, db, cacheService, log)
	advisor := services.NewAdvisorService(log)

	fetchInterval, err := time.ParseDuration(cfg.DataFetchInterval)
	if err != nil {
		log.Warnf("Invalid fetch interval %q, using default 2h", cfg.DataFetchInterval)
		fetchInterval = 2 * time.Hour
	}

	dataFetcher := services.NewDataFetcherService(ingestion, fplClient, db, cacheService, webSocketHub, log, fetchInterval)
	if !cfg.SkipInitialDataFetch {
		if err := dataFetcher.Start(); err != nil {
			log.Errorf("Failed to start data fetcher: %v", err)
		}
		defer dataFetcher.Stop()
	}

	// Deadline alerts
	var smsService services.SMSService
	if cfg.SMSProvider == "twilio" {
		smsLimiter := services.NewSMSRateLimiter(5, time.Hour)
		smsService = services.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, smsLimiter, log)
	} else {
		smsService = services.NewMockSMSService(log)
	}
	alerts := services.NewAlertService(dataFetcher, ingestion, advisor, smsService, cfg.AlertPhoneNumber, cfg.AlertEntryID, cfg.AlertSchedule, log)
	if err := alerts.Start(); err != nil {
		log.Errorf("Failed to start alert service: %v", err)
	}
	defer alerts.Stop()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(db, dataFetcher)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	// API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, cfg, cacheService, fplClient, dataFetcher, ingestion, advisor, log)

	// WebSocket endpoint at root level (not under /api/v1)
	wsHandler := handlers.NewWebSocketHandler(webSocketHub)
	router.GET("/ws", middleware.OptionalAuth(cfg.JWTSecret), wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
