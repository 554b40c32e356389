package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"safeher/internal/config"
	"safeher/internal/handlers"
	"safeher/internal/middleware"
	mongorepo "safeher/internal/repositories/mongodb"
	"safeher/internal/services"
	"safeher/pkg/cache"
	"safeher/pkg/database"
	"safeher/pkg/logger"
	"safeher/pkg/maps"
	"safeher/pkg/sms"
	"safeher/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize MongoDB
	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongoDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx, mongoDB.Database); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure indexes")
	}
	cancel()

	// Initialize Redis cache
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.WithError(err).Warn("Redis unavailable, danger zone caching disabled")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Initialize SMS provider
	var smsProvider sms.SMSProvider
	switch cfg.SMS.Provider {
	case "sns":
		smsProvider, err = sms.NewAWSSNSProvider(cfg.SMS.AWSRegion, cfg.SMS.SNSSenderID)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize SNS provider")
		}
	default:
		smsProvider = sms.NewTwilioProvider(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.TwilioFromNumber)
	}

	// Initialize geocoding provider
	var geocoder maps.GeocodingProvider
	if cfg.Maps.GoogleAPIKey != "" {
		geocoder, err = maps.NewGoogleMapsProvider(cfg.Maps.GoogleAPIKey)
		if err != nil {
			appLogger.WithError(err).Warn("Google Maps unavailable, reverse geocoding disabled")
		}
	}

	// Initialize repositories
	guardianRepo := mongorepo.NewGuardianRepository(mongoDB.Database)
	incidentRepo := mongorepo.NewIncidentRepository(mongoDB.Database)
	dangerZoneRepo := mongorepo.NewDangerZoneRepository(mongoDB.Database)

	// Initialize services
	matchingService := services.NewGuardianMatchingService(guardianRepo, incidentRepo, cfg.Safety, appLogger)
	notificationService := services.NewNotificationService(guardianRepo, incidentRepo, smsProvider, appLogger)
	evidenceService := services.NewEvidenceService(geocoder, appLogger)
	sosService := services.NewSOSService(incidentRepo, matchingService, notificationService, evidenceService, cfg.Safety, appLogger)
	zoneService := services.NewDangerZoneService(dangerZoneRepo, redisCache, cfg.Redis.ZoneCacheTTL, cfg.Safety, appLogger)

	// Initialize handlers
	sosHandler := handlers.NewSOSHandler(sosService)
	guardianHandler := handlers.NewGuardianHandler(matchingService, guardianRepo)
	zoneHandler := handlers.NewDangerZoneHandler(zoneService, cfg.Safety.DefaultZoneRadiusKM)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()

	// Global middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupSOSRoutes(v1, sosHandler, cfg.Security.JWTSecret)
		routes.SetupGuardianRoutes(v1, guardianHandler, cfg.Security.JWTSecret)
		routes.SetupDangerZoneRoutes(v1, zoneHandler, cfg.Security.JWTSecret)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	appLogger.WithField("addr", addr).Info("Starting server")
	if err := http.ListenAndServe(addr, router); err != nil {
		appLogger.WithError(err).Fatal("Server stopped")
	}
}
