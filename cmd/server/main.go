package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"ridelink/internal/config"
	"ridelink/internal/handlers"
	"ridelink/internal/identity"
	"ridelink/internal/middleware"
	"ridelink/internal/services"
	"ridelink/pkg/keyvalue"
	"ridelink/pkg/logger"
	"ridelink/pkg/payment"
	"ridelink/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		appLogger.Fatalf("Failed to initialize storage: %v", err)
	}

	provider := newIdentityProvider(cfg, store)
	gateway := newGateway(cfg, appLogger)

	authService := services.NewAuthService(store, provider, cfg.Security.JWTSecret, cfg.Security.TokenTTL, appLogger)
	paymentService := services.NewPaymentService(store, gateway, cfg.Payment.Currency, appLogger)
	prefsService := services.NewPrefsService(store, appLogger)

	// Load whatever session survived the last run before serving.
	authService.Restore(context.Background())

	authHandler := handlers.NewAuthHandler(authService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	prefsHandler := handlers.NewPrefsHandler(prefsService)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, authHandler, authService)
		routes.SetupPaymentRoutes(v1, paymentHandler, authService)
		routes.SetupPrefsRoutes(v1, prefsHandler, authService)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.Infof("Starting %s on %s", cfg.App.Name, addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		appLogger.Fatalf("Server stopped: %v", err)
	}
}

func newStore(cfg *config.Config) (keyvalue.Store, error) {
	switch cfg.Storage.Backend {
	case "redis":
		return keyvalue.NewRedisStore(&keyvalue.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			KeyPrefix:    cfg.Redis.KeyPrefix,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
	case "memory":
		return keyvalue.NewMemoryStore(), nil
	default:
		return keyvalue.NewFileStore(cfg.Storage.FilePath)
	}
}

func newIdentityProvider(cfg *config.Config, store keyvalue.Store) identity.Provider {
	if cfg.Identity.Provider == "local" {
		return identity.NewLocalProvider(store)
	}
	return identity.NewMockProvider()
}

func newGateway(cfg *config.Config, appLogger *logger.Logger) payment.Provider {
	switch cfg.Payment.Provider {
	case "stripe":
		return payment.NewStripeProvider(cfg.Payment.StripeSecretKey)
	case "razorpay":
		return payment.NewRazorpayProvider(cfg.Payment.RazorpayKeyID, cfg.Payment.RazorpaySecret)
	default:
		appLogger.Warn("Using simulated payment gateway; charges are not real")
		return payment.NewSimulatedProvider(cfg.Payment.SimulatedRate, cfg.Payment.SimulatedLatency)
	}
}
