// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/domain/cart"
	"github.com/veggiefresh/grocery-backend/internal/domain/checkout"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/domain/payment"
	"github.com/veggiefresh/grocery-backend/internal/domain/product"
	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"github.com/veggiefresh/grocery-backend/internal/infrastructure/database/postgres"
	"github.com/veggiefresh/grocery-backend/internal/infrastructure/database/redis"
	"github.com/veggiefresh/grocery-backend/internal/infrastructure/events"
	"github.com/veggiefresh/grocery-backend/internal/infrastructure/sms"
	httpserver "github.com/veggiefresh/grocery-backend/internal/interfaces/http"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/handlers"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/routes"
	"github.com/veggiefresh/grocery-backend/internal/pkg/auth"
	"github.com/veggiefresh/grocery-backend/internal/pkg/logger"
	"github.com/veggiefresh/grocery-backend/internal/pkg/pdf"
)

func main() {
	// Money is sent as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("starting")

	// Connect to database
	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), log)

	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("index creation failed")
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("data seeding failed")
		} else if err := redis.NewCategoryCache(redisClient, log).Invalidate(context.Background()); err != nil {
			log.WithError(err).Warn("failed to invalidate category cache")
		}
		_ = migration.GetTableInfo()
	}

	// Order events go to the broker (or the log) and to live admin feeds
	hub := events.NewHub(log)
	var broker order.EventPublisher = events.NewLogPublisher(log)
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.External.Kafka.Brokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg, log)
		broker = kafkaPublisher
		log.WithField("topic", cfg.External.Kafka.Topic).Info("publishing order events to kafka")
	}
	publisher := order.FanOut{broker, hub}

	h, guards := wire(cfg, db, redisClient, hub, publisher, log)

	server := httpserver.NewServer(cfg, h, guards, map[string]httpserver.HealthChecker{
		"database": db,
		"redis":    redisClient,
	}, log)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("failed to shutdown HTTP server gracefully")
	}

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.WithError(err).Warn("failed to close kafka writer")
		}
	}

	log.Info("server shutdown completed")
}

// wire builds repositories, services and handlers
func wire(
	cfg *config.Config,
	db *postgres.DB,
	redisClient *redis.Client,
	hub *events.Hub,
	publisher order.EventPublisher,
	log *logrus.Logger,
) (*routes.Handlers, routes.Guards) {
	gdb := db.GetDB()

	// Repositories
	userRepo := postgres.NewUserRepository(gdb)
	addressRepo := postgres.NewAddressRepository(gdb)
	otpRepo := postgres.NewOTPRepository(gdb)
	productRepo := postgres.NewProductRepository(gdb)
	cartRepo := postgres.NewCartRepository(gdb)
	orderRepo := postgres.NewOrderRepository(gdb)
	txManager := postgres.NewTxManager(gdb)

	// Services
	userService := user.NewService(userRepo, cfg, log.WithField("service", "user"))
	otpService := user.NewOTPService(userRepo, otpRepo, sms.NewSender(cfg, log), cfg, log.WithField("service", "otp"))
	googleService := user.NewGoogleService(userRepo, cfg, log.WithField("service", "google"))
	addressService := user.NewAddressService(addressRepo, log.WithField("service", "address"))
	productService := product.NewService(productRepo, redis.NewCategoryCache(redisClient, log), log.WithField("service", "product"))
	cartService := cart.NewService(cartRepo, productService, log.WithField("service", "cart"))
	orderService := order.NewService(orderRepo, publisher, log.WithField("service", "order"))
	checkoutService := checkout.NewService(
		cartRepo,
		orderRepo,
		txManager,
		addressService,
		payment.NewGateway(cfg, log),
		publisher,
		cfg,
		log.WithField("service", "checkout"),
	)

	handlerLog := log.WithField("component", "http")
	h := &routes.Handlers{
		Auth:       handlers.NewAuthHandler(userService, otpService, googleService, handlerLog),
		Profile:    handlers.NewUserProfileHandler(userService, handlerLog),
		Address:    handlers.NewUserAddressHandler(addressService, handlerLog),
		Product:    handlers.NewProductHandler(productService, handlerLog),
		Cart:       handlers.NewCartHandler(cartService, handlerLog),
		Checkout:   handlers.NewCheckoutHandler(checkoutService, handlerLog),
		Order:      handlers.NewOrderHandler(orderService, handlerLog),
		Invoice:    handlers.NewInvoiceHandler(orderService, pdf.NewService(cfg), handlerLog),
		AdminOrder: handlers.NewAdminOrderHandler(orderService, hub, allowedOrigin(cfg), handlerLog),
	}

	guards := routes.Guards{
		Tokens:        auth.NewJWTManager(cfg),
		Limiter:       redis.NewRateLimiter(redisClient, time.Minute),
		AuthRateLimit: cfg.Security.AuthRateLimitPerMinute,
		Log:           log.WithField("component", "rate_limit"),
	}

	return h, guards
}

// allowedOrigin admits websocket clients from the configured CORS origins
func allowedOrigin(cfg *config.Config) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range cfg.Security.CORSAllowedOrigins {
			if allowed == "*" || strings.EqualFold(allowed, origin) {
				return true
			}
		}
		return false
	}
}
