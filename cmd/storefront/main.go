package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mimasafoods/storefront/internal/cart"
	"github.com/mimasafoods/storefront/internal/cartconfig"
	"github.com/mimasafoods/storefront/internal/catalog"
	"github.com/mimasafoods/storefront/internal/checkout"
	"github.com/mimasafoods/storefront/internal/db"
	httpserver "github.com/mimasafoods/storefront/internal/http"
	"github.com/mimasafoods/storefront/internal/notify"
	"github.com/mimasafoods/storefront/internal/order"
	"github.com/mimasafoods/storefront/internal/payment"
	"github.com/mimasafoods/storefront/internal/pricing"
	"github.com/mimasafoods/storefront/internal/sequence"
)

func main() {
	// Local development keeps secrets in .env; deployments set real env vars.
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)

	// DB
	dsn := db.GetDSN()
	if err := db.RunMigrations(dsn, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}
	database := db.MustOpen()
	defer database.Close()

	productRepo := catalog.NewRepository(database)
	cartRepo := cart.NewRepository(database)
	configRepo := cartconfig.NewRepository(database)
	orderRepo := order.NewRepository(database)
	seqRepo := sequence.NewRepository(database)

	configProvider := cartconfig.NewProvider(configRepo, 30*time.Second, logger)
	resolver := pricing.NewResolver(configProvider)

	// Redis holds in-flight checkout attempts
	redisClient := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
	})
	defer redisClient.Close()
	attempts := checkout.NewRedisAttemptStore(redisClient, 15*time.Minute)

	// Payment gateway
	gateway := payment.NewClient(payment.Config{
		KeyID:     mustGetEnv("RAZORPAY_KEY_ID", logger),
		KeySecret: mustGetEnv("RAZORPAY_KEY_SECRET", logger),
	}, logger)
	verifier := payment.NewVerifier(os.Getenv("RAZORPAY_KEY_SECRET"), gateway)

	// RabbitMQ
	rabbitConn := notify.MustDialRabbit()
	defer rabbitConn.Close()

	publisher, err := notify.NewPublisher(rabbitConn)
	if err != nil {
		logger.Fatalf("notify publisher: %v", err)
	}
	defer publisher.Close()

	// Context for consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := notify.NewBrevoMailer(notify.BrevoConfig{
		APIKey:      mustGetEnv("BREVO_API_KEY", logger),
		SenderName:  getEnv("MAIL_SENDER_NAME", "Mimasa Foods"),
		SenderEmail: mustGetEnv("MAIL_SENDER_EMAIL", logger),
		BCC:         os.Getenv("MAIL_BCC"),
	})
	if err := notify.StartOrderConfirmedConsumer(ctx, rabbitConn, mailer, logger); err != nil {
		logger.Fatalf("start consumer: %v", err)
	}

	orchestrator := checkout.NewOrchestrator(
		cartRepo, resolver, gateway, verifier, orderRepo,
		order.NewNumberGenerator(seqRepo), attempts, publisher, logger,
	)

	// HTTP
	mux := httpserver.NewRouter(httpserver.RouterConfig{
		Products:   productRepo,
		Carts:      cartRepo,
		Config:     configRepo,
		Provider:   configProvider,
		Resolver:   resolver,
		Orders:     orderRepo,
		Checkout:   orchestrator,
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		Logger:     logger,
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Printf("storefront listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustGetEnv(key string, logger *log.Logger) string {
	v := os.Getenv(key)
	if v == "" {
		logger.Fatalf("%s is required", key)
	}
	return v
}
