package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shaxzod67/Sunnat/internal/cache"
	"github.com/shaxzod67/Sunnat/internal/cart"
	"github.com/shaxzod67/Sunnat/internal/catalog"
	"github.com/shaxzod67/Sunnat/internal/checkout"
	"github.com/shaxzod67/Sunnat/internal/events"
	"github.com/shaxzod67/Sunnat/internal/orders"
	"github.com/shaxzod67/Sunnat/internal/session"
	"github.com/shaxzod67/Sunnat/internal/storage"
	"github.com/shaxzod67/Sunnat/internal/web"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "sunnat"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	mongoDB, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	catalogRepo := catalog.NewRepository(mongoDB)
	snapshotCache := cache.NewRedisCache(redisClient)
	feed := catalog.NewFeed(catalogRepo, snapshotCache)

	shopperSession := session.New(cart.NewStore(), feed)
	if err := shopperSession.Start(ctx); err != nil {
		log.Fatalf("Failed to activate catalog subscription: %v", err)
	}
	defer shopperSession.Close()
	log.Printf("Catalog subscription active")

	ordersRepo := orders.NewRepository(mongoDB)
	publisher := events.NewPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	composer := checkout.NewComposer(ordersRepo, publisher)

	router := web.NewRouter(
		web.NewProductHandler(catalogRepo),
		web.NewCartHandler(shopperSession),
		web.NewCheckoutHandler(composer, shopperSession),
		web.NewOrdersHandler(ordersRepo),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	shopperSession.Close()
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Printf("error disconnecting MongoDB: %v", err)
	}
	log.Println("storefront stopped")
}
