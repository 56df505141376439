package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/studiobooking/config"
	"github.com/Domenick1991/studiobooking/internal/bootstrap"
	"github.com/Domenick1991/studiobooking/internal/cache"
	"github.com/Domenick1991/studiobooking/internal/kafka"
	"github.com/Domenick1991/studiobooking/internal/repository"
	"github.com/Domenick1991/studiobooking/internal/service/booking"
	"github.com/Domenick1991/studiobooking/internal/service/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	notifyCfg, err := config.LoadNotifyConfig()
	if err != nil {
		log.Fatalf("load notify config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)

	catalogService := catalog.NewCatalogService(catalogRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		auditRepo,
		catalogRepo,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Booking.SlotLockTTLSeconds)*time.Second,
		booking.WithOperatorAddress(notifyCfg.OperatorAddr),
	)

	if err := bootstrap.Run(ctx, cfg, bookingService, catalogService, producer); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
