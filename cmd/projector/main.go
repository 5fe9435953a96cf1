package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/garmenttrack/go-order-tracker/internal/config"
	kafkax "github.com/garmenttrack/go-order-tracker/internal/kafka"
	"github.com/garmenttrack/go-order-tracker/internal/orders"
	"github.com/garmenttrack/go-order-tracker/internal/postgres"
	"github.com/garmenttrack/go-order-tracker/internal/projector"
	"github.com/garmenttrack/go-order-tracker/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := loggerFor(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &projector.Service{
		Store:       &orders.Repo{DB: db},
		Redis:       rdb,
		Log:         log,
		ServiceName: cfg.ServiceName + "-projector",
	}

	group := getenv("PROJECTOR_GROUP", "order-projector")
	workers := mustAtoi(os.Getenv("PROJECTOR_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderEvents, workers, log)

	go func() {
		log.Info("projector consumer started",
			zap.String("group", group),
			zap.String("topic", orders.TopicOrderEvents),
			zap.Int("workers", workers),
		)
		if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down projector")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func loggerFor(cfg config.Config) (*zap.Logger, error) {
	if cfg.Production() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 {
		return def
	}
	return i
}
