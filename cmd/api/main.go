package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/garmenttrack/go-order-tracker/internal/catalog"
	"github.com/garmenttrack/go-order-tracker/internal/config"
	"github.com/garmenttrack/go-order-tracker/internal/httpx"
	kafkax "github.com/garmenttrack/go-order-tracker/internal/kafka"
	"github.com/garmenttrack/go-order-tracker/internal/orders"
	"github.com/garmenttrack/go-order-tracker/internal/postgres"
	"github.com/garmenttrack/go-order-tracker/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg)
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

	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024, log)
	prod.Start(ctx)

	products := &catalog.Repo{DB: db}
	svc := orders.NewService(&orders.Repo{DB: db}, products, prod, cfg.ServiceName)

	router := httpx.NewRouter(log)
	oh := &httpx.OrdersHandler{
		Service:    svc,
		Cache:      rdb,
		Log:        log,
		Production: cfg.Production(),
	}
	oh.Register(router)
	ph := &httpx.ProductsHandler{
		Repo:       products,
		Log:        log,
		Production: cfg.Production(),
	}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // stop intake, flush remainder
	cancel()
	prod.WaitClosed()
}

func newLogger(cfg config.Config) *zap.Logger {
	if cfg.Production() {
		log, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return log
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return log
}
