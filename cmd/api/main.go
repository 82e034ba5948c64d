package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/catalog"
	"github.com/ariefcatur/go-retail-backoffice/internal/config"
	"github.com/ariefcatur/go-retail-backoffice/internal/customers"
	"github.com/ariefcatur/go-retail-backoffice/internal/httpx"
	"github.com/ariefcatur/go-retail-backoffice/internal/inventory"
	kafkax "github.com/ariefcatur/go-retail-backoffice/internal/kafka"
	"github.com/ariefcatur/go-retail-backoffice/internal/logx"
	"github.com/ariefcatur/go-retail-backoffice/internal/notify"
	"github.com/ariefcatur/go-retail-backoffice/internal/orders"
	"github.com/ariefcatur/go-retail-backoffice/internal/promotions"
	"github.com/ariefcatur/go-retail-backoffice/internal/redisx"
	"github.com/ariefcatur/go-retail-backoffice/internal/reports"
	"github.com/ariefcatur/go-retail-backoffice/internal/storage"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	base, err := logx.New(logx.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	log := base.WithField("service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Entry) error {
	// DB
	db, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	// Redis (opsional)
	var (
		rdb         *redis.Client
		idem        *redisx.Idempotency
		rateLimiter *redisx.RateLimiter
	)
	if cfg.RedisEnabled() {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			// tetap jalan; idempotency & rate limit fail-open
			log.WithError(err).Warn("redis unreachable at startup")
		}
		idem = &redisx.Idempotency{RDB: rdb}
		rateLimiter = &redisx.RateLimiter{RDB: rdb, Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
	}

	// Activity sink
	store := &activity.Store{DB: db.DB}
	var (
		recorder activity.Recorder = store
		prod     *kafkax.Producer
	)
	if cfg.ActivitySink == config.SinkKafka || cfg.ActivitySink == config.SinkBoth {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.ActivityTopic, 1024, log)
		prod.Start()
		kr := &activity.KafkaRecorder{Producer: prod, Service: cfg.ServiceName}
		if cfg.ActivitySink == config.SinkKafka {
			recorder = kr
		} else {
			recorder = activity.Multi{store, kr}
		}
	}
	trail := &activity.Trail{Recorder: recorder, Log: log}

	var notifier notify.Notifier = notify.Log{Logger: log}
	if cfg.SMTPEnabled() {
		notifier = notify.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	router := httpx.NewRouter(httpx.Deps{
		Log:    log,
		Tokens: tokens,
		Auth: &auth.Service{
			Users:    &auth.UserRepo{DB: db.DB, Dialect: db.Dialect},
			Tokens:   tokens,
			Notifier: notifier,
			Activity: trail,
			Log:      log,
		},
		Catalog:     &catalog.Service{DB: db.DB, Dialect: db.Dialect, Activity: trail},
		Customers:   &customers.Service{DB: db.DB, Dialect: db.Dialect, Activity: trail},
		Promotions:  &promotions.Service{DB: db.DB, Dialect: db.Dialect, Activity: trail},
		Orders:      &orders.Service{DB: db.DB, Dialect: db.Dialect, Notifier: notifier, Activity: trail, Log: log},
		Inventory:   &inventory.Service{DB: db.DB, Dialect: db.Dialect, Activity: trail},
		Reports:     &reports.Service{DB: db.DB, Dialect: db.Dialect},
		Activity:    store,
		CORSOrigins: cfg.CORSOrigins,
		Idempotency: idem,
		RateLimiter: rateLimiter,
		Health:      db.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(sctx)
		if prod != nil {
			prod.Close()      // tutup inbox -> flush & close writer
			prod.WaitClosed() // drain
		}
		return err
	})
	return g.Wait()
}
