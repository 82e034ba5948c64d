// Command audit consumes activity events from Kafka and writes them to the
// activity_logs table. The API publishes there when ACTIVITY_SINK is kafka or both.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/config"
	kafkax "github.com/ariefcatur/go-retail-backoffice/internal/kafka"
	"github.com/ariefcatur/go-retail-backoffice/internal/logx"
	"github.com/ariefcatur/go-retail-backoffice/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
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
	log := base.WithField("service", cfg.ServiceName+"-audit")
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	sink := &activity.Sink{Store: &activity.Store{DB: db.DB}, Log: log, Timeout: 3 * time.Second}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, cfg.ActivityTopic, cfg.AuditWorkers, log)

	log.WithFields(logrus.Fields{
		"group":   cfg.AuditGroup,
		"topic":   cfg.ActivityTopic,
		"workers": cfg.AuditWorkers,
	}).Info("audit consumer started")
	// Start kembali nil saat ctx dibatalkan (sinyal)
	if err := cons.Start(ctx, sink.HandleMessage); err != nil {
		log.WithError(err).Error("consumer exit")
		stop()
		db.Close()
		os.Exit(1)
	}
	log.Info("audit consumer stopped")
}
