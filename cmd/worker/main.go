package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/restobooking/config"
	"github.com/Domenick1991/restobooking/internal/bootstrap"
	"github.com/Domenick1991/restobooking/internal/email"
	"github.com/Domenick1991/restobooking/internal/kafka"
	"github.com/Domenick1991/restobooking/internal/logger"
	"github.com/Domenick1991/restobooking/internal/rabbitmq"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.L().Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.WithComponent("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender := email.NewSender()
	switch {
	case cfg.Events.Broker == bootstrap.BrokerRabbitMQ:
		go func() {
			err := rabbitmq.Consume(ctx, cfg.RabbitMQ.URL, cfg.Kafka.NotificationsTopic, rabbitmq.BookingEvents(sender.Send))
			if err != nil {
				log.WithError(err).Error("consumer stopped")
			}
		}()
	case len(cfg.Kafka.Brokers) > 0 && cfg.Events.Broker != bootstrap.BrokerNone:
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		go func() {
			if err := consumer.Consume(ctx, kafka.BookingEvents(sender.Send)); err != nil {
				log.WithError(err).Error("consumer stopped")
			}
		}()
	default:
		log.Warn("no event broker configured, notifications disabled")
	}

	if cfg.Worker.ReconcileMinutes <= 0 {
		<-ctx.Done()
		log.Info("shutting down")
		return
	}

	// Storage is only opened for reconciliation.
	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}
	defer app.Close()

	ticker := time.NewTicker(time.Duration(cfg.Worker.ReconcileMinutes) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			report, err := app.Ledger.Reconcile(ctx)
			if err != nil {
				log.WithError(err).Error("reconcile failed")
				continue
			}
			if report.Changed() {
				log.WithField("report", report).Info("reconciled ledger")
			}
		case <-ctx.Done():
			log.Info("shutting down")
			return
		}
	}
}
