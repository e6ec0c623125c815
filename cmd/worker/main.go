package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/email"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "error", err)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "airtickets-worker"})

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("kafka brokers are not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	sender := email.NewSender(log)

	log.Info("worker started", "topic", cfg.Kafka.NotificationsTopic, "group", cfg.Kafka.GroupID)
	if err := consumer.Consume(ctx, sender.Send); err != nil {
		log.Error("consumer stopped", "error", err)
		consumer.Close()
		os.Exit(1)
	}
	log.Info("worker stopped")
}
