package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	audithandler "staybook/internal/audit/handler"
	auditrepo "staybook/internal/audit/repository"
	"staybook/pkg/config"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
)

const ServiceName = "booking-audit"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Error("Invalid Kafka configuration", "error", err)
		return
	}
	kcfg.LogConfiguration(cfg.Log)

	eventHandler := audithandler.NewBookingEventHandler(auditrepo.NewMongoBookingEventRepository(cfg), cfg.Log)

	consumer, err := kafka.NewConsumer(kcfg, cfg.BookingEventsTopic, eventHandler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka consumer", "error", err)
		return
	}
	if kcfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting booking audit consumer", "topic", cfg.BookingEventsTopic, "group_id", kcfg.ConsumerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Booking audit consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Booking audit consumer stopped")
}
