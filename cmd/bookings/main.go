package main

import (
	"context"

	"staybook/internal/bookings/events"
	"staybook/internal/bookings/handler"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/service"
	"staybook/internal/bookings/validator"
	"staybook/pkg/app"
	"staybook/pkg/auth"
	"staybook/pkg/config"
	"staybook/pkg/imageuri"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	bookingService := initServices(cfg, publisher)

	if cfg.AuthJWTSecret == "" {
		cfg.Log.Warn("AUTH_JWT_SECRET is not set, every status update will be rejected")
	}
	guard := auth.NewJWTGuard(cfg.AuthJWTSecret)

	serverApp.SetUploadPaths(handler.UploadPaymentPath)
	serverApp.OnShutdown("mongo-redis", func(context.Context) error {
		cfg.Client.GracefulShutdown(cfg.Log)
		return nil
	})
	serverApp.SetApp(handler.NewBookingHandler(bookingService, guard, cfg.Log))
	serverApp.Run()
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.BookingEventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NoopPublisher{}
	}

	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kcfg, cfg.BookingEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kcfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	// registered before the mongo hook so pending events flush first
	serverApp.OnShutdown("kafka-producer", func(context.Context) error {
		return producer.Close()
	})

	cfg.Log.Info("Booking events enabled", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, cfg.Log, cfg.WriteTimeout)
}

func initServices(cfg *config.Config, publisher events.Publisher) service.BookingService {
	bookingService := service.NewBookingService(
		service.Repositories{
			Bookings:   repository.NewMongoBookingRepository(cfg),
			Locks:      repository.NewBookingLockRepository(cfg),
			Properties: repository.NewMongoPropertyRepository(cfg),
			Rooms:      repository.NewMongoRoomRepository(cfg),
		},
		validator.NewBookingValidator(cfg.Log),
		imageuri.NewDataURIEncoder(),
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
