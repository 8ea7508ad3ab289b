package main

import (
	"context"
	"os"
	"time"

	mongoMigration "staybook/internal/migrations/mongo"
	"staybook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Mongo migration job")
	err := migrateMongo(cfg)
	if err != nil {
		cfg.Log.Error("Migration failed", "error", err)
	} else {
		cfg.Log.Info("Migration completed successfully")
	}

	cfg.GracefulShutdown()
	if err != nil {
		os.Exit(1)
	}
}

func migrateMongo(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	return mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
}
