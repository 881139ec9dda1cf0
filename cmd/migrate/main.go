package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database"
	"github.com/hazelvale/economica/internal/logger"
	"github.com/hazelvale/economica/internal/migration"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "legacy mongo connection string")
	mongoName := flag.String("mongo-db", "economy", "legacy mongo database name")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig(cfg.DB))
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := migration.NewMigrator(db.BunDB(), cfg.Economy, *mongoURI, *mongoName)
	if err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}
}
