package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazelvale/economica/internal/archive"
	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database"
	"github.com/hazelvale/economica/internal/economy"
	"github.com/hazelvale/economica/internal/logger"
	"github.com/hazelvale/economica/internal/pricefeed"
	"github.com/hazelvale/economica/internal/scheduler"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))

	slog.Info("Starting economica",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbStart := time.Now()
	db, err := database.New(ctx, database.DBConfig(cfg.DB))
	if err != nil {
		slog.Error("Database connection failed",
			slog.Any("error", err),
			slog.Duration("attempted_for", time.Since(dbStart)))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStart)))

	feed, err := pricefeed.New(cfg.Feed)
	if err != nil {
		slog.Error("Failed to build price feed", slog.Any("error", err))
		os.Exit(1)
	}

	var archiveSvc *archive.Service
	if cfg.Archive.Enabled {
		archiveSvc, err = archive.New(ctx, cfg.Archive)
		if err != nil {
			slog.Error("Failed to build archive service", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("Archive export enabled", slog.String("bucket", cfg.Archive.Bucket))
	}

	engine := economy.New(db, cfg, feed, nil)

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	sched := scheduler.New(engine, archiveSvc)
	if err := sched.Start(runCtx); err != nil {
		slog.Error("Failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer sched.Stop()

	slog.Info("Engine is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down...")
}
