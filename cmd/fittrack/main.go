package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/deload"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/server"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "open the database, apply migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("FitTrack starting", "version", Version)

	// Open database (runs migrations)
	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database.Path(), cfg.Database.SchemaVersion(storage.SchemaVersion))
	if err != nil {
		log.Error("failed to open database", "path", cfg.Database.Path(), "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database opened", "path", db.Path())

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	repo := repository.New(db, log)
	if cfg.SeedSampleData {
		seeded, err := repo.SeedSampleData(ctx)
		if err != nil {
			log.Warn("seeding sample data failed", "error", err)
		} else if seeded {
			log.Info("sample data added")
		}
	}

	scheduler := deload.NewScheduler(repo, nil)
	open := workout.NewRegistry()
	srv := server.New(repo, workout.NewService(repo, scheduler, log), scheduler, open, server.Options{
		APIKey:        cfg.Auth.APIKey,
		AllowedOrigin: cfg.Server.AllowedOrigin,
	}, log)

	addr := cfg.Server.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", "addr", addr, "error", err)
		os.Exit(1)
	}
	log.Info("server starting", "addr", addr)

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if n := open.Len(); n > 0 {
		log.Warn("abandoning open workouts", "count", n)
	}
	open.CloseAll()
	log.Info("server stopped")
}
