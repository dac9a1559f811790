package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/deload"
	fitmcp "github.com/claude/fittrack/internal/mcp"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/workout"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and FITTRACK_* env vars if empty)")
	apiURL := flag.String("url", "", "read through a running fittrack server at this URL instead of opening the database")
	apiKey := flag.String("api-key", os.Getenv("FITTRACK_AUTH_API_KEY"), "API key for -url (default $FITTRACK_AUTH_API_KEY)")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds fitmcp.DataSource
	if *apiURL != "" {
		ds = fitmcp.NewHTTPClient(*apiURL, *apiKey)
		log.Info("using fittrack server", "url", *apiURL)
	} else {
		var (
			cfg *config.Config
			err error
		)
		if *configPath == "" {
			cfg, err = config.FromEnv()
		} else {
			cfg, err = config.Load(*configPath)
		}
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.Open(context.Background(), cfg.Database.Path(), cfg.Database.SchemaVersion(storage.SchemaVersion))
		if err != nil {
			log.Error("failed to open database", "path", cfg.Database.Path(), "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := repository.New(db, log)
		scheduler := deload.NewScheduler(repo, nil)
		ds = fitmcp.NewLocal(repo, workout.NewService(repo, scheduler, log), scheduler)
		log.Info("database opened", "path", db.Path())
	}

	s := fitmcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
