package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Lokesh1028/agentjobs/internal/api"
	"github.com/Lokesh1028/agentjobs/internal/app"
	"github.com/Lokesh1028/agentjobs/internal/config"
	"github.com/Lokesh1028/agentjobs/internal/db"
	"github.com/Lokesh1028/agentjobs/internal/logger"
	"github.com/Lokesh1028/agentjobs/internal/scheduler"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	godotenv.Load()

	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("agentjobs %s (%s)\n", version, commit)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	cfg := config.Load()
	log := logger.New(&logger.Config{
		Level:  logger.Level(cfg.LogLevel),
		Format: logger.Format(cfg.LogFormat),
	})
	log.SetDefault()

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	runServer(cfg, log)
}

func printUsage() {
	fmt.Println(`AgentJobs - Job Search and Resume Matching API

Usage:
  server [command]

Commands:
  (none)    Start the HTTP server
  version   Show version information
  help      Show this help message

Environment Variables:
  DATABASE_URL          sqlite://path or postgres:// URL (default: sqlite://./agentjobs.db)
  PORT                  Server port (default: 8000)
  DEFAULT_PAGE_SIZE     Default results per page (default: 20)
  MAX_PAGE_SIZE         Maximum results per page (default: 100)
  MATCH_THRESHOLD       Minimum score counted as a match (default: 30)
  REGIONS_FILE          YAML city to region table (default: built-in)
  CACHE_ENABLED         Cache the active job pool (default: false)
  REDIS_URL             Redis URL for the shared pool cache (optional)
  INDEX_REBUILD_SPEC    Cron spec of the search index rebuild (default: @every 6h)
  GEMINI_API_KEY        Gemini API key (optional, enables use_ai search)
  JWT_SECRET            Verifies bearer tokens when set (optional)`)
}

func runServer(cfg *config.Config, log *logger.Logger) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Migrations
	slog.Info("Running database migrations...")
	if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer a.Close()
	slog.Info("Database connected")

	var invalidator scheduler.Invalidator
	if a.Cache != nil {
		invalidator = a.Cache
	}
	sched := scheduler.New(cfg.IndexRebuildSpec, a.Store, invalidator, log)
	if err := sched.Start(ctx); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	router := api.SetupRouter(cfg, a.Services(log))

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting agentjobs service", "address", addr, "version", version)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	stop()
	sched.Stop()
	slog.Info("Server stopped")
}
