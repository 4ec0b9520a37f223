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

	"github.com/tabmemory/tabmemory/app/api"
	"github.com/tabmemory/tabmemory/app/cfg"
	"github.com/tabmemory/tabmemory/app/database"
	"github.com/tabmemory/tabmemory/app/digests"
	"github.com/tabmemory/tabmemory/app/generation"
	"github.com/tabmemory/tabmemory/app/tabs"
	"github.com/tabmemory/tabmemory/app/tasks"
)

func main() {
	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting TabMemory server", "version", appCfg.Version)

	// Database connection
	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Connected to database")

	// Apply schema migrations
	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	// Initialize repositories
	tabRepo := database.NewTabRepository(db)
	digestRepo := database.NewDigestRepository(db)

	// Initialize generation client
	if appCfg.AnthropicAPIKey == "" {
		slog.Warn("ANTHROPIC_API_KEY is not set, summaries and digests will fail")
	}
	genClient := generation.NewAnthropicClient(appCfg.AnthropicAPIKey, appCfg.AnthropicModel)

	// Initialize and start background task scheduler
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "queue_size", appCfg.TaskQueueSize)
	taskScheduler := tasks.NewScheduler(appCfg.WorkerCount, appCfg.TaskQueueSize)
	taskScheduler.Start()
	defer taskScheduler.Stop()

	// Initialize core services
	httpClient := &http.Client{Timeout: 30 * time.Second}
	tabService := tabs.NewService(tabRepo, genClient, taskScheduler,
		appCfg.OwnerID, appCfg.ExtractContent, httpClient, appCfg.UserAgent)
	digestService := digests.NewService(tabRepo, digestRepo, genClient, appCfg.OwnerID)

	// Optional scheduled digest generation
	digestCron := digests.NewCronScheduler(digestService, appCfg.DigestCron)
	if err := digestCron.Start(); err != nil {
		slog.Error("Failed to start digest schedule", "error", err)
		os.Exit(1)
	}
	defer digestCron.Stop()

	// Initialize HTTP server
	apiHandler := api.NewHandler(tabService, digestService)
	server := api.NewServer(apiHandler, appCfg.DashboardDir)

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		slog.Info("Endpoints available",
			"tabs", fmt.Sprintf("http://localhost:%s/tabs", appCfg.Port),
			"digests", fmt.Sprintf("http://localhost:%s/digests", appCfg.Port),
			"dashboard", fmt.Sprintf("http://localhost:%s/dashboard", appCfg.Port),
			"health", fmt.Sprintf("http://localhost:%s/health", appCfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown: stop accepting requests first, then drain the
	// task queue via the deferred scheduler Stop
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
