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

	"github.com/okhomenko/staysync/app/api"
	"github.com/okhomenko/staysync/app/booking"
	"github.com/okhomenko/staysync/app/cfg"
	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/ical"
	"github.com/okhomenko/staysync/app/property"
	"github.com/okhomenko/staysync/app/sync"
	"github.com/okhomenko/staysync/app/tasks"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if config.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting StaySync server", "version", config.Version)

	// Database connection
	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", config.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", db.Path(), "schema_version", version, "dirty", dirty)

	// Property configurations
	configCache := property.NewConfigCache(config.PropertiesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load property configurations", "dir", config.PropertiesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Property configurations loaded", "count", configCache.GetConfigCount())

	// Repositories
	apartmentRepo := database.NewApartmentRepository(db)
	reservationRepo := database.NewReservationRepository(db)
	cleaningRepo := database.NewCleaningRepository(db)
	syncLogRepo := database.NewSyncLogRepository(db)

	// Core components
	parser := ical.NewParser(time.Duration(config.FetchTimeout)*time.Second, config.UserAgent)
	validator := booking.NewValidator(reservationRepo)
	syncService := sync.NewService(apartmentRepo, reservationRepo, cleaningRepo, syncLogRepo, parser)

	// Background scheduler: seeds property configs, then syncs feeds
	// every SyncInterval minutes
	scheduler := tasks.NewScheduler(configCache, apartmentRepo, syncService)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	handler := api.NewHandler(configCache, apartmentRepo, reservationRepo, cleaningRepo,
		syncLogRepo, syncService, validator, parser, scheduler)
	router := api.NewServer(handler, config.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
