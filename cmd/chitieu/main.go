package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/config"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/events"
	apphttp "github.com/nongduongsteams-ai/app-chi-tieu/internal/http"
	applog "github.com/nongduongsteams-ai/app-chi-tieu/internal/log"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Data store
	factory := store.NewFactory(logger.Logger)
	result, err := factory.Create(ctx, store.Config{
		Type:                  store.BackendType(cfg.DataBackend),
		AppsScriptURL:         cfg.AppsScriptURL,
		GoogleSpreadsheetID:   cfg.GoogleSpreadsheetID,
		GoogleExpensesSheet:   cfg.GoogleExpensesSheet,
		GoogleCategoriesSheet: cfg.GoogleCategoriesSheet,
		GoogleCredentialsFile: cfg.GoogleCredentialsFile,
		GoogleCredentialsJSON: cfg.GoogleCredentialsJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize data store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", "error", err)
			}
		}()
	}

	// Session store
	sessions, err := session.NewSQLiteStore(cfg.SessionDBPath)
	if err != nil {
		logger.Error("Failed to initialize session store", "error", err, "path", cfg.SessionDBPath)
		os.Exit(1)
	}
	defer sessions.Close()

	// Mutation events are optional: without an AMQP URL writes simply
	// go unannounced.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP publisher", "error", err)
			os.Exit(1)
		}
		defer amqpPub.Close()
		publisher = amqpPub
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Logger:         logger,
		Store:          result.Store,
		Sessions:       sessions,
		Events:         publisher,
		GoogleClientID: cfg.GoogleClientID,
		CacheTTL:       cfg.CacheTTL,
		CacheSize:      cfg.CacheSize,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", "error", err)
		os.Exit(1)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting chitieu server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
