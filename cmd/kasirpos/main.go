package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kasirpos/internal/amqp"
	"kasirpos/internal/auth"
	"kasirpos/internal/config"
	"kasirpos/internal/export"
	googleexport "kasirpos/internal/export/google"
	apphttp "kasirpos/internal/http"
	"kasirpos/internal/memstore"
	"kasirpos/internal/services"
	"kasirpos/internal/storage"
	"kasirpos/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var st store.Store
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		st = repo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		st = memstore.New()
		logger.Info("Initialized memory backend")
	}
	defer st.Close()

	// Notifications are optional; without a broker password resets still
	// work, the mail just never goes out.
	var publisher services.NotificationPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, notifications disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var exporter export.ReportWriter
	if cfg.SheetExportEnabled() {
		client, err := googleexport.NewClient(context.Background(), googleexport.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Sheet export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	users := services.NewUserService(st, publisher)
	if cfg.SeedAdminPassword != "" && cfg.SeedKasirPassword != "" {
		if err := users.SeedDemoUsers(context.Background(), cfg.SeedAdminPassword, cfg.SeedKasirPassword); err != nil {
			logger.Error("Failed to seed demo users", "error", err)
			os.Exit(1)
		}
	}

	sessions := auth.NewManager(cfg.SessionTTL)
	stopSweeper := make(chan struct{})
	defer close(stopSweeper)
	sessions.StartSweeper(10*time.Minute, stopSweeper)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:        st,
		Sessions:     sessions,
		Checkout:     services.NewCheckoutService(st),
		Purchases:    services.NewPurchaseService(st),
		Users:        users,
		Backups:      services.NewBackupService(st, publisher),
		Reports:      services.NewReportService(st, cfg.CogsFallbackRatio, exporter),
		RateLimitRPM: cfg.RateLimitRPM,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	logger.Info("Starting kasirpos server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
