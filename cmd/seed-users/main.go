// Command seed-users creates the demo admin and kasir accounts in the
// configured backend. Existing accounts are left untouched.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"kasirpos/internal/config"
	"kasirpos/internal/memstore"
	"kasirpos/internal/services"
	"kasirpos/internal/storage"
	"kasirpos/internal/store"
)

func main() {
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
	if cfg.SeedAdminPassword == "" || cfg.SeedKasirPassword == "" {
		logger.Error("SEED_ADMIN_PASSWORD and SEED_KASIR_PASSWORD must be set")
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
	default:
		// Seeding a memory backend only makes sense for smoke tests;
		// the data is gone when this process exits.
		st = memstore.New()
		logger.Warn("Seeding the in-memory backend, accounts will not persist")
	}
	defer st.Close()

	users := services.NewUserService(st, nil)
	if err := users.SeedDemoUsers(context.Background(), cfg.SeedAdminPassword, cfg.SeedKasirPassword); err != nil {
		logger.Error("Failed to seed users", "error", err)
		os.Exit(1)
	}
	logger.Info("Demo users ready", "backend", cfg.DataBackend)
}
