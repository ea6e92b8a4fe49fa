package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/leocezardev/pifc/repository"
	"github.com/leocezardev/pifc/services"
)

func main() {
	// Setup structured logging with JSON format
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := services.LoadConfig()

	store, rawDB := initStore(config)

	if config.Database.Seed {
		seeder := services.NewDatabaseSeeder(store)
		if err := seeder.SeedDatabase(); err != nil {
			slog.Error("Database seeding failed", "error", err)
		}
	}

	server := services.NewServer(config, store, rawDB)
	server.InitializeServices()
	server.Start()
}

// initStore selects the persistence backend: Postgres when a database URL
// is configured, an in-memory store otherwise.
func initStore(config *services.Config) (repository.Store, *gorm.DB) {
	dbURL := config.Database.URL
	if dbURL == "" {
		slog.Warn("Database URL not configured, using in-memory store")
		return repository.NewMemoryStore(), nil
	}

	// Quick connectivity probe before handing the URL to GORM, so a bad
	// URL fails loudly at startup instead of on the first query.
	probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(probeCtx, dbURL)
	if err != nil {
		slog.Error("Failed to parse database URL", "error", err)
		os.Exit(1)
	}
	if err := pool.Ping(probeCtx); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		pool.Close()
		os.Exit(1)
	}
	pool.Close()

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
		sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
	}

	store := repository.NewGormStore(db)
	if err := store.AutoMigrate(); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Connected to database")
	return store, db
}
