package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/JustJay7/barangay-case-dashboard/internal/cache"
	"github.com/JustJay7/barangay-case-dashboard/internal/config"
	"github.com/JustJay7/barangay-case-dashboard/internal/database"
	"github.com/JustJay7/barangay-case-dashboard/internal/metrics"
	"github.com/JustJay7/barangay-case-dashboard/internal/server"
	"github.com/JustJay7/barangay-case-dashboard/internal/service"
	"github.com/JustJay7/barangay-case-dashboard/internal/storage"
	"github.com/JustJay7/barangay-case-dashboard/pkg/logger"
)

func main() {
	var migrate bool
	flag.BoolVar(&migrate, "migrate", false, "Copy cases from the fallback store into the cases file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Initialize(cfg.FallbackDBPath)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	if version, err := database.SchemaVersion(db); err == nil {
		log.Debug("Fallback database ready", "path", cfg.FallbackDBPath, "schema_version", version)
	}

	ctx := context.Background()
	m := metrics.New()

	repo, err := storage.Open(ctx, cfg, db, log, m)
	if err != nil {
		log.Fatal("Failed to open storage", "error", err)
	}

	if migrate {
		copied, err := repo.Migrate(ctx)
		if err != nil {
			log.Fatal("Failed to migrate cases", "error", err)
		}
		log.Info("Migration completed", "copied", copied, "store", repo.StorageType())
		return
	}

	if _, err := repo.Init(ctx); err != nil {
		log.Error("Failed to load cases, starting empty", "error", err)
	}

	cacheService := cache.NewCache(cfg.CacheSize, cfg.CacheTTL)
	svc := service.NewService(repo, db, cacheService, m, log)

	srv := server.New(cfg, svc, cacheService, m, log)

	log.Info("Starting Barangay Case Tracker",
		"host", cfg.Host,
		"port", cfg.Port,
		"office", cfg.OfficeName,
		"storage", repo.StorageType(),
	)

	if err := srv.Run(); err != nil {
		log.Fatal("Server failed to start", "error", err)
	}
}
