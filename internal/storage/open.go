package storage

import (
	"context"

	"github.com/JustJay7/barangay-case-dashboard/internal/config"
	"github.com/JustJay7/barangay-case-dashboard/internal/metrics"
	"github.com/JustJay7/barangay-case-dashboard/pkg/logger"
	"gorm.io/gorm"
)

// Open selects the stores once at start. The cases file is the primary store
// when file storage is enabled and it passes its probe; otherwise the
// repository runs on the fallback store alone. Only an unusable fallback
// store is an error.
func Open(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger, m *metrics.Metrics) (*Repository, error) {
	fallback := NewKVStore(db)
	if err := fallback.Probe(ctx); err != nil {
		return nil, err
	}

	var primary Store
	if cfg.FileStorageEnabled {
		fileStore := NewFileStore(cfg.CasesFile, log)
		if err := fileStore.Probe(ctx); err != nil {
			log.Warn("File storage unavailable, using fallback store", "path", cfg.CasesFile, "error", err)
		} else {
			primary = fileStore
		}
	} else {
		log.Debug("File storage disabled, using fallback store")
	}

	repo := NewRepository(primary, fallback, log, m)
	log.Info("Storage selected", "store", repo.StorageType(), "fallback", fallback.Name())
	return repo, nil
}
