package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RecordImport stores the outcome of an import batch.
func RecordImport(db *gorm.DB, entry *ImportLog) error {
	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record import %s: %w", entry.BatchID, err)
	}
	return nil
}

// ListImports returns one page of import history, newest first, and the total count.
func ListImports(db *gorm.DB, page, limit int) ([]ImportLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := db.Model(&ImportLog{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count imports: %w", err)
	}

	var logs []ImportLog
	err := db.Order("imported_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list imports: %w", err)
	}

	return logs, total, nil
}
