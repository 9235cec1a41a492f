package database

import (
	"fmt"

	"gorm.io/gorm"
)

// schemaVersion is stored in PRAGMA user_version after a successful run.
const schemaVersion = 1

var statements = []struct {
	name string
	sql  string
}{
	{"journal mode", `PRAGMA journal_mode = WAL`},
	{"import history index", `CREATE INDEX IF NOT EXISTS idx_import_logs_time ON import_logs(imported_at)`},
	{"import source index", `CREATE INDEX IF NOT EXISTS idx_import_logs_source ON import_logs(source)`},
}

// RunMigrations applies the pragmas and indexes AutoMigrate does not cover.
// Every statement is idempotent.
func RunMigrations(db *gorm.DB) error {
	for _, st := range statements {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("failed to apply %s: %w", st.name, err)
		}
	}

	if err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)).Error; err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// SchemaVersion reads the version recorded by RunMigrations.
func SchemaVersion(db *gorm.DB) (int, error) {
	var version int
	if err := db.Raw("PRAGMA user_version").Scan(&version).Error; err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
