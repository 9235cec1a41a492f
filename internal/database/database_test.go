package database

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fallback.db")

	db, err := Initialize(path)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&KVEntry{}))
	assert.True(t, db.Migrator().HasTable(&ImportLog{}))
	assert.FileExists(t, path)
	assert.True(t, db.Migrator().HasIndex(&ImportLog{}, "idx_import_logs_time"))

	require.NoError(t, Migrate(db), "migrations are idempotent")
	version, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)
}

func TestImportHistoryPagination(t *testing.T) {
	db, err := Initialize(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	base := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, RecordImport(db, &ImportLog{
			BatchID:    fmt.Sprintf("batch-%d", i),
			Imported:   i,
			ImportedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	logs, total, err := ListImports(db, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, logs, 2)
	assert.Equal(t, "batch-4", logs[0].BatchID)
	assert.Equal(t, "batch-3", logs[1].BatchID)

	logs, _, err = ListImports(db, 3, 2)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "batch-0", logs[0].BatchID)

	err = RecordImport(db, &ImportLog{BatchID: "batch-0"})
	assert.Error(t, err, "batch ids are unique")
}
