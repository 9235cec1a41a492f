package database

import (
	"time"

	"gorm.io/gorm"
)

// KVEntry is one key of the fallback key/value store.
type KVEntry struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportLog records the outcome of one CSV import batch.
type ImportLog struct {
	gorm.Model
	BatchID    string    `json:"batch_id" gorm:"uniqueIndex"`
	Source     string    `json:"source"`
	Imported   int       `json:"imported"`
	Failed     int       `json:"failed"`
	Errors     string    `json:"errors" gorm:"type:text"`
	StoredIn   string    `json:"stored_in"`
	ImportedAt time.Time `json:"imported_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

func (ImportLog) TableName() string {
	return "import_logs"
}
