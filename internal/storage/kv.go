package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/JustJay7/barangay-case-dashboard/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CasesKey is the key holding the serialized case array.
const CasesKey = "barangayCases"

// KVStore is the fallback store: a key/value table where the whole case set
// is one JSON value under CasesKey.
type KVStore struct {
	db  *gorm.DB
	key string
}

func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{db: db, key: CasesKey}
}

func (k *KVStore) Name() string { return TypeLocalStorage }

func (k *KVStore) Probe(ctx context.Context) error {
	var n int64
	if err := k.db.WithContext(ctx).Model(&database.KVEntry{}).Count(&n).Error; err != nil {
		return fmt.Errorf("fallback store unavailable: %w", err)
	}
	return nil
}

// Load returns the stored set; an absent key is an empty set.
func (k *KVStore) Load(ctx context.Context) ([]cases.Case, error) {
	var entry database.KVEntry
	err := k.db.WithContext(ctx).Where(&database.KVEntry{Key: k.key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []cases.Case{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback store: %w", err)
	}
	return decodeCases([]byte(entry.Value))
}

func (k *KVStore) Save(ctx context.Context, all []cases.Case) error {
	data, err := encodeCases(all)
	if err != nil {
		return err
	}
	entry := database.KVEntry{Key: k.key, Value: string(data), UpdatedAt: time.Now()}
	err = k.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write fallback store: %w", err)
	}
	return nil
}
