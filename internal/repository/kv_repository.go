package repository

import (
	"errors"
	"time"

	"github.com/fadilmartias/resumind/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore is the durable string key to string value mapping the
// submission store is built on. Set is a plain overwrite; concurrent
// runs use distinct keys and never touch each other's entries.
type KVStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	ListPrefix(prefix string) ([]model.KVEntry, error)
}

type GormKVStore struct {
	db *gorm.DB
}

func NewGormKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{db}
}

func (r *GormKVStore) Get(key string) (string, bool, error) {
	var entry model.KVEntry
	err := r.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *GormKVStore) Set(key, value string) error {
	entry := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (r *GormKVStore) ListPrefix(prefix string) ([]model.KVEntry, error) {
	var entries []model.KVEntry
	err := r.db.Where("key LIKE ?", prefix+"%").Order("key").Find(&entries).Error
	return entries, err
}
