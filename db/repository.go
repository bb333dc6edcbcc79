package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/habedi/escola/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRepository is a GORM-backed auth.Store.
type KVRepository interface {
	auth.Store
	List(ctx context.Context) ([]Entry, error)
}

// gormKVRepo is a GORM-backed implementation of KVRepository.
// Use constructor NewKVRepository to obtain an instance.
type gormKVRepo struct{ db *gorm.DB }

var _ auth.Store = (*gormKVRepo)(nil)

// NewKVRepository creates a KVRepository. Accepts *gorm.DB to avoid global access.
func NewKVRepository(db *gorm.DB) KVRepository { return &gormKVRepo{db: db} }

func (r *gormKVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if r.db == nil {
		return "", false, fmt.Errorf("repository not initialized")
	}
	var entry Entry
	err := r.db.WithContext(ctx).First(&entry, "name = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *gormKVRepo) Set(ctx context.Context, key, value string) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	entry := Entry{Name: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (r *gormKVRepo) Delete(ctx context.Context, keys ...string) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("name IN ?", keys).Delete(&Entry{}).Error
}

func (r *gormKVRepo) List(ctx context.Context) ([]Entry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var entries []Entry
	if err := r.db.WithContext(ctx).Order("name").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
