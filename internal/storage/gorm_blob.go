package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StorageEntryModel 键值存储数据模型
type StorageEntryModel struct {
	Key       string    `gorm:"primaryKey;type:varchar(128)"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (StorageEntryModel) TableName() string {
	return "storage_entries"
}

// GormBlobStore 基于 gorm 的 blob 存储实现
// 每个 key 对应一行, 整个集合的序列化内容保存在 value 列
type GormBlobStore struct {
	db *gorm.DB
}

// NewGormBlobStore 创建 gorm blob 存储
func NewGormBlobStore(db *gorm.DB) *GormBlobStore {
	return &GormBlobStore{db: db}
}

// Load 读取指定 key 的 blob
func (s *GormBlobStore) Load(key string) ([]byte, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	var entry StorageEntryModel
	if err := s.db.Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load storage entry: %w", err)
	}
	return entry.Value, nil
}

// Save 整体写入指定 key 的 blob
// 使用事务内先删后插, 保证调用方观察不到部分写入
func (s *GormBlobStore) Save(key string, data []byte) error {
	if s.db == nil {
		return ErrUnavailable
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("key = ?", key).Delete(&StorageEntryModel{}).Error; err != nil {
			return fmt.Errorf("failed to replace storage entry: %w", err)
		}
		entry := StorageEntryModel{
			Key:       key,
			Value:     data,
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to save storage entry: %w", err)
		}
		return nil
	})
}

// Remove 删除指定 key 的 blob
func (s *GormBlobStore) Remove(key string) error {
	if s.db == nil {
		return ErrUnavailable
	}
	if err := s.db.Where("key = ?", key).Delete(&StorageEntryModel{}).Error; err != nil {
		return fmt.Errorf("failed to remove storage entry: %w", err)
	}
	return nil
}
