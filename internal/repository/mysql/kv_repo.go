package mysql

import (
	"context"
	"errors"
	"time"

	"Gated_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pingTimeout = 500 * time.Millisecond

// KVRepository 用一张表模拟不透明键值存储
type KVRepository struct {
	DB *gorm.DB
}

// Get 不存在返回空切片
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.KVEntry
	err := r.DB.WithContext(ctx).Where("`key` = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// Set 幂等写：主键冲突时覆盖 value
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.KVEntry{Key: key, Value: value}).Error
}

func (r *KVRepository) IsAvailable(ctx context.Context) bool {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx) == nil
}
