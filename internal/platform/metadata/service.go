package metadata

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue 从metadata表读取一个键的值，不存在时返回空字符串。
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 以upsert方式写入一个键值对。
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// GetLastSnapshotActivityID 读取并解析停机快照中的活动ID检查点。
func GetLastSnapshotActivityID() (uint, error) {
	valueStr, err := GetValue(database.DB, LastSnapshotActivityIDKey)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastSnapshotActivityIDKey, err)
	}
	return uint(id), nil
}

// SetLastSnapshotActivityID 格式化并写入活动ID检查点。
func SetLastSnapshotActivityID(activityID uint) error {
	valueStr := strconv.FormatUint(uint64(activityID), 10)
	return SetValue(database.DB, LastSnapshotActivityIDKey, valueStr)
}

// GetRedisCheckpoint 读取排行榜应用器的实时检查点。
// Redis中没有检查点时回退到SQLite中的停机快照。
func GetRedisCheckpoint() (uint, error) {
	valueStr, err := database.RDB.Get(database.Ctx, RedisLastAppliedActivityIDKey).Result()
	if err == redis.Nil {
		return GetLastSnapshotActivityID()
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("无法解析Redis检查点: %w", err)
	}
	return uint(id), nil
}

// PrimeDB 迁移metadata表。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}
	fmt.Println("Metadata数据库表迁移成功。")
	return nil
}
