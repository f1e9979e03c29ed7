package user

import (
	"errors"
	"fmt"

	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IsValidUUID 判断一个字符串是否是格式正确的UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// CreateProvisionalUser 签发一个新的临时身份UUID（v7，时间有序）。
// 临时身份只存在于cookie里，持有者首次成功提交活动时才会被激活。
func CreateProvisionalUser() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// IsUserActivated 检查一个UUID是否已激活（即已有持久化的用户行）。
// 只查Redis的已知用户集合，评分热路径上不碰SQLite。
func IsUserActivated(uuidStr string) (bool, error) {
	if uuidStr == "" {
		return false, nil
	}
	exists, err := database.RDB.SIsMember(database.Ctx, KnownUsersKey, uuidStr).Result()
	if err != nil {
		return false, fmt.Errorf("检查已知用户集合时出错: %w", err)
	}
	return exists, nil
}

// ActivateUser 把一个临时身份正式持久化：SQLite建行，Redis入集合。
// 集合写入失败时回滚建行，保证两个存储对"谁是用户"口径一致。
// 已激活的身份直接返回，重复激活是无操作。
func ActivateUser(uuidStr string) error {
	activated, err := IsUserActivated(uuidStr)
	if err != nil {
		return err
	}
	if activated {
		return nil
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		row := User{UUID: uuidStr}
		if err := tx.Create(&row).Error; err != nil {
			// 并发激活同一身份时后到者撞唯一索引，视为已激活
			if errors.Is(err, gorm.ErrDuplicatedKey) || database.IsDuplicateKeyError(err) {
				return nil
			}
			return fmt.Errorf("无法创建用户 %s: %w", uuidStr, err)
		}
		if err := database.RDB.SAdd(database.Ctx, KnownUsersKey, uuidStr).Err(); err != nil {
			return fmt.Errorf("无法把用户 %s 加入已知用户集合: %w", uuidStr, err)
		}
		return nil
	})
}

// BatchCreateUsers 确保一批UUID在SQLite中有对应的用户行，已存在的保持不变。
// 缓存重建时用它补齐历史活动记录引用到的用户。
func BatchCreateUsers(uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}
	rows := make([]User, 0, len(uuids))
	for _, id := range uuids {
		rows = append(rows, User{UUID: id})
	}
	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoNothing: true,
	}).CreateInBatches(rows, 200).Error; err != nil {
		return fmt.Errorf("无法批量创建用户: %w", err)
	}
	return nil
}
