package achievement

import (
	"fmt"
	"time"

	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadProgress 读取一个用户的全部成就进度行。
func LoadProgress(userID string) (map[string]Progress, error) {
	var rows []Progress
	if err := database.DB.Where("user_uuid = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法读取用户 %s 的成就进度: %w", userID, err)
	}
	out := make(map[string]Progress, len(rows))
	for _, r := range rows {
		out[r.AchievementID] = r
	}
	return out, nil
}

// UnlockedSet 返回一个用户已解锁的成就ID集合。
func UnlockedSet(userID string) (map[string]bool, error) {
	progress, err := LoadProgress(userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(progress))
	for id, p := range progress {
		if p.UnlockedAt != nil {
			out[id] = true
		}
	}
	return out, nil
}

// SaveProgress 在事务中upsert一条进度行的当前值。
// 已解锁的行只更新展示值，UnlockedAt保持不变。
func SaveProgress(tx *gorm.DB, userID, achievementID string, current float64) error {
	row := Progress{UserUUID: userID, AchievementID: achievementID, Current: current}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_uuid"}, {Name: "achievement_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("无法写入成就进度 %s/%s: %w", userID, achievementID, err)
	}
	return nil
}

// MarkUnlocked 在事务中把一条进度行标记为已解锁。
// 只有UnlockedAt仍为空的行会被更新，重复解锁是无操作。
func MarkUnlocked(tx *gorm.DB, userID, achievementID string, at time.Time) error {
	row := Progress{UserUUID: userID, AchievementID: achievementID, UnlockedAt: &at}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_uuid"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("无法创建成就解锁行 %s/%s: %w", userID, achievementID, err)
	}
	// upsert可能落在已有行上，此时单独补写解锁时间
	if err := tx.Model(&Progress{}).
		Where("user_uuid = ? AND achievement_id = ? AND unlocked_at IS NULL", userID, achievementID).
		Update("unlocked_at", at).Error; err != nil {
		return fmt.Errorf("无法标记成就解锁 %s/%s: %w", userID, achievementID, err)
	}
	return nil
}
