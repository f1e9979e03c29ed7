package activity

import (
	"fmt"

	"github.com/FitArena/activity-score-backend/internal/platform/database"
)

// GetRecordByActivityID 按活动UUID读取单条记录。
func GetRecordByActivityID(activityID string) (*ActivityRecord, error) {
	var rec ActivityRecord
	if err := database.DB.Where("activity_id = ?", activityID).First(&rec).Error; err != nil {
		return nil, fmt.Errorf("无法读取活动记录 %s: %w", activityID, err)
	}
	return &rec, nil
}

// ListRecentRecords 返回一个用户最近的活动记录，按开始时间倒序。
// 包含被拒绝的记录，调用方按is_valid区分。
func ListRecentRecords(userID string, limit int) ([]ActivityRecord, error) {
	var recs []ActivityRecord
	if err := database.DB.
		Where("user_uuid = ?", userID).
		Order("start_time desc").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("无法读取用户 %s 的活动记录: %w", userID, err)
	}
	return recs, nil
}
