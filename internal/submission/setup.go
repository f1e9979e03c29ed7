package submission

import (
	"fmt"

	"github.com/FitArena/activity-score-backend/internal/activity"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/internal/platform/metadata"
	"github.com/FitArena/activity-score-backend/internal/user"
	"github.com/FitArena/activity-score-backend/pkg/lifecycle"
)

// PrimeDB 负责初始化submission模块的数据库部分，并驱动user模块补齐历史用户
func PrimeDB() error {
	if err := activity.PrimeDB(); err != nil {
		return err
	}

	var userIDs []string
	err := database.DB.Model(&activity.ActivityRecord{}).
		Where("user_uuid != ?", "").
		Distinct("user_uuid").
		Pluck("user_uuid", &userIDs).Error
	if err != nil {
		return fmt.Errorf("无法从活动记录表提取用户ID: %w", err)
	}

	if err := user.BatchCreateUsers(userIDs); err != nil {
		return fmt.Errorf("将用户同步到user模块失败: %w", err)
	}

	return nil
}

// AlignCheckpoint 在缓存重建后把Redis检查点推进到SQLite中最新的记录ID。
// 重建出的榜单视图已经覆盖所有已落盘的记录，检查点必须与之对齐。
func AlignCheckpoint() (uint, error) {
	lastID, err := lastRecordID()
	if err != nil {
		return 0, fmt.Errorf("无法读取最新的活动记录ID: %w", err)
	}
	if err := database.RDB.Set(database.Ctx, metadata.RedisLastAppliedActivityIDKey, lastID, 0).Err(); err != nil {
		return 0, fmt.Errorf("无法写入Redis检查点: %w", err)
	}
	return lastID, nil
}

// StartRecordProcessor 初始化并启动全局的recordProcessor。
// 它接收两个handle来管理两阶段的关闭逻辑。
func StartRecordProcessor(gracefulHandle, forcefulHandle *lifecycle.Handle) error {
	startID, err := metadata.GetRedisCheckpoint()
	if err != nil {
		return fmt.Errorf("无法获取启动Record Processor所需的检查点: %w", err)
	}

	initializeProcessor(startID)
	go startProcessor(gracefulHandle, forcefulHandle)

	return nil
}
