package startup

import (
	"fmt"

	"github.com/FitArena/activity-score-backend/internal/achievement"
	"github.com/FitArena/activity-score-backend/internal/leaderboard"
	"github.com/FitArena/activity-score-backend/internal/platform/config"
	"github.com/FitArena/activity-score-backend/internal/platform/metadata"
	"github.com/FitArena/activity-score-backend/internal/submission"
	"github.com/FitArena/activity-score-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := user.PrimeCachedDB(); err != nil {
		return err
	}
	if err := achievement.PrimeDB(); err != nil {
		return err
	}
	if err := submission.PrimeDB(); err != nil {
		return err
	}
	if err := leaderboard.WarmupCache(config.Cfg.Leaderboard.MaxEntries); err != nil {
		return err
	}
	if _, err := submission.AlignCheckpoint(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// SQLite是事实来源，所有Redis键都可以从它完整重建。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := user.WarmupCache(); err != nil {
		return err
	}
	if err := leaderboard.WarmupCache(config.Cfg.Leaderboard.MaxEntries); err != nil {
		return err
	}

	lastID, err := submission.AlignCheckpoint()
	if err != nil {
		return err
	}

	// 触发一次新的快照，让下次冷启动可以直接从这里继续
	fmt.Println("缓存热重建完成，正在触发一次新的数据快照...")
	if err := metadata.SetLastSnapshotActivityID(lastID); err != nil {
		fmt.Printf("警告: 缓存热重建后的快照写入失败: %v\n", err)
	} else {
		fmt.Println("快照写入成功！")
	}

	return nil
}
