package leaderboard

import (
	"fmt"
	"time"
)

// WarmupCache 在启动或缓存重建时立即生成一次榜单视图。
// 注意：此函数不包含锁，调用方需要确保在安全的时机调用。
func WarmupCache(maxEntries int) error {
	if err := RebuildViews(time.Now(), maxEntries); err != nil {
		return fmt.Errorf("无法预热排行榜视图: %w", err)
	}
	fmt.Println("排行榜视图预热成功。")
	return nil
}
