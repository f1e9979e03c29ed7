package leaderboard

import (
	"fmt"
	"time"

	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/pkg/lifecycle"
)

// StartRefresher 启动榜单刷新器goroutine。
// 它按固定间隔从SQLite全量重算视图，直到收到优雅停机信号。
func StartRefresher(handle *lifecycle.Handle, interval time.Duration, maxEntries int) {
	go runRefresher(handle, interval, maxEntries)
}

func runRefresher(handle *lifecycle.Handle, interval time.Duration, maxEntries int) {
	defer handle.Close()
	fmt.Println("排行榜刷新器已启动。")

	for {
		if err := handle.Sleep(interval); err != nil {
			fmt.Println("排行榜刷新器已停止。")
			return
		}
		if !database.IsRedisHealthy() {
			// Redis不可用期间跳过本轮，恢复后由重建流程补齐
			continue
		}
		if err := Refresh(time.Now(), maxEntries); err != nil {
			fmt.Printf("排行榜刷新失败: %v\n", err)
		}
	}
}
