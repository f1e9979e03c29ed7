package health

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/internal/platform/startup"
)

const (
	checkInterval = 5 * time.Second
	infoTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// currentRunID 从 INFO server 中提取Redis实例的run_id。
// run_id在Redis每次重启后都会变化，是检测缓存丢失的依据：
// 已知用户集合、榜单视图和applier检查点都只活在Redis里。
func currentRunID() (string, error) {
	ctx, cancel := context.WithTimeout(database.Ctx, infoTimeout)
	defer cancel()
	info, err := database.RDB.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	m := runIDPattern.FindStringSubmatch(info)
	if len(m) < 2 {
		return "", fmt.Errorf("Redis INFO中没有run_id")
	}
	return m[1], nil
}

// InitializeRunID 在启动时取一次run_id作为基准。取不到说明Redis
// 不可用，此时评分系统无法工作，直接终止启动。
func InitializeRunID() {
	runID, err := currentRunID()
	if err != nil {
		panic(fmt.Sprintf("无法在启动时获取Redis run_id，请检查Redis服务: %v", err))
	}
	database.SetInitialRunID(runID)
	fmt.Printf("Redis run_id基准值: %s\n", runID)
}

// rebuildAndVerify 在检测到Redis重启后执行一次缓存全量重建，
// 并用重建前后的run_id对比确认重建期间Redis没有再次重启。
func rebuildAndVerify(idBefore string) bool {
	fmt.Println("健康检查: 检测到Redis重启，正在从SQLite重建缓存...")
	if err := startup.RebuildCache(); err != nil {
		fmt.Printf("健康检查错误: 缓存重建失败: %v\n", err)
		return false
	}

	idAfter, err := currentRunID()
	if err != nil {
		fmt.Println("健康检查错误: 缓存重建后无法连接Redis，重建结果作废。")
		return false
	}
	if idBefore != idAfter {
		fmt.Printf("健康检查错误: 重建期间Redis再次重启 (run_id %s -> %s)，重建结果作废。\n", idBefore, idAfter)
		return false
	}
	fmt.Println("健康检查: 缓存重建完成并通过run_id校验。")
	return true
}

// PerformCheck 执行一轮检查：取run_id、与基准对比、必要时重建。
// 结论通过database.UpdateStatus广播给所有Redis写入方。
func PerformCheck() {
	runID, err := currentRunID()
	if err != nil {
		database.UpdateStatus(false, "")
		return
	}

	if runID == database.GetLastKnownRunID() {
		database.UpdateStatus(true, runID)
		return
	}

	// run_id变了说明缓存内容已丢失，重建成功前保持不可写
	if rebuildAndVerify(runID) {
		database.UpdateStatus(true, runID)
	} else {
		database.UpdateStatus(false, "")
	}
}

// StartRedisHealthCheck 周期性地执行健康检查，永不返回。
// 由main用一个独立goroutine启动。
func StartRedisHealthCheck() {
	fmt.Println("Redis健康检查器已启动。")
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for range ticker.C {
		PerformCheck()
	}
}
