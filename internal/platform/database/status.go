package database

import (
	"fmt"
	"sync"
)

// redisStatus 集中维护Redis派生缓存的可用性判断。
// 评分applier和榜单刷新器在每轮工作前查询它，避免在Redis
// 重启或缓存重建期间把分数写进一个马上会被覆盖的库。
type redisStatus struct {
	mu        sync.RWMutex
	healthy   bool
	lastRunID string
}

// 启动初期默认健康，首轮健康检查前applier不会被无谓阻塞
var status = redisStatus{healthy: true}

// IsRedisHealthy 返回Redis派生缓存当前是否可写。
func IsRedisHealthy() bool {
	status.mu.RLock()
	defer status.mu.RUnlock()
	return status.healthy
}

// SetInitialRunID 记录启动时获取的Redis run_id基准值。
func SetInitialRunID(runID string) {
	status.mu.Lock()
	defer status.mu.Unlock()
	status.lastRunID = runID
}

// UpdateStatus 由健康检查器写入最新的检查结论。
// run_id只在健康时更新，不健康期间保留旧值以便重启判定。
func UpdateStatus(isHealthy bool, newRunID string) {
	status.mu.Lock()
	defer status.mu.Unlock()

	if status.healthy != isHealthy {
		status.healthy = isHealthy
		if isHealthy {
			fmt.Println("健康检查: Redis缓存恢复可写。")
		} else {
			fmt.Println("健康检查警告: Redis缓存暂停写入，评分applier和榜单刷新将挂起。")
		}
	}
	if isHealthy {
		status.lastRunID = newRunID
	}
}

// GetLastKnownRunID 返回最近一次确认健康时的run_id。
func GetLastKnownRunID() string {
	status.mu.RLock()
	defer status.mu.RUnlock()
	return status.lastRunID
}
