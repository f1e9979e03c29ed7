package achievement

import (
	"fmt"
	"time"
)

// registry 是从配置加载的全部成就定义，启动后只读。
var registry []Definition

// loadRegistry 校验并装载成就定义，重复ID会被拒绝。
func loadRegistry(defs []Definition) error {
	seen := make(map[string]bool, len(defs))
	for i := range defs {
		d := &defs[i]
		if d.ID == "" {
			return fmt.Errorf("第%d条成就定义缺少ID", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("成就ID重复: %s", d.ID)
		}
		seen[d.ID] = true
		if err := d.Condition.Validate(); err != nil {
			return fmt.Errorf("成就 %s 的条件无效: %w", d.ID, err)
		}
	}
	registry = defs
	return nil
}

// Definitions 返回全部已加载的成就定义。
func Definitions() []Definition {
	return registry
}

// Evaluate 对一次评分后的输入评估所有尚未解锁的成就。
// unlocked 是该用户已解锁的成就ID集合；返回本次新解锁的事件。
// 评估是纯函数，持久化由调用方完成。
func Evaluate(in EvalInput, unlocked map[string]bool, now time.Time) []UnlockEvent {
	var events []UnlockEvent
	for i := range registry {
		d := &registry[i]
		if unlocked[d.ID] {
			continue
		}
		if d.Condition.Satisfied(in) {
			events = append(events, UnlockEvent{
				AchievementID: d.ID,
				Name:          d.Name,
				RewardPoints:  d.RewardPoints,
				UnlockedAt:    now,
			})
		}
	}
	return events
}
