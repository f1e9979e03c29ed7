package achievement

import (
	"time"

	"gorm.io/gorm"
)

// ApplyScoredActivity 在一次评分事务中推进成就状态。
// 它更新所有可展示的进度值，对新满足条件的成就做一次性解锁，
// 并返回解锁事件和应计入总分的奖励分合计。
func ApplyScoredActivity(tx *gorm.DB, userID string, in EvalInput, now time.Time) ([]UnlockEvent, float64, error) {
	unlocked, err := UnlockedSet(userID)
	if err != nil {
		return nil, 0, err
	}

	events := Evaluate(in, unlocked, now)

	var reward float64
	for _, ev := range events {
		if err := MarkUnlocked(tx, userID, ev.AchievementID, ev.UnlockedAt); err != nil {
			return nil, 0, err
		}
		reward += ev.RewardPoints
	}

	// 与解锁无关的进度值也要刷新，供进度查询展示
	for i := range registry {
		d := &registry[i]
		current, _ := d.Condition.CurrentValue(in)
		if err := SaveProgress(tx, userID, d.ID, current); err != nil {
			return nil, 0, err
		}
	}

	return events, reward, nil
}

// ProgressView 是进度查询接口的单条响应。
type ProgressView struct {
	AchievementID string     `json:"achievementId"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	RewardPoints  float64    `json:"rewardPoints"`
	Current       float64    `json:"current"`
	Target        float64    `json:"target"`
	Unlocked      bool       `json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlockedAt,omitempty"`
}

// GetProgressForUser 返回一个用户对全部成就定义的进度视图。
// 没有进度行的成就返回零进度。
func GetProgressForUser(userID string) ([]ProgressView, error) {
	progress, err := LoadProgress(userID)
	if err != nil {
		return nil, err
	}

	views := make([]ProgressView, 0, len(registry))
	for i := range registry {
		d := &registry[i]
		view := ProgressView{
			AchievementID: d.ID,
			Name:          d.Name,
			Description:   d.Description,
			RewardPoints:  d.RewardPoints,
		}
		_, view.Target = d.Condition.CurrentValue(EvalInput{})
		if row, ok := progress[d.ID]; ok {
			view.Current = row.Current
			view.Unlocked = row.UnlockedAt != nil
			view.UnlockedAt = row.UnlockedAt
		}
		views = append(views, view)
	}
	return views, nil
}
