package achievement

import (
	"time"

	"gorm.io/gorm"
)

// 条件变体的封闭枚举。配置里出现其他取值会在启动时被拒绝。
const (
	ConditionSum       = "sum"
	ConditionStreak    = "streak"
	ConditionThreshold = "threshold"
	ConditionRatio     = "ratio"
)

// 比较运算符的封闭枚举，供 threshold 和 ratio 变体使用。
const (
	OpGreater      = "gt"
	OpGreaterEqual = "gte"
	OpLess         = "lt"
	OpLessEqual    = "lte"
	OpEqual        = "eq"
)

// Condition 是一个成就的解锁条件。字段按 Type 取用，
// 它是纯数据，解释逻辑全部在 condition.go 中。
type Condition struct {
	Type string

	// sum: Metric 的生涯累计达到 Threshold
	Metric    string
	Threshold float64

	// streak: 连击天数达到 Days
	Days int

	// threshold: 单次会话指标 Metric 与 Value 按 Op 比较
	Op    string
	Value float64

	// ratio: 两个生涯累计指标之比与 Value 按 Op 比较
	NumeratorMetric   string
	DenominatorMetric string
}

// Definition 是一条加载完成的成就定义。
// 定义只来自配置文件，运行期只读。
type Definition struct {
	ID           string
	Name         string
	Description  string
	RewardPoints float64
	Condition    Condition
}

// Progress 是用户成就状态在SQLite中的持久化模型。
// 每个 (用户, 成就) 至多一行；UnlockedAt 一旦写入就不再改变。
type Progress struct {
	gorm.Model

	UserUUID      string `gorm:"uniqueIndex:idx_user_achievement;type:varchar(36)"`
	AchievementID string `gorm:"uniqueIndex:idx_user_achievement;type:varchar(64)"`

	// Current 是最近一次评估时的进度值，仅用于展示
	Current float64

	// UnlockedAt 为空表示尚未解锁
	UnlockedAt *time.Time
}

// UnlockEvent 描述一次评分引发的成就解锁。
type UnlockEvent struct {
	AchievementID string    `json:"achievementId"`
	Name          string    `json:"name"`
	RewardPoints  float64   `json:"rewardPoints"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}
