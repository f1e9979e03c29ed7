package activity

import (
	"time"

	"gorm.io/gorm"
)

// Category 定义了活动类别的枚举类型
type Category string

const (
	// CategoryStrength 表示力量训练（组数x次数x重量）
	CategoryStrength Category = "strength"
	// CategoryCardio 表示有氧运动（距离/时长/爬升）
	CategoryCardio Category = "cardio"
	// CategoryCore 表示核心/计时类训练（仅时长）
	CategoryCore Category = "core"
)

// SetEntry 描述力量训练中的一组动作
type SetEntry struct {
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg"`
}

// TimeInterval 表示一个左闭右开的时间区间 [Start, End)
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps 判断两个区间是否重叠。该关系是对称的：
// a.Overlaps(b) == b.Overlaps(a)，完全相同的区间也视为重叠。
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// ActivityRecord 定义了单条活动记录的数据结构。
// 一旦通过校验并持久化，记录本身不可再修改。
type ActivityRecord struct {
	gorm.Model

	// ActivityID 是记录的业务主键 (UUID)
	ActivityID string `gorm:"uniqueIndex;type:varchar(36)" json:"activity_id"`

	// UserUUID 是提交该活动的用户
	UserUUID string `gorm:"index;type:varchar(36)" json:"user_uuid"`

	Category   Category `gorm:"index" json:"category"`
	ExerciseID string   `gorm:"index" json:"exercise_id"`

	// Sets 仅对strength类别有意义
	Sets []SetEntry `gorm:"serializer:json" json:"sets,omitempty"`

	// DistanceKm / ElevationGainM 仅对cardio类别有意义
	DistanceKm     float64 `json:"distance_km,omitempty"`
	ElevationGainM float64 `json:"elevation_gain_m,omitempty"`

	// DurationSec 对cardio和core类别有意义
	DurationSec float64 `json:"duration_sec,omitempty"`

	// 活动发生的时间区间 [StartTime, EndTime)
	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// --- 以下是评分流水线的输出 ---

	// IsValid 标记该记录是否通过了守卫检查
	IsValid bool `gorm:"index" json:"is_valid"`

	// RejectionReason 在IsValid为false时记录拒绝原因
	RejectionReason string `json:"rejection_reason,omitempty"`

	// Points 是最终得分 (capped_total)，被拒绝的记录恒为0
	Points float64 `json:"points"`

	// Breakdown 保存完整的得分明细，用于审计和回放
	Breakdown *ScoreBreakdown `gorm:"serializer:json" json:"breakdown,omitempty"`
}

// Interval 返回记录所覆盖的时间区间
func (r *ActivityRecord) Interval() TimeInterval {
	return TimeInterval{Start: r.StartTime, End: r.EndTime}
}

// LocalDay 返回记录开始时刻所在的本地日历日。
// 变化奖励和连击都以这个日历日为边界。
func (r *ActivityRecord) LocalDay() string {
	return DayKey(r.StartTime)
}
