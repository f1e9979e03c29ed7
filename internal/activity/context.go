package activity

import "time"

// --- 生涯累计指标的键 ---
// 这些键同时被引擎（写入）和成就条件（读取）使用。
// 以冒号结尾的前缀用于按动作细分的指标，例如 "distance_km:running"。
const (
	MetricActivities     = "activities"
	MetricPoints         = "points"
	MetricDistanceKm     = "distance_km"
	MetricDurationSec    = "duration_sec"
	MetricStrengthVolume = "strength_volume_kg"
	MetricReps           = "reps"

	MetricPrefixDistance = "distance_km:"
	MetricPrefixReps     = "reps:"
	MetricPrefixSessions = "sessions:"
)

// UserActivityContext 是调用方提供的单用户滚动状态快照。
// 引擎把它当作值来读取，并返回一个新版本，绝不原地修改。
// 持久化和并发控制（按用户串行）是调用方的责任。
type UserActivityContext struct {
	UserUUID string `json:"user_uuid"`

	// StreakDays 是连续活跃天数；LastActiveDay 是最近一次有效活动的本地日历日
	StreakDays    int    `json:"streak_days"`
	LastActiveDay string `json:"last_active_day"`

	// TotalPoints 是用户的累计总分（含成就奖励分）
	TotalPoints float64 `json:"total_points"`

	// LastScoredAt 是总分最近一次变化的时刻，排行榜用它做同分决胜
	LastScoredAt time.Time `json:"last_scored_at"`

	// VolumeAverages 是各动作过去4周的滚动平均训练量；
	// VolumeSamples 记录参与均值的样本数，首次记录某动作时均值即为该次训练量
	VolumeAverages map[string]float64 `json:"volume_averages"`
	VolumeSamples  map[string]int     `json:"volume_samples"`

	// BestOneRepMax 是各动作的最佳预估1RM（Epley公式）
	BestOneRepMax map[string]float64 `json:"best_one_rep_max"`

	// BestPaceSecPerKm 是各距离档位的最佳配速（秒/公里，越小越好）
	BestPaceSecPerKm map[string]float64 `json:"best_pace_sec_per_km"`

	// ActiveChallenges 是用户当前加入的挑战ID
	ActiveChallenges []string `json:"active_challenges"`

	// SeasonalEventActive 标记当前是否处于赛季活动期
	SeasonalEventActive bool `json:"seasonal_event_active"`

	// ExercisesToday 是今天（本地日历日）已记录的不同动作ID
	ExercisesToday []string `json:"exercises_today"`

	// AcceptedIntervals 是近期已接受记录的时间区间，供重复检查使用。
	// 装配快照时取与训练量窗口相同的回溯范围，因此补录的报告
	// 也会与此前若干天的记录比较，而不只是当天的
	AcceptedIntervals []TimeInterval `json:"accepted_intervals"`

	// LifetimeTotals 是成就条件所消费的生涯累计指标
	LifetimeTotals map[string]float64 `json:"lifetime_totals"`
}

// NewUserActivityContext 创建一个所有map都已初始化的空上下文
func NewUserActivityContext(userUUID string) UserActivityContext {
	return UserActivityContext{
		UserUUID:         userUUID,
		VolumeAverages:   make(map[string]float64),
		VolumeSamples:    make(map[string]int),
		BestOneRepMax:    make(map[string]float64),
		BestPaceSecPerKm: make(map[string]float64),
		LifetimeTotals:   make(map[string]float64),
	}
}

// Clone 返回上下文的深拷贝，引擎在生成新版本之前总是先拷贝
func (c UserActivityContext) Clone() UserActivityContext {
	out := c
	out.VolumeAverages = cloneFloatMap(c.VolumeAverages)
	out.VolumeSamples = cloneIntMap(c.VolumeSamples)
	out.BestOneRepMax = cloneFloatMap(c.BestOneRepMax)
	out.BestPaceSecPerKm = cloneFloatMap(c.BestPaceSecPerKm)
	out.LifetimeTotals = cloneFloatMap(c.LifetimeTotals)
	out.ActiveChallenges = append([]string(nil), c.ActiveChallenges...)
	out.ExercisesToday = append([]string(nil), c.ExercisesToday...)
	out.AcceptedIntervals = append([]TimeInterval(nil), c.AcceptedIntervals...)
	return out
}

// HasLoggedToday 判断某动作今天是否已经出现过
func (c *UserActivityContext) HasLoggedToday(exerciseID string) bool {
	for _, id := range c.ExercisesToday {
		if id == exerciseID {
			return true
		}
	}
	return false
}

// AddLifetime 对一个生涯累计指标做加法，map不存在时惰性创建
func (c *UserActivityContext) AddLifetime(metric string, delta float64) {
	if c.LifetimeTotals == nil {
		c.LifetimeTotals = make(map[string]float64)
	}
	c.LifetimeTotals[metric] += delta
}

func cloneFloatMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneIntMap(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
