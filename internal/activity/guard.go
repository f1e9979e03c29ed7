package activity

// --- 有效性守卫 ---
// 两项相互独立的检查，任何一项不通过都会让流水线短路，
// 返回 is_valid=false 和对应的拒绝原因。检查本身没有副作用，
// 是否把被拒绝的记录持久化留档由调用方决定。

// checkPlausibility 执行合理性（反作弊）检查。
// 阈值全部来自配置，返回空字符串表示通过。
func (e *Engine) checkPlausibility(rec *ActivityRecord) string {
	switch rec.Category {
	case CategoryStrength:
		for _, s := range rec.Sets {
			if s.WeightKg > e.cfg.MaxStrengthWeightKg {
				return ReasonUnrealisticWeight
			}
		}
	case CategoryCardio:
		// 配速快于阈值（秒/公里更小）视为不可能
		pace := rec.DurationSec / rec.DistanceKm
		if pace < e.cfg.MinPaceSecPerKm {
			return ReasonUnrealisticPace
		}
	}
	return ""
}

// checkDuplicate 把记录的时间区间与该用户近期已接受的区间逐一比较，
// 补录的报告因此也无法与此前几天的记录重叠。
// 任何重叠（包括完全相同）都视为重复。重叠关系是对称的，
// 拒绝后提交的那一条即可，已接受的记录不需要被追溯撤销。
func (e *Engine) checkDuplicate(rec *ActivityRecord, ctx *UserActivityContext) bool {
	interval := rec.Interval()
	for _, existing := range ctx.AcceptedIntervals {
		if interval.Overlaps(existing) {
			return true
		}
	}
	return false
}
