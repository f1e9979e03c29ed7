package activity

// --- 奖励名称常量 ---
// 奖励是封闭的枚举集合，Breakdown组装器会校验没有未知项。
const (
	BonusVariety        = "variety"
	BonusOverload       = "progressive_overload"
	BonusPersonalRecord = "personal_record"
	BonusTimeOfDay      = "time_of_day"
)

// knownBonuses 是全部合法的奖励名称
var knownBonuses = map[string]bool{
	BonusVariety:        true,
	BonusOverload:       true,
	BonusPersonalRecord: true,
	BonusTimeOfDay:      true,
}

// evaluateBonuses 计算全部加法奖励。每项独立计算、独立报告。
// 缺少历史数据等可恢复情形按中性值0处理，从不视为错误。
// ctx是已完成跨日重置、尚未折入本次记录的新上下文；
// 个人纪录奖励会顺带把新的最佳1RM写回其中。
func (e *Engine) evaluateBonuses(rec *ActivityRecord, ctx *UserActivityContext, base float64) map[string]float64 {
	bonuses := make(map[string]float64)

	// 1. 变化奖励：当天第三个不同动作起触发，对该动作及之后的都生效
	distinct := len(ctx.ExercisesToday)
	if !ctx.HasLoggedToday(rec.ExerciseID) {
		distinct++
	}
	if distinct >= e.cfg.VarietyThreshold {
		bonuses[BonusVariety] = e.cfg.VarietyBonus
	}

	// 2. 渐进超负荷奖励：本次训练量超过该动作4周滚动均值即触发。
	// 首次记录某动作没有先验数据，不发奖励。
	if avg, ok := ctx.VolumeAverages[rec.ExerciseID]; ok && ctx.VolumeSamples[rec.ExerciseID] > 0 {
		if e.SessionVolume(rec) > avg {
			bonuses[BonusOverload] = base * e.cfg.OverloadRate
		}
	}

	// 3. 个人纪录奖励：本次预估1RM超过存档最佳时触发，并更新存档
	if rec.Category == CategoryStrength {
		oneRM := estimateOneRepMax(rec.Sets)
		if oneRM > 0 {
			best, hasBest := ctx.BestOneRepMax[rec.ExerciseID]
			if hasBest && oneRM > best {
				bonuses[BonusPersonalRecord] = e.cfg.PRBonus
			}
			if !hasBest || oneRM > best {
				ctx.BestOneRepMax[rec.ExerciseID] = oneRM
			}
		}
	}

	// 4. 时段奖励：早鸟或夜猫，互斥，最多一项
	hour := rec.StartTime.Hour()
	if hour < e.cfg.EarlyBirdEndHour || hour >= e.cfg.NightOwlFromHour {
		bonuses[BonusTimeOfDay] = e.cfg.TimeOfDayBonus
	}

	return bonuses
}
