package activity

import "math"

// --- 基础分计算 ---
// 每个类别有自己的公式，输出一个非负实数。
// 上游的Normalizer已经排除了零/负时长，这里不再重复防御。

// basePoints 计算一条记录的原始基础分
func (e *Engine) basePoints(rec *ActivityRecord) float64 {
	switch rec.Category {
	case CategoryStrength:
		return e.cfg.KStrength * e.strengthVolume(rec)
	case CategoryCardio:
		pace := rec.DurationSec / rec.DistanceKm
		elevation := 1.0 + e.cfg.ElevationBonusRate*rec.ElevationGainM/100.0
		return e.cfg.KCardio * rec.DistanceKm * e.paceFactor(pace) * elevation
	case CategoryCore:
		return e.cfg.KCore * rec.DurationSec
	}
	return 0
}

// strengthVolume 计算力量训练的总训练量 Σ(重量x次数)。
// 没有外部负重的组按体重下限计，保证徒手次数也能得分。
func (e *Engine) strengthVolume(rec *ActivityRecord) float64 {
	volume := 0.0
	for _, s := range rec.Sets {
		weight := s.WeightKg
		if weight <= 0 {
			weight = e.cfg.BodyweightFloorKg
		}
		volume += weight * float64(s.Reps)
	}
	return volume
}

// paceFactor 奖励快于基准的配速，上限封顶。
// 慢于基准时返回1.0，配速因素从不构成惩罚；
// 真正不可能的配速已经被守卫拦下，这里只需防止它主导得分。
func (e *Engine) paceFactor(paceSecPerKm float64) float64 {
	if paceSecPerKm <= 0 {
		return 1.0
	}
	factor := e.cfg.BaselinePaceSecPerKm / paceSecPerKm
	return math.Min(math.Max(factor, 1.0), e.cfg.PaceFactorCeiling)
}

// SessionVolume 返回用于渐进超负荷比较的本次训练量：
// 力量为重量x次数之和，有氧为距离，核心为时长。
func (e *Engine) SessionVolume(rec *ActivityRecord) float64 {
	switch rec.Category {
	case CategoryStrength:
		return e.strengthVolume(rec)
	case CategoryCardio:
		return rec.DistanceKm
	case CategoryCore:
		return rec.DurationSec
	}
	return 0
}

// estimateOneRepMax 用Epley公式估算本次训练的最佳1RM：
// 1RM = weight x (1 + reps/30)，取所有组中的最大值。
func estimateOneRepMax(sets []SetEntry) float64 {
	best := 0.0
	for _, s := range sets {
		if s.WeightKg <= 0 {
			continue
		}
		oneRM := s.WeightKg * (1.0 + float64(s.Reps)/30.0)
		if oneRM > best {
			best = oneRM
		}
	}
	return best
}

// paceBucket 把距离归入档位，最佳配速按档位分别记录
func paceBucket(distanceKm float64) string {
	switch {
	case distanceKm < 5:
		return "sub5k"
	case distanceKm < 10:
		return "5k-10k"
	case distanceKm < 21.1:
		return "10k-21k"
	case distanceKm < 42.2:
		return "21k-42k"
	default:
		return "42k+"
	}
}
