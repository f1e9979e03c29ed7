package activity

import (
	"fmt"
	"sort"
	"strings"
)

// --- 乘数名称常量 ---
// 每个活跃挑战会产生一个 "challenge:<id>" 形式的乘数项。
const (
	MultiplierStreak   = "streak"
	MultiplierSeasonal = "seasonal_event"

	multiplierChallengePrefix = "challenge:"
)

// isKnownMultiplier 校验乘数名称是否属于封闭集合
func isKnownMultiplier(name string) bool {
	return name == MultiplierStreak || name == MultiplierSeasonal ||
		strings.HasPrefix(name, multiplierChallengePrefix)
}

// aggregateMultipliers 从上下文收集各个独立来源的乘法系数：
// 连击档位、每个活跃挑战、赛季活动。所有系数相乘得到原始乘数，
// 超出全局上限时代之以上限值并在备注中列出被截断的各项系数。
// 这个上限用于约束无关奖励同时叠加时的最坏滥用情形。
func (e *Engine) aggregateMultipliers(ctx *UserActivityContext, streakDays int) (factors map[string]float64, total float64, capped bool, note string) {
	factors = make(map[string]float64)

	factors[MultiplierStreak] = e.cfg.streakFactor(streakDays)
	for _, id := range ctx.ActiveChallenges {
		factors[multiplierChallengePrefix+id] = e.cfg.ChallengeFactor
	}
	if ctx.SeasonalEventActive {
		factors[MultiplierSeasonal] = e.cfg.SeasonalFactor
	}

	total = 1.0
	for _, f := range factors {
		total *= f
	}

	if total > e.cfg.MultiplierCap {
		capped = true
		note = e.capNote(factors, total)
		total = e.cfg.MultiplierCap
	}
	return factors, total, capped, note
}

// capNote 生成一条可读的截断说明，列出参与叠加的全部系数
func (e *Engine) capNote(factors map[string]float64, raw float64) string {
	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.4f", name, factors[name]))
	}
	return fmt.Sprintf("原始乘数 %.4f 超过上限 %.2f，已截断。参与叠加的系数: %s",
		raw, e.cfg.MultiplierCap, strings.Join(parts, ", "))
}
