package activity

import "fmt"

// ScoreBreakdown 是一条活动得分的完整、可回放的明细。
// 每个参与计算的项都单独列出，调用方可以据此复算最终得分。
type ScoreBreakdown struct {
	BasePoints float64 `json:"base_points"`

	// Bonuses 只包含实际生效的奖励项，键来自封闭的名称集合
	Bonuses map[string]float64 `json:"bonuses"`

	// Multipliers 记录各独立来源的系数；TotalMultiplier是封顶后的乘数
	Multipliers     map[string]float64 `json:"multipliers"`
	TotalMultiplier float64            `json:"total_multiplier"`

	// MultiplierCapped 标记原始乘数是否被全局上限截断
	MultiplierCapped bool   `json:"multiplier_capped"`
	MultiplierNote   string `json:"multiplier_note,omitempty"`

	// RawTotal 是未封顶的 (基础分+奖励)x原始乘数
	RawTotal float64 `json:"raw_total"`
	// CappedTotal 是封顶后的最终得分
	CappedTotal float64 `json:"capped_total"`

	SoftCapApplied bool `json:"soft_cap_applied"`
	HardCapApplied bool `json:"hard_cap_applied"`

	IsValid         bool   `json:"is_valid"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// rejectedBreakdown 构造一条被守卫拒绝的明细
func rejectedBreakdown(reason string) ScoreBreakdown {
	return ScoreBreakdown{
		Bonuses:         map[string]float64{},
		Multipliers:     map[string]float64{},
		TotalMultiplier: 1.0,
		IsValid:         false,
		RejectionReason: reason,
	}
}

// validate 对组装完成的明细做穷举校验：
// 所有奖励/乘数名称必须属于封闭集合，数值必须满足不变量。
// 校验失败意味着引擎内部出了问题，而不是输入有问题。
func (b *ScoreBreakdown) validate(cfg *Config) error {
	for name := range b.Bonuses {
		if !knownBonuses[name] {
			return &ComputationError{Stage: "breakdown", Detail: fmt.Sprintf("未知的奖励项 %q", name)}
		}
	}
	for name := range b.Multipliers {
		if !isKnownMultiplier(name) {
			return &ComputationError{Stage: "breakdown", Detail: fmt.Sprintf("未知的乘数项 %q", name)}
		}
	}
	if b.TotalMultiplier < 1.0 || b.TotalMultiplier > cfg.MultiplierCap {
		return &ComputationError{Stage: "breakdown", Detail: fmt.Sprintf("总乘数 %f 越界", b.TotalMultiplier)}
	}
	if b.CappedTotal < 0 {
		return &ComputationError{Stage: "breakdown", Detail: fmt.Sprintf("最终得分 %f 为负", b.CappedTotal)}
	}
	return nil
}
