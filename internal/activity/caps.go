package activity

// applyCaps 对乘数应用前的小计 (基础分+奖励) 执行两级封顶：
//  1. 软上限：超出部分按保留比例折算，而不是直接丢弃，
//     让极端训练量仍有回报但不再线性增长；
//  2. 硬上限：折算后的绝对天花板。
func (e *Engine) applyCaps(category Category, subtotal float64) (capped float64, softApplied, hardApplied bool) {
	capped = subtotal

	caps, ok := e.cfg.capsFor(category)
	if !ok {
		return capped, false, false
	}

	if capped > caps.Soft {
		capped = caps.Soft + (capped-caps.Soft)*e.cfg.SoftCapRetention
		softApplied = true
	}
	if capped > caps.Hard {
		capped = caps.Hard
		hardApplied = true
	}
	return capped, softApplied, hardApplied
}

// hardCeiling 返回某类别任何最终得分都不可逾越的绝对上限。
// 乘数应用之后还会用它做最后一次钳制，保证不变量
// capped_total <= hard_cap[category] 恒成立。
func (e *Engine) hardCeiling(category Category) (float64, bool) {
	caps, ok := e.cfg.capsFor(category)
	if !ok {
		return 0, false
	}
	return caps.Hard, true
}
