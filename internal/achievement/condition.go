package achievement

import "fmt"

// EvalInput 是条件解释器的全部输入。
// Lifetime 是评分后的生涯累计指标，Session 是本次会话的折算指标，
// StreakDays 是评分后的连击天数。解释器不访问任何其他状态。
type EvalInput struct {
	Lifetime   map[string]float64
	Session    map[string]float64
	StreakDays int
}

// Validate 在加载阶段拒绝无法解释的条件定义。
func (c *Condition) Validate() error {
	switch c.Type {
	case ConditionSum:
		if c.Metric == "" {
			return fmt.Errorf("sum条件缺少metric")
		}
		if c.Threshold <= 0 {
			return fmt.Errorf("sum条件的threshold必须为正数: %v", c.Threshold)
		}
	case ConditionStreak:
		if c.Days <= 0 {
			return fmt.Errorf("streak条件的days必须为正数: %d", c.Days)
		}
	case ConditionThreshold:
		if c.Metric == "" {
			return fmt.Errorf("threshold条件缺少metric")
		}
		if !isKnownOp(c.Op) {
			return fmt.Errorf("threshold条件的运算符无效: %q", c.Op)
		}
	case ConditionRatio:
		if c.NumeratorMetric == "" || c.DenominatorMetric == "" {
			return fmt.Errorf("ratio条件缺少分子或分母指标")
		}
		if !isKnownOp(c.Op) {
			return fmt.Errorf("ratio条件的运算符无效: %q", c.Op)
		}
	default:
		return fmt.Errorf("未知的条件类型: %q", c.Type)
	}
	return nil
}

// Satisfied 判断条件在给定输入下是否成立。
func (c *Condition) Satisfied(in EvalInput) bool {
	switch c.Type {
	case ConditionSum:
		return in.Lifetime[c.Metric] >= c.Threshold
	case ConditionStreak:
		return in.StreakDays >= c.Days
	case ConditionThreshold:
		v, ok := in.Session[c.Metric]
		return ok && compare(c.Op, v, c.Value)
	case ConditionRatio:
		denom := in.Lifetime[c.DenominatorMetric]
		if denom == 0 {
			// 分母为零时条件不成立，而不是报错
			return false
		}
		return compare(c.Op, in.Lifetime[c.NumeratorMetric]/denom, c.Value)
	}
	return false
}

// CurrentValue 返回用于进度展示的当前值和目标值。
// threshold 变体是单次事件，进度只有 0 和 1 两档。
func (c *Condition) CurrentValue(in EvalInput) (current, target float64) {
	switch c.Type {
	case ConditionSum:
		return in.Lifetime[c.Metric], c.Threshold
	case ConditionStreak:
		return float64(in.StreakDays), float64(c.Days)
	case ConditionThreshold:
		if c.Satisfied(in) {
			return 1, 1
		}
		return 0, 1
	case ConditionRatio:
		denom := in.Lifetime[c.DenominatorMetric]
		if denom == 0 {
			return 0, c.Value
		}
		return in.Lifetime[c.NumeratorMetric] / denom, c.Value
	}
	return 0, 0
}

func isKnownOp(op string) bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual:
		return true
	}
	return false
}

func compare(op string, a, b float64) bool {
	switch op {
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	case OpEqual:
		return a == b
	}
	return false
}
