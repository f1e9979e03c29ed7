package activity

import "fmt"

// --- 拒绝原因常量 ---
// 守卫检查得出的拒绝原因会原样写入ScoreBreakdown.RejectionReason。
const (
	ReasonUnrealisticWeight = "unrealistic weight"
	ReasonUnrealisticPace   = "unrealistic pace"
	ReasonDuplicate         = "duplicate/overlapping activity"
)

// NormalizationError 表示原始报告缺失必要字段或包含非法取值。
// 这类错误在任何评分发生之前返回，不会产生任何副作用。
type NormalizationError struct {
	Field  string
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("无法规范化活动报告: 字段 %s %s", e.Field, e.Reason)
}

// ComputationError 表示引擎内部不变量被破坏（例如出现负的基础分）。
// 它只对当前这一次请求是致命的；引擎保证在返回它之前没有应用任何
// 奖励、乘数或上下文变更。
type ComputationError struct {
	Stage  string
	Detail string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("评分内部错误 [%s]: %s", e.Stage, e.Detail)
}

// IsFraudReason 判断一个拒绝原因是否来自合理性（反作弊）检查。
// 调用方据此决定是否要把该记录记入人工复核日志。
func IsFraudReason(reason string) bool {
	return reason == ReasonUnrealisticWeight || reason == ReasonUnrealisticPace
}
