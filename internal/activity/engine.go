package activity

import (
	"fmt"
	"math"
	"time"
)

// Engine 是活动评分流水线的纯计算核心。
// 给定一条ActivityRecord和一份用户上下文快照，它确定性地产出
// 得分明细和更新后的上下文——没有I/O，没有阻塞，没有内部并发。
// 跨不同用户并行调用是安全的；同一用户的并发提交必须由调用方串行化。
type Engine struct {
	cfg Config
}

// NewEngine 用给定配置创建一个评分引擎
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config 返回引擎当前使用的配置副本
func (e *Engine) Config() Config {
	return e.cfg
}

// ScoreResult 是一次评分的完整输出
type ScoreResult struct {
	Breakdown ScoreBreakdown
	// UpdatedContext 是更新后的上下文；记录被拒绝时与输入完全一致
	UpdatedContext UserActivityContext
	// SessionOneRepMax 是本次训练的预估1RM（仅strength），供成就条件使用
	SessionOneRepMax float64
}

// Score 执行完整的评分流水线：
// 守卫 -> 基础分 -> 奖励 -> 乘数 -> 封顶 -> 明细组装。
// 守卫拒绝通过明细里的 is_valid/rejection_reason 表达，不作为error；
// error只在内部不变量被破坏时返回，此时保证没有应用任何局部变更。
func (e *Engine) Score(rec ActivityRecord, ctx UserActivityContext) (ScoreResult, error) {
	// 1. 有效性守卫：任一检查不通过即短路
	if reason := e.checkPlausibility(&rec); reason != "" {
		return ScoreResult{Breakdown: rejectedBreakdown(reason), UpdatedContext: ctx}, nil
	}
	if e.checkDuplicate(&rec, &ctx) {
		return ScoreResult{Breakdown: rejectedBreakdown(ReasonDuplicate), UpdatedContext: ctx}, nil
	}

	// 2. 基础分
	base := e.basePoints(&rec)
	if base < 0 || math.IsNaN(base) || math.IsInf(base, 0) {
		return ScoreResult{}, &ComputationError{Stage: "base", Detail: fmt.Sprintf("基础分非法: %f", base)}
	}

	// 3. 从这里开始在副本上累积上下文变更；
	// 任何后续失败都只返回error，调用方看不到半成品
	newCtx := ctx.Clone()
	if newCtx.LastActiveDay != rec.LocalDay() {
		// 跨过本地午夜，当日动作集合清零（变化奖励随之重置）；
		// 去重区间是按窗口维护的，跨日不清
		newCtx.ExercisesToday = nil
	}
	streakDays := e.advanceStreak(&rec, &newCtx)

	// 4. 加法奖励（个人纪录的最佳1RM更新写入newCtx）
	bonuses := e.evaluateBonuses(&rec, &newCtx, base)
	subtotal := base
	for _, v := range bonuses {
		subtotal += v
	}

	// 5. 乘法系数，全局封顶
	factors, totalMultiplier, multCapped, note := e.aggregateMultipliers(&ctx, streakDays)

	// 6. 两级封顶作用于乘数前的小计，乘数作用于封顶结果；
	// 硬上限同时是最终得分的绝对天花板
	cappedSubtotal, softApplied, hardApplied := e.applyCaps(rec.Category, subtotal)
	cappedTotal := cappedSubtotal * totalMultiplier
	if ceiling, ok := e.hardCeiling(rec.Category); ok && cappedTotal > ceiling {
		cappedTotal = ceiling
		hardApplied = true
	}

	breakdown := ScoreBreakdown{
		BasePoints:       base,
		Bonuses:          bonuses,
		Multipliers:      factors,
		TotalMultiplier:  totalMultiplier,
		MultiplierCapped: multCapped,
		MultiplierNote:   note,
		RawTotal:         subtotal * e.rawMultiplier(factors),
		CappedTotal:      cappedTotal,
		SoftCapApplied:   softApplied,
		HardCapApplied:   hardApplied,
		IsValid:          true,
	}
	if err := breakdown.validate(&e.cfg); err != nil {
		return ScoreResult{}, err
	}

	// 7. 把本次活动的结果折入上下文
	e.foldIntoContext(&rec, &newCtx, cappedTotal)

	return ScoreResult{
		Breakdown:        breakdown,
		UpdatedContext:   newCtx,
		SessionOneRepMax: estimateOneRepMax(rec.Sets),
	}, nil
}

// advanceStreak 根据记录所在的本地日历日推进连击，返回推进后的天数。
// 连击档位乘数使用的就是这个计入今天之后的天数。
func (e *Engine) advanceStreak(rec *ActivityRecord, ctx *UserActivityContext) int {
	today := rec.LocalDay()
	yesterday := DayKey(rec.StartTime.AddDate(0, 0, -1))

	switch ctx.LastActiveDay {
	case today:
		// 当天已有活动，连击不变
	case yesterday:
		ctx.StreakDays++
	default:
		ctx.StreakDays = 1
	}
	ctx.LastActiveDay = today
	return ctx.StreakDays
}

// rawMultiplier 返回未封顶的系数乘积
func (e *Engine) rawMultiplier(factors map[string]float64) float64 {
	total := 1.0
	for _, f := range factors {
		total *= f
	}
	return total
}

// foldIntoContext 把一条已接受记录的影响写入新上下文：
// 去重区间、当日动作列表、滚动均值、最佳配速、生涯累计与总分。
func (e *Engine) foldIntoContext(rec *ActivityRecord, ctx *UserActivityContext, points float64) {
	ctx.AcceptedIntervals = append(ctx.AcceptedIntervals, rec.Interval())
	if !ctx.HasLoggedToday(rec.ExerciseID) {
		ctx.ExercisesToday = append(ctx.ExercisesToday, rec.ExerciseID)
	}

	// 滚动均值：首次记录即为均值，之后按样本数做增量平均；
	// 跨会话的4周窗口由上下文的持久化方在装配快照时重算
	volume := e.SessionVolume(rec)
	n := ctx.VolumeSamples[rec.ExerciseID]
	avg := ctx.VolumeAverages[rec.ExerciseID]
	ctx.VolumeAverages[rec.ExerciseID] = (avg*float64(n) + volume) / float64(n+1)
	ctx.VolumeSamples[rec.ExerciseID] = n + 1

	// 最佳配速（按距离档位，数值越小越好）
	if rec.Category == CategoryCardio {
		bucket := paceBucket(rec.DistanceKm)
		pace := rec.DurationSec / rec.DistanceKm
		if best, ok := ctx.BestPaceSecPerKm[bucket]; !ok || pace < best {
			ctx.BestPaceSecPerKm[bucket] = pace
		}
	}

	// 生涯累计指标
	ctx.AddLifetime(MetricActivities, 1)
	ctx.AddLifetime(MetricPoints, points)
	ctx.AddLifetime(MetricPrefixSessions+rec.ExerciseID, 1)
	switch rec.Category {
	case CategoryStrength:
		ctx.AddLifetime(MetricStrengthVolume, e.strengthVolume(rec))
		reps := 0
		for _, s := range rec.Sets {
			reps += s.Reps
		}
		ctx.AddLifetime(MetricReps, float64(reps))
		ctx.AddLifetime(MetricPrefixReps+rec.ExerciseID, float64(reps))
	case CategoryCardio:
		ctx.AddLifetime(MetricDistanceKm, rec.DistanceKm)
		ctx.AddLifetime(MetricPrefixDistance+rec.ExerciseID, rec.DistanceKm)
		ctx.AddLifetime(MetricDurationSec, rec.DurationSec)
	case CategoryCore:
		ctx.AddLifetime(MetricDurationSec, rec.DurationSec)
	}

	ctx.TotalPoints += points
	ctx.LastScoredAt = rec.EndTime
}

// SessionReps 返回本次训练的总次数，供成就的单次会话条件使用
func SessionReps(rec *ActivityRecord) int {
	reps := 0
	for _, s := range rec.Sets {
		reps += s.Reps
	}
	return reps
}

// SessionMetrics 把一条已评分记录折算为成就条件可比较的单次会话指标
func SessionMetrics(rec *ActivityRecord, breakdown *ScoreBreakdown, oneRepMax float64) map[string]float64 {
	m := map[string]float64{
		"session.points": breakdown.CappedTotal,
	}
	switch rec.Category {
	case CategoryStrength:
		m["session.reps"] = float64(SessionReps(rec))
		m["session.one_rm"] = oneRepMax
		m["session.reps:"+rec.ExerciseID] = float64(SessionReps(rec))
	case CategoryCardio:
		m["session.distance_km"] = rec.DistanceKm
		m["session.duration_sec"] = rec.DurationSec
	case CategoryCore:
		m["session.duration_sec"] = rec.DurationSec
	}
	return m
}

// DayKey 返回某时刻的本地日历日键，连击推进和当日状态都以它为界
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
