package activity

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// 工作日上午的一条力量记录，避开时段奖励窗口
func strengthRecord(exercise string, start time.Time, durationMin int, sets []SetEntry) ActivityRecord {
	return ActivityRecord{
		ActivityID: "test-" + exercise + start.Format("150405"),
		UserUUID:   "user-1",
		Category:   CategoryStrength,
		ExerciseID: exercise,
		Sets:       sets,
		StartTime:  start,
		EndTime:    start.Add(time.Duration(durationMin) * time.Minute),
	}
}

func cardioRecord(exercise string, start time.Time, distanceKm, durationSec float64) ActivityRecord {
	return ActivityRecord{
		ActivityID:  "test-" + exercise + start.Format("150405"),
		UserUUID:    "user-1",
		Category:    CategoryCardio,
		ExerciseID:  exercise,
		DistanceKm:  distanceKm,
		DurationSec: durationSec,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(durationSec) * time.Second),
	}
}

var morning = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

func TestScoreFirstStrengthSessionNoBonuses(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")

	rec := strengthRecord("squat", morning, 40, []SetEntry{
		{Reps: 10, WeightKg: 50}, {Reps: 10, WeightKg: 50}, {Reps: 10, WeightKg: 50},
	})

	result, err := e.Score(rec, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	b := result.Breakdown

	if !b.IsValid {
		t.Fatalf("expected valid record, got rejection %q", b.RejectionReason)
	}
	if !almostEqual(b.BasePoints, 150) {
		t.Errorf("base = %v; want 150", b.BasePoints)
	}
	if len(b.Bonuses) != 0 {
		t.Errorf("expected no bonuses for first session, got %v", b.Bonuses)
	}
	if !almostEqual(b.TotalMultiplier, 1.0) {
		t.Errorf("total multiplier = %v; want 1.0", b.TotalMultiplier)
	}
	if !almostEqual(b.CappedTotal, 150) {
		t.Errorf("capped total = %v; want 150", b.CappedTotal)
	}

	newCtx := result.UpdatedContext
	if newCtx.StreakDays != 1 {
		t.Errorf("streak = %d; want 1", newCtx.StreakDays)
	}
	if !almostEqual(newCtx.TotalPoints, 150) {
		t.Errorf("total points = %v; want 150", newCtx.TotalPoints)
	}
	if !almostEqual(newCtx.BestOneRepMax["squat"], 50*(1+10.0/30.0)) {
		t.Errorf("best 1RM = %v; want %v", newCtx.BestOneRepMax["squat"], 50*(1+10.0/30.0))
	}
	if !almostEqual(newCtx.LifetimeTotals[MetricActivities], 1) {
		t.Errorf("lifetime activities = %v; want 1", newCtx.LifetimeTotals[MetricActivities])
	}
}

func TestScoreSecondSessionOverloadAndPR(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")

	first := strengthRecord("squat", morning, 40, []SetEntry{
		{Reps: 10, WeightKg: 50}, {Reps: 10, WeightKg: 50}, {Reps: 10, WeightKg: 50},
	})
	result1, err := e.Score(first, ctx)
	if err != nil {
		t.Fatalf("first Score returned error: %v", err)
	}

	second := strengthRecord("squat", morning.Add(2*time.Hour), 40, []SetEntry{
		{Reps: 10, WeightKg: 60}, {Reps: 10, WeightKg: 60}, {Reps: 10, WeightKg: 60},
	})
	result2, err := e.Score(second, result1.UpdatedContext)
	if err != nil {
		t.Fatalf("second Score returned error: %v", err)
	}
	b := result2.Breakdown

	if !b.IsValid {
		t.Fatalf("expected valid record, got rejection %q", b.RejectionReason)
	}
	if !almostEqual(b.BasePoints, 180) {
		t.Errorf("base = %v; want 180", b.BasePoints)
	}
	// 训练量 1800 > 均值 1500，超负荷奖励为基础分的10%
	if got := b.Bonuses[BonusOverload]; !almostEqual(got, 18) {
		t.Errorf("overload bonus = %v; want 18", got)
	}
	// 1RM 80 > 存档 66.67，个人纪录奖励
	if got := b.Bonuses[BonusPersonalRecord]; !almostEqual(got, 15) {
		t.Errorf("PR bonus = %v; want 15", got)
	}
	if _, ok := b.Bonuses[BonusVariety]; ok {
		t.Errorf("unexpected variety bonus for repeated exercise")
	}
	if !almostEqual(b.TotalMultiplier, 1.0) {
		t.Errorf("total multiplier = %v; want 1.0", b.TotalMultiplier)
	}
	if !almostEqual(b.CappedTotal, 213) {
		t.Errorf("capped total = %v; want 213", b.CappedTotal)
	}

	// 同一天的第二次活动不推进连击
	if result2.UpdatedContext.StreakDays != 1 {
		t.Errorf("streak = %d; want 1", result2.UpdatedContext.StreakDays)
	}
}

func TestScoreSoftThenHardCap(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")

	sets := make([]SetEntry, 10)
	for i := range sets {
		sets[i] = SetEntry{Reps: 20, WeightKg: 100}
	}
	rec := strengthRecord("leg_press", morning, 90, sets)

	result, err := e.Score(rec, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	b := result.Breakdown

	if !almostEqual(b.BasePoints, 2000) {
		t.Errorf("base = %v; want 2000", b.BasePoints)
	}
	// 软上限: 250 + (2000-250)*0.5 = 1125, 再被硬上限350钳制
	if !b.SoftCapApplied || !b.HardCapApplied {
		t.Errorf("cap flags = soft:%v hard:%v; want both true", b.SoftCapApplied, b.HardCapApplied)
	}
	if !almostEqual(b.CappedTotal, 350) {
		t.Errorf("capped total = %v; want 350", b.CappedTotal)
	}
}

func TestScoreMultiplierGlobalCap(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")
	ctx.StreakDays = 14
	ctx.LastActiveDay = morning.AddDate(0, 0, -1).Format("2006-01-02")
	ctx.ActiveChallenges = []string{"spring-squad", "office-league"}
	ctx.SeasonalEventActive = true

	rec := strengthRecord("bench_press", morning, 30, []SetEntry{{Reps: 10, WeightKg: 50}})

	result, err := e.Score(rec, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	b := result.Breakdown

	// 1.10 x 1.05 x 1.05 x 1.08 ≈ 1.3098 > 1.25
	if !b.MultiplierCapped {
		t.Fatalf("expected multiplier to be capped, factors: %v", b.Multipliers)
	}
	if !almostEqual(b.TotalMultiplier, 1.25) {
		t.Errorf("total multiplier = %v; want 1.25", b.TotalMultiplier)
	}
	if b.MultiplierNote == "" {
		t.Errorf("expected a cap note listing the stacked factors")
	}
	if got := b.Multipliers[MultiplierStreak]; !almostEqual(got, 1.10) {
		t.Errorf("streak factor = %v; want 1.10", got)
	}
	if got := b.Multipliers[MultiplierSeasonal]; !almostEqual(got, 1.08) {
		t.Errorf("seasonal factor = %v; want 1.08", got)
	}
	if got := b.Multipliers["challenge:spring-squad"]; !almostEqual(got, 1.05) {
		t.Errorf("challenge factor = %v; want 1.05", got)
	}
}

func TestScoreRejectsUnrealisticWeight(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")
	ctx.TotalPoints = 42

	rec := strengthRecord("squat", morning, 30, []SetEntry{{Reps: 1, WeightKg: 1000}})

	result, err := e.Score(rec, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	b := result.Breakdown

	if b.IsValid {
		t.Fatalf("expected rejection for 1000kg set")
	}
	if b.RejectionReason != ReasonUnrealisticWeight {
		t.Errorf("reason = %q; want %q", b.RejectionReason, ReasonUnrealisticWeight)
	}
	if !almostEqual(b.CappedTotal, 0) {
		t.Errorf("capped total = %v; want 0", b.CappedTotal)
	}
	// 拒绝时上下文原样返回
	if !almostEqual(result.UpdatedContext.TotalPoints, 42) {
		t.Errorf("context mutated on rejection: total points = %v", result.UpdatedContext.TotalPoints)
	}
	if result.UpdatedContext.StreakDays != 0 {
		t.Errorf("context mutated on rejection: streak = %d", result.UpdatedContext.StreakDays)
	}
}

func TestScoreRejectsUnrealisticPace(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")

	// 5km 在 10 分钟内：120 s/km，快于150阈值
	rec := cardioRecord("running", morning, 5, 600)

	result, err := e.Score(rec, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if result.Breakdown.IsValid {
		t.Fatalf("expected rejection for 120 s/km pace")
	}
	if result.Breakdown.RejectionReason != ReasonUnrealisticPace {
		t.Errorf("reason = %q; want %q", result.Breakdown.RejectionReason, ReasonUnrealisticPace)
	}
}

func TestScoreRejectsOverlappingInterval(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")

	first := strengthRecord("squat", morning, 40, []SetEntry{{Reps: 10, WeightKg: 50}})
	result1, err := e.Score(first, ctx)
	if err != nil {
		t.Fatalf("first Score returned error: %v", err)
	}

	// 与第一条的区间部分重叠
	overlapping := strengthRecord("bench_press", morning.Add(20*time.Minute), 40, []SetEntry{{Reps: 10, WeightKg: 40}})
	result2, err := e.Score(overlapping, result1.UpdatedContext)
	if err != nil {
		t.Fatalf("second Score returned error: %v", err)
	}
	if result2.Breakdown.IsValid {
		t.Fatalf("expected duplicate rejection for overlapping interval")
	}
	if result2.Breakdown.RejectionReason != ReasonDuplicate {
		t.Errorf("reason = %q; want %q", result2.Breakdown.RejectionReason, ReasonDuplicate)
	}

	// 相邻但不重叠的区间可以接受
	adjacent := strengthRecord("bench_press", morning.Add(40*time.Minute), 40, []SetEntry{{Reps: 10, WeightKg: 40}})
	result3, err := e.Score(adjacent, result1.UpdatedContext)
	if err != nil {
		t.Fatalf("third Score returned error: %v", err)
	}
	if !result3.Breakdown.IsValid {
		t.Errorf("adjacent interval rejected: %q", result3.Breakdown.RejectionReason)
	}
}

func TestScoreVarietyBonusOnThirdDistinctExercise(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")

	exercises := []string{"squat", "bench_press", "deadlift"}
	var result ScoreResult
	var err error
	for i, ex := range exercises {
		rec := strengthRecord(ex, morning.Add(time.Duration(i)*time.Hour), 30, []SetEntry{{Reps: 10, WeightKg: 40}})
		result, err = e.Score(rec, ctx)
		if err != nil {
			t.Fatalf("Score(%s) returned error: %v", ex, err)
		}

		_, hasVariety := result.Breakdown.Bonuses[BonusVariety]
		wantVariety := i == 2
		if hasVariety != wantVariety {
			t.Errorf("exercise #%d variety bonus = %v; want %v", i+1, hasVariety, wantVariety)
		}
		ctx = result.UpdatedContext
	}

	if got := result.Breakdown.Bonuses[BonusVariety]; !almostEqual(got, 5) {
		t.Errorf("variety bonus = %v; want 5", got)
	}
}

func TestScoreTimeOfDayBonus(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		hour int
		want bool
	}{
		{5, true},   // 早鸟
		{6, true},   // 早鸟窗口最后一小时
		{7, false},  // 窗口之外
		{12, false}, // 白天
		{21, false}, // 夜猫之前
		{22, true},  // 夜猫
		{23, true},  // 夜猫
	}

	for _, tt := range tests {
		start := time.Date(2026, 3, 10, tt.hour, 0, 0, 0, time.Local)
		rec := strengthRecord("squat", start, 30, []SetEntry{{Reps: 10, WeightKg: 40}})
		result, err := e.Score(rec, NewUserActivityContext("user-1"))
		if err != nil {
			t.Fatalf("Score at hour %d returned error: %v", tt.hour, err)
		}
		_, got := result.Breakdown.Bonuses[BonusTimeOfDay]
		if got != tt.want {
			t.Errorf("hour %d: time-of-day bonus = %v; want %v", tt.hour, got, tt.want)
		}
	}
}

func TestScoreStreakAdvancement(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		name          string
		lastActiveDay string
		streakDays    int
		wantStreak    int
	}{
		{"first ever", "", 0, 1},
		{"consecutive day", morning.AddDate(0, 0, -1).Format("2006-01-02"), 6, 7},
		{"same day", morning.Format("2006-01-02"), 6, 6},
		{"gap resets", morning.AddDate(0, 0, -3).Format("2006-01-02"), 10, 1},
	}

	for _, tt := range tests {
		ctx := NewUserActivityContext("user-1")
		ctx.LastActiveDay = tt.lastActiveDay
		ctx.StreakDays = tt.streakDays

		rec := strengthRecord("squat", morning, 30, []SetEntry{{Reps: 10, WeightKg: 40}})
		result, err := e.Score(rec, ctx)
		if err != nil {
			t.Fatalf("%s: Score returned error: %v", tt.name, err)
		}
		if got := result.UpdatedContext.StreakDays; got != tt.wantStreak {
			t.Errorf("%s: streak = %d; want %d", tt.name, got, tt.wantStreak)
		}
	}
}

func TestScoreFinalClampAfterMultiplier(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")
	ctx.StreakDays = 14
	ctx.LastActiveDay = morning.AddDate(0, 0, -1).Format("2006-01-02")

	// 小计正好压到硬上限，乘数不允许把它推得更高
	sets := make([]SetEntry, 10)
	for i := range sets {
		sets[i] = SetEntry{Reps: 20, WeightKg: 100}
	}
	rec := strengthRecord("leg_press", morning, 90, sets)

	result, err := e.Score(rec, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	b := result.Breakdown

	if !almostEqual(b.TotalMultiplier, 1.10) {
		t.Errorf("total multiplier = %v; want 1.10", b.TotalMultiplier)
	}
	if !almostEqual(b.CappedTotal, 350) {
		t.Errorf("capped total = %v; want 350 (hard ceiling)", b.CappedTotal)
	}
	if !b.HardCapApplied {
		t.Errorf("expected hard cap flag after final clamp")
	}
}

func TestScoreCardioBasePoints(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// 10km 60分钟：配速360 s/km，正好基准 → 系数1.0；200米爬升 → 1.2
	rec := cardioRecord("running", morning, 10, 3600)
	rec.ElevationGainM = 200

	result, err := e.Score(rec, NewUserActivityContext("user-1"))
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if !almostEqual(result.Breakdown.BasePoints, 10*10*1.0*1.2) {
		t.Errorf("base = %v; want 120", result.Breakdown.BasePoints)
	}

	// 最佳配速按档位写入上下文
	if got := result.UpdatedContext.BestPaceSecPerKm["10k-21k"]; !almostEqual(got, 360) {
		t.Errorf("best pace = %v; want 360", got)
	}
}

func TestScoreDayRolloverResetsDailyState(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")

	day1 := strengthRecord("squat", morning, 30, []SetEntry{{Reps: 10, WeightKg: 40}})
	result1, err := e.Score(day1, ctx)
	if err != nil {
		t.Fatalf("day1 Score returned error: %v", err)
	}
	if len(result1.UpdatedContext.AcceptedIntervals) != 1 {
		t.Fatalf("accepted intervals = %d; want 1", len(result1.UpdatedContext.AcceptedIntervals))
	}

	// 次日不重叠的提交正常接受，当日动作集合清零重计
	day2 := strengthRecord("squat", morning.AddDate(0, 0, 1), 30, []SetEntry{{Reps: 10, WeightKg: 40}})
	result2, err := e.Score(day2, result1.UpdatedContext)
	if err != nil {
		t.Fatalf("day2 Score returned error: %v", err)
	}
	if !result2.Breakdown.IsValid {
		t.Fatalf("day2 record rejected: %q", result2.Breakdown.RejectionReason)
	}
	// 去重区间按窗口累积，不随跨日清零
	if got := len(result2.UpdatedContext.AcceptedIntervals); got != 2 {
		t.Errorf("accepted intervals after rollover = %d; want 2", got)
	}
	if got := len(result2.UpdatedContext.ExercisesToday); got != 1 {
		t.Errorf("exercises today after rollover = %d; want 1", got)
	}
	if result2.UpdatedContext.StreakDays != 2 {
		t.Errorf("streak = %d; want 2", result2.UpdatedContext.StreakDays)
	}
}

func TestScoreRejectsBackdatedOverlap(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")

	day1 := strengthRecord("squat", morning, 30, []SetEntry{{Reps: 10, WeightKg: 40}})
	result1, err := e.Score(day1, ctx)
	if err != nil {
		t.Fatalf("day1 Score returned error: %v", err)
	}

	// 次日先正常活动一次，让上下文的"当天"推进到day2
	day2 := strengthRecord("squat", morning.AddDate(0, 0, 1), 30, []SetEntry{{Reps: 10, WeightKg: 40}})
	result2, err := e.Score(day2, result1.UpdatedContext)
	if err != nil {
		t.Fatalf("day2 Score returned error: %v", err)
	}

	// 补录一条与day1区间重叠的报告，必须被去重守卫拦下
	backdated := strengthRecord("bench_press", morning.Add(10*time.Minute), 30, []SetEntry{{Reps: 10, WeightKg: 40}})
	result3, err := e.Score(backdated, result2.UpdatedContext)
	if err != nil {
		t.Fatalf("backdated Score returned error: %v", err)
	}
	if result3.Breakdown.IsValid {
		t.Fatalf("expected duplicate rejection for backdated overlapping report")
	}
	if result3.Breakdown.RejectionReason != ReasonDuplicate {
		t.Errorf("reason = %q; want %q", result3.Breakdown.RejectionReason, ReasonDuplicate)
	}
}

func TestScoreCardioOverloadBonus(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ctx := NewUserActivityContext("user-1")
	// 模拟窗口内已有一次5km跑（有氧的训练量就是距离）
	ctx.VolumeAverages["running"] = 5
	ctx.VolumeSamples["running"] = 1

	rec := cardioRecord("running", morning, 6, 2400)
	result, err := e.Score(rec, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	b := result.Breakdown
	if !b.IsValid {
		t.Fatalf("expected valid record, got rejection %q", b.RejectionReason)
	}
	if got, ok := b.Bonuses[BonusOverload]; !ok || !almostEqual(got, b.BasePoints*0.10) {
		t.Errorf("overload bonus = %v (present=%v); want %v", got, ok, b.BasePoints*0.10)
	}
}
