package user

import (
	"testing"
	"time"

	"github.com/FitArena/activity-score-backend/internal/activity"
	"github.com/FitArena/activity-score-backend/internal/platform/config"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/internal/testutil"
)

// 与config.yaml缺省值一致的评分参数，供依赖全局引擎的测试使用
func configureScoring(t *testing.T) {
	t.Helper()
	prev := config.Cfg
	config.Cfg = &config.Config{Scoring: config.ScoringConfig{
		KStrength: 0.1, KCardio: 10, KCore: 0.1, BodyweightFloorKg: 1,
		BaselinePaceSecPerKm: 360, PaceFactorCeiling: 1.5, ElevationBonusRate: 0.1,
		MaxStrengthWeightKg: 500, MinPaceSecPerKm: 150,
		VarietyThreshold: 3, VarietyBonus: 5, OverloadRate: 0.1, PRBonus: 15,
		EarlyBirdEndHour: 7, NightOwlFromHour: 22, TimeOfDayBonus: 10,
		ChallengeFactor: 1.05, SeasonalFactor: 1.08, MultiplierCap: 1.25,
		SoftCapRetention: 0.5,
	}}
	activity.ConfigureModule(config.Cfg.Scoring)
	t.Cleanup(func() { config.Cfg = prev })
}

func openUserTestDB(t *testing.T) {
	t.Helper()
	testutil.OpenTestDB(t, &User{}, &PersonalBest{}, &ChallengeMembership{}, &Friendship{}, &activity.ActivityRecord{})
}

func acceptedStrength(t *testing.T, userID, activityID, exercise string, start time.Time, sets []activity.SetEntry) {
	t.Helper()
	rec := activity.ActivityRecord{
		ActivityID: activityID,
		UserUUID:   userID,
		Category:   activity.CategoryStrength,
		ExerciseID: exercise,
		Sets:       sets,
		StartTime:  start,
		EndTime:    start.Add(40 * time.Minute),
		IsValid:    true,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		t.Fatalf("无法写入测试记录 %s: %v", activityID, err)
	}
}

func acceptedCardio(t *testing.T, userID, activityID, exercise string, start time.Time, distanceKm, durationSec float64) {
	t.Helper()
	rec := activity.ActivityRecord{
		ActivityID:  activityID,
		UserUUID:    userID,
		Category:    activity.CategoryCardio,
		ExerciseID:  exercise,
		DistanceKm:  distanceKm,
		DurationSec: durationSec,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(durationSec) * time.Second),
		IsValid:     true,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		t.Fatalf("无法写入测试记录 %s: %v", activityID, err)
	}
}

func TestBuildContextVolumeWindowAllCategories(t *testing.T) {
	openUserTestDB(t)
	configureScoring(t)

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	uid := "user-ctx-1"

	// 窗口内：一次5km跑（7天前）和一次力量训练（3天前）
	acceptedCardio(t, uid, "a-run", "running", now.AddDate(0, 0, -7), 5, 2000)
	acceptedStrength(t, uid, "a-squat", "squat", now.AddDate(0, 0, -3), []activity.SetEntry{
		{Reps: 10, WeightKg: 50}, {Reps: 10, WeightKg: 50}, {Reps: 10, WeightKg: 50},
	})
	// 窗口外和无效的记录都不参与均值
	acceptedCardio(t, uid, "a-old", "running", now.AddDate(0, 0, -40), 20, 8000)
	rejected := activity.ActivityRecord{
		ActivityID: "a-bad", UserUUID: uid, Category: activity.CategoryCardio,
		ExerciseID: "running", DistanceKm: 100, DurationSec: 1000,
		StartTime: now.AddDate(0, 0, -2), EndTime: now.AddDate(0, 0, -2).Add(time.Hour),
		IsValid: false, RejectionReason: activity.ReasonUnrealisticPace,
	}
	if err := database.DB.Create(&rejected).Error; err != nil {
		t.Fatalf("无法写入被拒绝的测试记录: %v", err)
	}

	ctx, err := BuildContext(uid, now)
	if err != nil {
		t.Fatalf("BuildContext returned error: %v", err)
	}

	// 有氧的训练量是距离，均值必须出现在上下文里
	if got, ok := ctx.VolumeAverages["running"]; !ok || got != 5 {
		t.Errorf("VolumeAverages[running] = %v (present=%v); want 5", got, ok)
	}
	if got := ctx.VolumeSamples["running"]; got != 1 {
		t.Errorf("VolumeSamples[running] = %d; want 1", got)
	}
	if got := ctx.VolumeAverages["squat"]; got != 1500 {
		t.Errorf("VolumeAverages[squat] = %v; want 1500", got)
	}
	if got := len(ctx.AcceptedIntervals); got != 2 {
		t.Errorf("len(AcceptedIntervals) = %d; want 2", got)
	}

	// 基于该上下文评一次6km跑，超负荷奖励必须触发
	run := activity.ActivityRecord{
		ActivityID: "a-new", UserUUID: uid, Category: activity.CategoryCardio,
		ExerciseID: "running", DistanceKm: 6, DurationSec: 2400,
		StartTime: now, EndTime: now.Add(40 * time.Minute),
	}
	result, err := activity.DefaultEngine().Score(run, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if _, ok := result.Breakdown.Bonuses[activity.BonusOverload]; !ok {
		t.Errorf("overload bonus missing for 6km vs trailing 5km average; bonuses=%v", result.Breakdown.Bonuses)
	}
}

func TestBuildContextGuardsBackdatedOverlap(t *testing.T) {
	openUserTestDB(t)
	configureScoring(t)

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	uid := "user-ctx-2"
	yesterday := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	acceptedStrength(t, uid, "a-day1", "squat", yesterday, []activity.SetEntry{{Reps: 10, WeightKg: 40}})

	ctx, err := BuildContext(uid, now)
	if err != nil {
		t.Fatalf("BuildContext returned error: %v", err)
	}
	if got := len(ctx.AcceptedIntervals); got != 1 {
		t.Fatalf("len(AcceptedIntervals) = %d; want 1", got)
	}

	// 补录一条与昨天已接受记录重叠的报告
	backdated := activity.ActivityRecord{
		ActivityID: "a-backdated", UserUUID: uid, Category: activity.CategoryStrength,
		ExerciseID: "bench_press", Sets: []activity.SetEntry{{Reps: 10, WeightKg: 40}},
		StartTime: yesterday.Add(10 * time.Minute), EndTime: yesterday.Add(50 * time.Minute),
	}
	result, err := activity.DefaultEngine().Score(backdated, ctx)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if result.Breakdown.IsValid {
		t.Fatalf("expected duplicate rejection for backdated overlapping report")
	}
	if result.Breakdown.RejectionReason != activity.ReasonDuplicate {
		t.Errorf("reason = %q; want %q", result.Breakdown.RejectionReason, activity.ReasonDuplicate)
	}
}

func TestCommitContextRoundTrip(t *testing.T) {
	openUserTestDB(t)
	configureScoring(t)

	uid := "user-ctx-3"
	now := time.Date(2026, 8, 30, 21, 30, 0, 0, time.Local)

	prev := activity.NewUserActivityContext(uid)
	next := activity.NewUserActivityContext(uid)
	next.StreakDays = 3
	next.LastActiveDay = "2026-08-30"
	next.TotalPoints = 120.5
	next.LastScoredAt = now
	next.LifetimeTotals["activities"] = 4
	next.LifetimeTotals["points"] = 120.5
	next.BestOneRepMax["squat"] = 80
	next.BestPaceSecPerKm["5k-10k"] = 340

	if err := CommitContext(database.DB, &prev, &next); err != nil {
		t.Fatalf("CommitContext returned error: %v", err)
	}

	got, err := BuildContext(uid, now)
	if err != nil {
		t.Fatalf("BuildContext returned error: %v", err)
	}
	if got.StreakDays != 3 {
		t.Errorf("StreakDays = %d; want 3", got.StreakDays)
	}
	if got.LastActiveDay != "2026-08-30" {
		t.Errorf("LastActiveDay = %q; want 2026-08-30", got.LastActiveDay)
	}
	if got.TotalPoints != 120.5 {
		t.Errorf("TotalPoints = %v; want 120.5", got.TotalPoints)
	}
	if !got.LastScoredAt.Equal(now) {
		t.Errorf("LastScoredAt = %v; want %v", got.LastScoredAt, now)
	}
	if got.LifetimeTotals["activities"] != 4 {
		t.Errorf("LifetimeTotals[activities] = %v; want 4", got.LifetimeTotals["activities"])
	}
	if got.BestOneRepMax["squat"] != 80 {
		t.Errorf("BestOneRepMax[squat] = %v; want 80", got.BestOneRepMax["squat"])
	}
	if got.BestPaceSecPerKm["5k-10k"] != 340 {
		t.Errorf("BestPaceSecPerKm[5k-10k] = %v; want 340", got.BestPaceSecPerKm["5k-10k"])
	}

	// 纪录刷新走upsert的更新分支
	next2 := got.Clone()
	next2.BestOneRepMax["squat"] = 85
	if err := CommitContext(database.DB, &got, &next2); err != nil {
		t.Fatalf("second CommitContext returned error: %v", err)
	}
	again, err := BuildContext(uid, now)
	if err != nil {
		t.Fatalf("BuildContext returned error: %v", err)
	}
	if again.BestOneRepMax["squat"] != 85 {
		t.Errorf("BestOneRepMax[squat] after update = %v; want 85", again.BestOneRepMax["squat"])
	}
}
