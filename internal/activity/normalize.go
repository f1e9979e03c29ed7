package activity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawReport 是上游提交的松散类型的活动报告。
// 它可能来自语音转写或前端表单，字段是否齐全取决于类别。
type RawReport struct {
	UserUUID       string     `json:"user_uuid"`
	Category       string     `json:"category"`
	ExerciseID     string     `json:"exercise_id"`
	Sets           []SetEntry `json:"sets,omitempty"`
	DistanceKm     float64    `json:"distance_km,omitempty"`
	DurationSec    float64    `json:"duration_sec,omitempty"`
	ElevationGainM float64    `json:"elevation_gain_m,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
}

// Normalize 把松散的原始报告规范化为一条不可变的ActivityRecord。
// 它只做单位/默认值的归一和必要字段检查，没有任何副作用。
func Normalize(raw RawReport) (ActivityRecord, error) {
	var rec ActivityRecord

	if strings.TrimSpace(raw.UserUUID) == "" {
		return rec, &NormalizationError{Field: "user_uuid", Reason: "不能为空"}
	}

	category := Category(strings.ToLower(strings.TrimSpace(raw.Category)))
	switch category {
	case CategoryStrength, CategoryCardio, CategoryCore:
	default:
		return rec, &NormalizationError{Field: "category", Reason: "必须是 strength/cardio/core 之一"}
	}

	exerciseID := canonicalExerciseID(raw.ExerciseID)
	if exerciseID == "" {
		return rec, &NormalizationError{Field: "exercise_id", Reason: "不能为空"}
	}

	if raw.StartTime.IsZero() || raw.EndTime.IsZero() {
		return rec, &NormalizationError{Field: "start_time/end_time", Reason: "不能为空"}
	}
	if !raw.EndTime.After(raw.StartTime) {
		return rec, &NormalizationError{Field: "end_time", Reason: "必须晚于start_time"}
	}

	rec = ActivityRecord{
		ActivityID: uuid.NewString(),
		UserUUID:   raw.UserUUID,
		Category:   category,
		ExerciseID: exerciseID,
		StartTime:  raw.StartTime,
		EndTime:    raw.EndTime,
	}

	switch category {
	case CategoryStrength:
		if len(raw.Sets) == 0 {
			return ActivityRecord{}, &NormalizationError{Field: "sets", Reason: "strength类别至少需要一组"}
		}
		sets := make([]SetEntry, 0, len(raw.Sets))
		for _, s := range raw.Sets {
			if s.Reps <= 0 {
				return ActivityRecord{}, &NormalizationError{Field: "sets.reps", Reason: "必须为正数"}
			}
			if s.WeightKg < 0 {
				return ActivityRecord{}, &NormalizationError{Field: "sets.weight_kg", Reason: "不能为负数"}
			}
			sets = append(sets, s)
		}
		rec.Sets = sets

	case CategoryCardio:
		if raw.DistanceKm <= 0 {
			return ActivityRecord{}, &NormalizationError{Field: "distance_km", Reason: "必须为正数"}
		}
		if raw.DurationSec <= 0 {
			return ActivityRecord{}, &NormalizationError{Field: "duration_sec", Reason: "必须为正数"}
		}
		if raw.ElevationGainM < 0 {
			return ActivityRecord{}, &NormalizationError{Field: "elevation_gain_m", Reason: "不能为负数"}
		}
		rec.DistanceKm = raw.DistanceKm
		rec.DurationSec = raw.DurationSec
		rec.ElevationGainM = raw.ElevationGainM

	case CategoryCore:
		if raw.DurationSec <= 0 {
			return ActivityRecord{}, &NormalizationError{Field: "duration_sec", Reason: "必须为正数"}
		}
		rec.DurationSec = raw.DurationSec
	}

	return rec, nil
}

// canonicalExerciseID 把动作ID归一为小写下划线形式，
// 保证 "Bench Press" 和 "bench_press" 被视为同一动作。
func canonicalExerciseID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.ReplaceAll(id, " ", "_")
}
