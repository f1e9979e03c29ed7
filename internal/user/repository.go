package user

import (
	"fmt"
	"sync"
	"time"

	"github.com/FitArena/activity-score-backend/internal/activity"
	"github.com/FitArena/activity-score-backend/internal/platform/config"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- 并发控制 ---

// userLocks 按用户UUID分配互斥锁，保证同一用户的
// 上下文构建、评分、提交全程串行。不同用户互不阻塞。
var userLocks sync.Map // uuid -> *sync.Mutex

func lockFor(uuidStr string) *sync.Mutex {
	mu, _ := userLocks.LoadOrStore(uuidStr, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// LockUser 获取指定用户的串行锁。
func LockUser(uuidStr string) {
	lockFor(uuidStr).Lock()
}

// UnlockUser 释放指定用户的串行锁。
func UnlockUser(uuidStr string) {
	lockFor(uuidStr).Unlock()
}

// --- 上下文快照 ---

// volumeWindowDays 是上下文装配的回溯窗口（4周），
// 滚动训练量均值和去重区间都取这个范围。
const volumeWindowDays = 28

// BuildContext 从SQLite装配一个用户的评分上下文快照。
// 用户行提供滚动状态；窗口内的有效记录提供去重区间、当日动作集合
// 和各动作的滚动训练量均值；个人纪录表提供各项最佳。
// 调用方必须已持有该用户的锁。
func BuildContext(userID string, now time.Time) (activity.UserActivityContext, error) {
	ctx := activity.NewUserActivityContext(userID)

	// 1. 用户行（不存在时返回零值上下文，首次提交时由CommitContext创建）
	var u User
	err := database.DB.Where("uuid = ?", userID).First(&u).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return ctx, fmt.Errorf("无法读取用户 %s: %w", userID, err)
	}
	if err == nil {
		ctx.StreakDays = u.StreakDays
		ctx.LastActiveDay = u.LastActiveDay
		ctx.TotalPoints = u.TotalPoints
		ctx.LastScoredAt = u.LastScoredAt
		for k, v := range u.LifetimeTotals {
			ctx.LifetimeTotals[k] = v
		}
	}

	// 2. 窗口内的有效记录，一次读取喂三个用途：
	//    全部区间供去重守卫（补录的报告也要与此前几天的记录比较）；
	//    当天的部分提供已记录的动作集合；
	//    全部类别按各自的量纲（重量x次数/距离/时长）重建4周滚动均值
	engine := activity.DefaultEngine()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	windowStart := dayStart.AddDate(0, 0, -volumeWindowDays)
	var recent []activity.ActivityRecord
	if err := database.DB.
		Where("user_uuid = ? AND is_valid = ? AND start_time >= ?", userID, true, windowStart).
		Order("start_time asc").
		Find(&recent).Error; err != nil {
		return ctx, fmt.Errorf("无法读取用户 %s 的近期记录: %w", userID, err)
	}
	sums := make(map[string]float64)
	for i := range recent {
		rec := &recent[i]
		ctx.AcceptedIntervals = append(ctx.AcceptedIntervals, rec.Interval())
		if !rec.StartTime.Before(dayStart) && !ctx.HasLoggedToday(rec.ExerciseID) {
			ctx.ExercisesToday = append(ctx.ExercisesToday, rec.ExerciseID)
		}
		sums[rec.ExerciseID] += engine.SessionVolume(rec)
		ctx.VolumeSamples[rec.ExerciseID]++
	}
	for id, sum := range sums {
		ctx.VolumeAverages[id] = sum / float64(ctx.VolumeSamples[id])
	}

	// 4. 个人纪录
	var bests []PersonalBest
	if err := database.DB.Where("user_uuid = ?", userID).Find(&bests).Error; err != nil {
		return ctx, fmt.Errorf("无法读取用户 %s 的个人纪录: %w", userID, err)
	}
	for _, b := range bests {
		switch b.Kind {
		case BestKindOneRM:
			ctx.BestOneRepMax[b.Key] = b.Value
		case BestKindPace:
			ctx.BestPaceSecPerKm[b.Key] = b.Value
		}
	}

	// 5. 活跃挑战与赛季标记
	var memberships []ChallengeMembership
	if err := database.DB.
		Where("user_uuid = ? AND active = ?", userID, true).
		Order("challenge_id asc").
		Find(&memberships).Error; err != nil {
		return ctx, fmt.Errorf("无法读取用户 %s 的挑战: %w", userID, err)
	}
	for _, m := range memberships {
		ctx.ActiveChallenges = append(ctx.ActiveChallenges, m.ChallengeID)
	}
	ctx.SeasonalEventActive = config.Cfg.Scoring.SeasonalEventActive

	return ctx, nil
}

// CommitContext 在给定事务中把引擎产出的新上下文写回SQLite。
// 用户行整体upsert；个人纪录只写入与旧上下文相比发生变化的条目。
// 训练量均值是从活动记录派生的，不落库。
func CommitContext(tx *gorm.DB, prev, next *activity.UserActivityContext) error {
	row := User{
		UUID:           next.UserUUID,
		TotalPoints:    next.TotalPoints,
		LastScoredAt:   next.LastScoredAt,
		StreakDays:     next.StreakDays,
		LastActiveDay:  next.LastActiveDay,
		ActivityCount:  int(next.LifetimeTotals[activity.MetricActivities]),
		LifetimeTotals: next.LifetimeTotals,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_points", "last_scored_at", "streak_days",
			"last_active_day", "activity_count", "lifetime_totals", "updated_at",
		}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("无法写回用户 %s: %w", next.UserUUID, err)
	}

	if err := upsertBests(tx, next.UserUUID, BestKindOneRM, prev.BestOneRepMax, next.BestOneRepMax); err != nil {
		return err
	}
	if err := upsertBests(tx, next.UserUUID, BestKindPace, prev.BestPaceSecPerKm, next.BestPaceSecPerKm); err != nil {
		return err
	}
	return nil
}

func upsertBests(tx *gorm.DB, userID, kind string, prev, next map[string]float64) error {
	for key, value := range next {
		if old, ok := prev[key]; ok && old == value {
			continue
		}
		best := PersonalBest{UserUUID: userID, Kind: kind, Key: key, Value: value}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_uuid"}, {Name: "kind"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&best).Error; err != nil {
			return fmt.Errorf("无法写回个人纪录 %s/%s/%s: %w", userID, kind, key, err)
		}
	}
	return nil
}

// ListFriendUUIDs 返回某用户的好友UUID列表，供好友榜过滤。
func ListFriendUUIDs(userID string) ([]string, error) {
	var edges []Friendship
	if err := database.DB.Where("user_uuid = ?", userID).Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("无法读取用户 %s 的好友列表: %w", userID, err)
	}
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.FriendUUID)
	}
	return out, nil
}
