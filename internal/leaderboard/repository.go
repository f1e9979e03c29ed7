package leaderboard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/FitArena/activity-score-backend/internal/activity"
	"github.com/FitArena/activity-score-backend/internal/platform/config"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/internal/user"
	"github.com/redis/go-redis/v9"
)

// --- Redis 键名常量 ---

const (
	// ViewKeyAllTime / ViewKeyWeekly 存储排好序的榜单JSON视图。
	// Value: []Entry 的JSON序列化字符串
	ViewKeyAllTime = "leaderboard:view:alltime"
	ViewKeyWeekly  = "leaderboard:view:weekly"

	// RankingKeyAllTime 是一个 Sorted Set，用于按总分快速查询单个用户的名次。
	// Score: 用户总分
	// Member: 用户UUID
	RankingKeyAllTime = "leaderboard:alltime"
)

// weekStart 返回now所在周的周一零点（本地时区）。
func weekStart(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // 周日归入上一周
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// allTimeStandings 从SQLite读取全量用户战绩。
func allTimeStandings() ([]Standing, error) {
	var users []user.User
	if err := database.DB.Select("uuid", "total_points", "last_scored_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("无法从SQLite读取用户战绩: %w", err)
	}
	standings := make([]Standing, 0, len(users))
	for _, u := range users {
		standings = append(standings, Standing{
			UserUUID:     u.UUID,
			Points:       u.TotalPoints,
			LastScoredAt: u.LastScoredAt,
		})
	}
	return standings, nil
}

// weeklyStandings 按本周已接受活动的得分聚合用户战绩。
func weeklyStandings(now time.Time) ([]Standing, error) {
	type row struct {
		UserUUID string
		Points   float64
		LastEnd  time.Time
	}
	var rows []row
	if err := database.DB.Model(&activity.ActivityRecord{}).
		Select("user_uuid, SUM(points) AS points, MAX(end_time) AS last_end").
		Where("is_valid = ? AND start_time >= ?", true, weekStart(now)).
		Group("user_uuid").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法聚合本周活动得分: %w", err)
	}
	standings := make([]Standing, 0, len(rows))
	for _, r := range rows {
		standings = append(standings, Standing{
			UserUUID:     r.UserUUID,
			Points:       r.Points,
			LastScoredAt: r.LastEnd,
		})
	}
	return standings, nil
}

// RebuildViews 从SQLite全量重算两份榜单视图并写入Redis。
// maxEntries 限制视图长度；Sorted Set 始终保留全量分数以支持名次查询。
// 注意：此函数不包含锁，调用方需要确保在安全的时机调用。
func RebuildViews(now time.Time, maxEntries int) error {
	allTime, err := allTimeStandings()
	if err != nil {
		return err
	}
	weekly, err := weeklyStandings(now)
	if err != nil {
		return err
	}

	allTimeView, err := marshalView(Rank(allTime), maxEntries)
	if err != nil {
		return err
	}
	weeklyView, err := marshalView(Rank(weekly), maxEntries)
	if err != nil {
		return err
	}

	members := make([]redis.Z, 0, len(allTime))
	for _, s := range allTime {
		members = append(members, redis.Z{Score: s.Points, Member: s.UserUUID})
	}

	pipe := database.RDB.Pipeline()
	pipe.Set(database.Ctx, ViewKeyAllTime, allTimeView, 0)
	pipe.Set(database.Ctx, ViewKeyWeekly, weeklyView, 0)
	pipe.Del(database.Ctx, RankingKeyAllTime)
	if len(members) > 0 {
		pipe.ZAdd(database.Ctx, RankingKeyAllTime, members...)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("无法写入排行榜视图到Redis: %w", err)
	}
	return nil
}

func marshalView(entries []Entry, maxEntries int) (string, error) {
	if maxEntries > 0 && len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("无法序列化榜单视图: %w", err)
	}
	return string(data), nil
}

// GetCachedView 读取一份预先计算的榜单JSON视图。
// 视图键不存在时（如Redis被清空后）就地重建一次再读。
func GetCachedView(scope Scope) ([]Entry, error) {
	var key string
	switch scope {
	case ScopeAllTime:
		key = ViewKeyAllTime
	case ScopeWeekly:
		key = ViewKeyWeekly
	default:
		return nil, fmt.Errorf("范围 %s 没有缓存视图", scope)
	}

	data, err := database.RDB.Get(database.Ctx, key).Result()
	if err == redis.Nil {
		if rebuildErr := RebuildViews(time.Now(), config.Cfg.Leaderboard.MaxEntries); rebuildErr != nil {
			return nil, rebuildErr
		}
		data, err = database.RDB.Get(database.Ctx, key).Result()
		if err == redis.Nil {
			return []Entry{}, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("无法从Redis读取榜单视图: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, fmt.Errorf("榜单视图反序列化失败: %w", err)
	}
	return entries, nil
}

// UpdateUserScore 在评分后增量更新用户在全榜 Sorted Set 中的分数。
// JSON视图由刷新器周期性重建，这里不动它。
func UpdateUserScore(userID string, totalPoints float64) error {
	if err := database.RDB.ZAdd(database.Ctx, RankingKeyAllTime,
		redis.Z{Score: totalPoints, Member: userID}).Err(); err != nil {
		return fmt.Errorf("无法更新用户 %s 的榜单分数: %w", userID, err)
	}
	return nil
}

// GetUserRank 查询单个用户在全榜中的名次（从1开始）。
// 用户不在榜中时返回0。
func GetUserRank(userID string) (int64, error) {
	rank, err := database.RDB.ZRevRank(database.Ctx, RankingKeyAllTime, userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("无法查询用户 %s 的名次: %w", userID, err)
	}
	return rank + 1, nil
}
