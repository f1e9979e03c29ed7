package leaderboard

import (
	"fmt"
	"time"

	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/internal/user"
)

// GetLeaderboard 返回指定范围的榜单。
// alltime和weekly直接取自预先计算的Redis视图；
// friends按请求者的好友关系即时计算，好友数量通常很小。
func GetLeaderboard(scope Scope, requesterID string) ([]Entry, error) {
	switch scope {
	case ScopeAllTime, ScopeWeekly:
		return GetCachedView(scope)
	case ScopeFriends:
		return friendsLeaderboard(requesterID)
	}
	return nil, fmt.Errorf("未知的榜单范围: %s", scope)
}

// friendsLeaderboard 对请求者本人及其好友做一次小规模排名。
func friendsLeaderboard(requesterID string) ([]Entry, error) {
	friendUUIDs, err := user.ListFriendUUIDs(requesterID)
	if err != nil {
		return nil, err
	}
	ids := append(friendUUIDs, requesterID)

	var users []user.User
	if err := database.DB.
		Select("uuid", "total_points", "last_scored_at").
		Where("uuid IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("无法读取好友战绩: %w", err)
	}

	standings := make([]Standing, 0, len(users))
	for _, u := range users {
		standings = append(standings, Standing{
			UserUUID:     u.UUID,
			Points:       u.TotalPoints,
			LastScoredAt: u.LastScoredAt,
		})
	}
	return Rank(standings), nil
}

// Refresh 立即重建一次榜单视图。
func Refresh(now time.Time, maxEntries int) error {
	return RebuildViews(now, maxEntries)
}
