package leaderboard

import "time"

// Scope 是排行榜的取值范围。
type Scope string

const (
	// ScopeAllTime 按生涯总分排名
	ScopeAllTime Scope = "alltime"
	// ScopeWeekly 按本周（周一起算）已接受活动的得分排名
	ScopeWeekly Scope = "weekly"
	// ScopeFriends 是全榜按好友关系过滤后的视图
	ScopeFriends Scope = "friends"
)

// ParseScope 把路径参数解析为合法的榜单范围。
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case ScopeAllTime, ScopeWeekly, ScopeFriends:
		return Scope(s), true
	}
	return "", false
}

// Standing 是排名前的单用户输入：总分和最近一次得分时刻。
type Standing struct {
	UserUUID     string
	Points       float64
	LastScoredAt time.Time
}

// Entry 是排名后的单条榜单记录。
type Entry struct {
	Rank     int     `json:"rank"`
	UserUUID string  `json:"userUuid"`
	Points   float64 `json:"points"`
}
