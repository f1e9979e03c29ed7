package leaderboard

import (
	"net/http"

	"github.com/FitArena/activity-score-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// LeaderboardResponse 是榜单查询接口的响应模型。
type LeaderboardResponse struct {
	Scope   Scope   `json:"scope"`
	Entries []Entry `json:"entries"`
	MyRank  int64   `json:"myRank,omitempty"`
}

// GetLeaderboardHandler 处理 GET /api/leaderboard/:scope 请求。
func GetLeaderboardHandler(c *gin.Context) {
	scope, ok := ParseScope(c.Param("scope"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的榜单范围"})
		return
	}

	userID := c.GetString(user.UserIDKey)
	if scope == ScopeFriends && !user.IsValidUUID(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "好友榜需要有效的用户标识"})
		return
	}

	entries, err := GetLeaderboard(scope, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取榜单"})
		return
	}

	resp := LeaderboardResponse{Scope: scope, Entries: entries}
	if scope == ScopeAllTime && user.IsValidUUID(userID) {
		if rank, err := GetUserRank(userID); err == nil {
			resp.MyRank = rank
		}
	}

	c.JSON(http.StatusOK, resp)
}
