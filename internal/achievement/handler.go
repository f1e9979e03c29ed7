package achievement

import (
	"net/http"

	"github.com/FitArena/activity-score-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// GetAchievementProgress 处理 GET /api/achievements/progress 请求。
// 返回当前用户对全部成就定义的进度视图。
func GetAchievementProgress(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	if !user.IsValidUUID(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户标识"})
		return
	}

	views, err := GetProgressForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取成就进度"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": views})
}
