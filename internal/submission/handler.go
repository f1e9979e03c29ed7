package submission

import (
	"errors"
	"net/http"

	"github.com/FitArena/activity-score-backend/internal/achievement"
	"github.com/FitArena/activity-score-backend/internal/activity"
	"github.com/FitArena/activity-score-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SubmitActivityResponse 是活动提交接口的响应模型。
// 被拒绝的提交同样返回200，由breakdown中的is_valid区分。
type SubmitActivityResponse struct {
	ActivityID  string                      `json:"activityId"`
	Breakdown   activity.ScoreBreakdown     `json:"breakdown"`
	Unlocks     []achievement.UnlockEvent   `json:"unlocks,omitempty"`
	TotalPoints float64                     `json:"totalPoints"`
}

// SubmitActivity 处理 POST /api/activities 请求。
func SubmitActivity(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	if !user.IsValidUUID(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户标识"})
		return
	}

	var raw activity.RawReport
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	result, err := ProcessSubmission(userID, raw)
	if err != nil {
		var normErr *activity.NormalizationError
		if errors.As(err, &normErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": normErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法处理活动提交"})
		return
	}

	c.JSON(http.StatusOK, SubmitActivityResponse{
		ActivityID:  result.Record.ActivityID,
		Breakdown:   result.Breakdown,
		Unlocks:     result.Unlocks,
		TotalPoints: result.TotalPoints,
	})
}

// GetActivity 处理 GET /api/activities/:id 请求，按活动UUID查询单条记录。
func GetActivity(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	if !user.IsValidUUID(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户标识"})
		return
	}

	rec, err := activity.GetRecordByActivityID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "找不到活动记录"})
		return
	}
	if rec.UserUUID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "无权查看该活动记录"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListMyActivities 处理 GET /api/activities 请求，返回当前用户最近的活动记录。
func ListMyActivities(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	if !user.IsValidUUID(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户标识"})
		return
	}

	recs, err := activity.ListRecentRecords(userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取活动记录"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": recs})
}
