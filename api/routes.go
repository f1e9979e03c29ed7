package api

import (
	"github.com/FitArena/activity-score-backend/internal/achievement"
	"github.com/FitArena/activity-score-backend/internal/leaderboard"
	"github.com/FitArena/activity-score-backend/internal/submission"
	"github.com/FitArena/activity-score-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 活动相关的路由组 /api/activities
		activityRoutes := api.Group("/activities")
		activityRoutes.Use(user.EnsureUserCookieMiddleware(), user.LoadUserMiddleware())
		{
			activityRoutes.POST("", submission.SubmitActivity)
			activityRoutes.GET("", submission.ListMyActivities)
			activityRoutes.GET("/:id", submission.GetActivity)
		}

		// 排行榜相关的路由 /api/leaderboard/:scope
		api.GET("/leaderboard/:scope", user.LoadUserMiddleware(), leaderboard.GetLeaderboardHandler)

		// 成就相关的路由 /api/achievements
		achievementRoutes := api.Group("/achievements")
		achievementRoutes.Use(user.LoadUserMiddleware())
		{
			achievementRoutes.GET("/progress", achievement.GetAchievementProgress)
		}
	}
}
