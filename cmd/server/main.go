package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/FitArena/activity-score-backend/api"
	"github.com/FitArena/activity-score-backend/internal/achievement"
	"github.com/FitArena/activity-score-backend/internal/activity"
	"github.com/FitArena/activity-score-backend/internal/leaderboard"
	"github.com/FitArena/activity-score-backend/internal/platform/config"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"github.com/FitArena/activity-score-backend/internal/platform/health"
	"github.com/FitArena/activity-score-backend/internal/platform/shutdown"
	"github.com/FitArena/activity-score-backend/internal/platform/startup"
	"github.com/FitArena/activity-score-backend/internal/submission"
	"github.com/FitArena/activity-score-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 加载配置并配置各模块
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("配置加载失败，无法启动: %v", err))
	}
	activity.ConfigureModule(cfg.Scoring)
	if err := achievement.ConfigureModule(cfg.Achievements); err != nil {
		panic(fmt.Sprintf("成就定义加载失败，无法启动: %v", err))
	}

	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 2. 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 3. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 4. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 5. 异步启动后台的持续健康检查器
	go health.StartRedisHealthCheck()

	// 6. 创建两阶段停机的生命周期管理器并启动后台服务
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	processorGraceful, err := gracefulManager.NewServiceHandle("record-processor")
	if err != nil {
		panic(err)
	}
	processorForceful, err := forcefulManager.NewServiceHandle("record-processor")
	if err != nil {
		panic(err)
	}
	if err := submission.StartRecordProcessor(processorGraceful, processorForceful); err != nil {
		panic(fmt.Sprintf("无法启动活动记录处理器: %v", err))
	}

	refresherHandle, err := gracefulManager.NewServiceHandle("leaderboard-refresher")
	if err != nil {
		panic(err)
	}
	leaderboard.StartRefresher(refresherHandle,
		time.Duration(cfg.Leaderboard.RefreshIntervalSec)*time.Second,
		cfg.Leaderboard.MaxEntries)

	// 7. 组装Gin服务器
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 8. 阻塞等待停机信号，编排两阶段优雅停机
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
