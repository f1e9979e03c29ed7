package achievement

import (
	"fmt"

	"github.com/FitArena/activity-score-backend/internal/platform/config"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
)

// ConfigureModule 从配置文件装载成就定义。
// 定义无效时返回错误，启动流程应当就此中止。
func ConfigureModule(defs []config.AchievementConfig) error {
	loaded := make([]Definition, 0, len(defs))
	for _, d := range defs {
		loaded = append(loaded, Definition{
			ID:           d.ID,
			Name:         d.Name,
			Description:  d.Description,
			RewardPoints: d.RewardPoints,
			Condition: Condition{
				Type:              d.Condition.Type,
				Metric:            d.Condition.Metric,
				Threshold:         d.Condition.Threshold,
				Days:              d.Condition.Days,
				Op:                d.Condition.Op,
				Value:             d.Condition.Value,
				NumeratorMetric:   d.Condition.NumeratorMetric,
				DenominatorMetric: d.Condition.DenominatorMetric,
			},
		})
	}
	if err := loadRegistry(loaded); err != nil {
		return err
	}
	fmt.Printf("成功装载 %d 条成就定义。\n", len(loaded))
	return nil
}

// PrimeDB 负责自动迁移数据库表结构
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Progress{}); err != nil {
		return fmt.Errorf("无法迁移achievement表: %w", err)
	}
	fmt.Println("Achievement数据库表迁移成功。")
	return nil
}
