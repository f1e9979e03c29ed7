package activity

import (
	"fmt"

	"github.com/FitArena/activity-score-backend/internal/platform/config"
	"github.com/FitArena/activity-score-backend/internal/platform/database"
)

// globalEngine 是配置完成后的全局评分引擎实例
var globalEngine *Engine

// ConfigureModule 用加载好的配置构建全局评分引擎
func ConfigureModule(cfg config.ScoringConfig) {
	globalEngine = NewEngine(engineConfigFrom(cfg))
	fmt.Println("评分引擎 (Scoring Engine) 配置完成。")
}

// DefaultEngine 返回全局引擎；必须在ConfigureModule之后调用
func DefaultEngine() *Engine {
	return globalEngine
}

// PrimeDB 负责初始化activity模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&ActivityRecord{}); err != nil {
		return fmt.Errorf("无法迁移activity表: %w", err)
	}
	fmt.Println("Activity数据库表迁移成功。")
	return nil
}

// engineConfigFrom 把配置文件结构转换为引擎内部参数
func engineConfigFrom(cfg config.ScoringConfig) Config {
	out := Config{
		KStrength:            cfg.KStrength,
		KCardio:              cfg.KCardio,
		KCore:                cfg.KCore,
		BodyweightFloorKg:    cfg.BodyweightFloorKg,
		BaselinePaceSecPerKm: cfg.BaselinePaceSecPerKm,
		PaceFactorCeiling:    cfg.PaceFactorCeiling,
		ElevationBonusRate:   cfg.ElevationBonusRate,
		MaxStrengthWeightKg:  cfg.MaxStrengthWeightKg,
		MinPaceSecPerKm:      cfg.MinPaceSecPerKm,
		VarietyThreshold:     cfg.VarietyThreshold,
		VarietyBonus:         cfg.VarietyBonus,
		OverloadRate:         cfg.OverloadRate,
		PRBonus:              cfg.PRBonus,
		EarlyBirdEndHour:     cfg.EarlyBirdEndHour,
		NightOwlFromHour:     cfg.NightOwlFromHour,
		TimeOfDayBonus:       cfg.TimeOfDayBonus,
		ChallengeFactor:      cfg.ChallengeFactor,
		SeasonalFactor:       cfg.SeasonalFactor,
		MultiplierCap:        cfg.MultiplierCap,
		SoftCapRetention:     cfg.SoftCapRetention,
		Caps:                 make(map[Category]CategoryCaps, len(cfg.Caps)),
	}
	for _, tier := range cfg.StreakTiers {
		out.StreakTiers = append(out.StreakTiers, StreakTier{MinDays: tier.MinDays, Factor: tier.Factor})
	}
	for name, caps := range cfg.Caps {
		out.Caps[Category(name)] = CategoryCaps{Soft: caps.Soft, Hard: caps.Hard}
	}

	// 列表类参数无法通过viper默认值表达，缺省时回退到内置默认
	defaults := DefaultConfig()
	if len(out.StreakTiers) == 0 {
		out.StreakTiers = defaults.StreakTiers
	}
	if len(out.Caps) == 0 {
		out.Caps = defaults.Caps
	}
	return out
}
