package activity

// StreakTier 描述一个连击档位：连续天数达到MinDays时适用Factor
type StreakTier struct {
	MinDays int
	Factor  float64
}

// CategoryCaps 描述某个类别的软、硬上限
type CategoryCaps struct {
	Soft float64
	Hard float64
}

// Config 集中了评分流水线的全部可调参数。
// 所有阈值都来自配置文件，引擎内部不散布魔法数字。
type Config struct {
	// --- 基础分系数 ---
	KStrength float64
	KCardio   float64
	KCore     float64

	// BodyweightFloorKg 是徒手动作的重量下限，保证徒手次数也能得分
	BodyweightFloorKg float64

	// BaselinePaceSecPerKm 是有氧基准配速；快于基准才有配速奖励
	BaselinePaceSecPerKm float64
	// PaceFactorCeiling 是配速系数的上限，防止极端配速主导得分
	PaceFactorCeiling float64
	// ElevationBonusRate 是每100米爬升带来的基础分增幅
	ElevationBonusRate float64

	// --- 合理性检查阈值 ---
	MaxStrengthWeightKg float64
	MinPaceSecPerKm     float64

	// --- 加法奖励 ---
	VarietyThreshold int
	VarietyBonus     float64
	OverloadRate     float64
	PRBonus          float64
	EarlyBirdEndHour int
	NightOwlFromHour int
	TimeOfDayBonus   float64

	// --- 乘法系数 ---
	// StreakTiers 必须按MinDays升序排列
	StreakTiers     []StreakTier
	ChallengeFactor float64
	SeasonalFactor  float64
	MultiplierCap   float64

	// --- 封顶 ---
	Caps map[Category]CategoryCaps
	// SoftCapRetention 是超过软上限部分的保留比例
	SoftCapRetention float64
}

// DefaultConfig 返回与config.yaml示例一致的默认参数
func DefaultConfig() Config {
	return Config{
		KStrength:            0.1,
		KCardio:              10.0,
		KCore:                0.1,
		BodyweightFloorKg:    1.0,
		BaselinePaceSecPerKm: 360,
		PaceFactorCeiling:    1.5,
		ElevationBonusRate:   0.1,
		MaxStrengthWeightKg:  500,
		MinPaceSecPerKm:      150,
		VarietyThreshold:     3,
		VarietyBonus:         5,
		OverloadRate:         0.10,
		PRBonus:              15,
		EarlyBirdEndHour:     7,
		NightOwlFromHour:     22,
		TimeOfDayBonus:       10,
		StreakTiers: []StreakTier{
			{MinDays: 0, Factor: 1.00},
			{MinDays: 3, Factor: 1.02},
			{MinDays: 7, Factor: 1.05},
			{MinDays: 14, Factor: 1.10},
		},
		ChallengeFactor: 1.05,
		SeasonalFactor:  1.08,
		MultiplierCap:   1.25,
		Caps: map[Category]CategoryCaps{
			CategoryStrength: {Soft: 250, Hard: 350},
			CategoryCardio:   {Soft: 250, Hard: 350},
			CategoryCore:     {Soft: 250, Hard: 350},
		},
		SoftCapRetention: 0.5,
	}
}

// streakFactor 返回给定连续天数所适用的连击系数
func (c *Config) streakFactor(streakDays int) float64 {
	factor := 1.0
	for _, tier := range c.StreakTiers {
		if streakDays >= tier.MinDays {
			factor = tier.Factor
		}
	}
	return factor
}

// capsFor 返回某类别的软硬上限，未配置的类别退化为不封顶
func (c *Config) capsFor(category Category) (CategoryCaps, bool) {
	caps, ok := c.Caps[category]
	return caps, ok
}
