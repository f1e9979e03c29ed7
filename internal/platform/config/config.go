package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server       ServerConfig        `mapstructure:"server"`
	Database     DatabaseConfig      `mapstructure:"database"`
	Scoring      ScoringConfig       `mapstructure:"scoring"`
	Leaderboard  LeaderboardConfig   `mapstructure:"leaderboard"`
	Achievements []AchievementConfig `mapstructure:"achievements"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了本地数据库文件的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// ScoringConfig 集中了评分流水线的所有可调阈值。
// 引擎内部不允许出现散落的魔法数字，一切从这里来。
type ScoringConfig struct {
	KStrength         float64 `mapstructure:"kStrength"`
	KCardio           float64 `mapstructure:"kCardio"`
	KCore             float64 `mapstructure:"kCore"`
	BodyweightFloorKg float64 `mapstructure:"bodyweightFloorKg"`

	BaselinePaceSecPerKm float64 `mapstructure:"baselinePaceSecPerKm"`
	PaceFactorCeiling    float64 `mapstructure:"paceFactorCeiling"`
	ElevationBonusRate   float64 `mapstructure:"elevationBonusRate"`

	MaxStrengthWeightKg float64 `mapstructure:"maxStrengthWeightKg"`
	MinPaceSecPerKm     float64 `mapstructure:"minPaceSecPerKm"`

	VarietyThreshold int     `mapstructure:"varietyThreshold"`
	VarietyBonus     float64 `mapstructure:"varietyBonus"`
	OverloadRate     float64 `mapstructure:"overloadRate"`
	PRBonus          float64 `mapstructure:"prBonus"`
	EarlyBirdEndHour int     `mapstructure:"earlyBirdEndHour"`
	NightOwlFromHour int     `mapstructure:"nightOwlFromHour"`
	TimeOfDayBonus   float64 `mapstructure:"timeOfDayBonus"`

	StreakTiers     []StreakTierConfig `mapstructure:"streakTiers"`
	ChallengeFactor float64            `mapstructure:"challengeFactor"`
	SeasonalFactor  float64            `mapstructure:"seasonalFactor"`
	MultiplierCap   float64            `mapstructure:"multiplierCap"`

	// SeasonalEventActive 标记全站赛季活动是否进行中
	SeasonalEventActive bool `mapstructure:"seasonalEventActive"`

	Caps             map[string]CategoryCapsConfig `mapstructure:"caps"`
	SoftCapRetention float64                       `mapstructure:"softCapRetention"`
}

// StreakTierConfig 定义了一个连击档位
type StreakTierConfig struct {
	MinDays int     `mapstructure:"minDays"`
	Factor  float64 `mapstructure:"factor"`
}

// CategoryCapsConfig 定义了某个类别的软、硬上限
type CategoryCapsConfig struct {
	Soft float64 `mapstructure:"soft"`
	Hard float64 `mapstructure:"hard"`
}

// LeaderboardConfig 定义了排行榜派生视图的刷新参数
type LeaderboardConfig struct {
	// RefreshIntervalSec 是周期性全量重算的间隔（秒）
	RefreshIntervalSec int `mapstructure:"refreshIntervalSec"`
	// MaxEntries 是单个视图保留的条目数上限
	MaxEntries int `mapstructure:"maxEntries"`
}

// AchievementConfig 是一条声明式的成就定义。
// 条件是封闭的枚举变体，绝不包含可执行表达式。
type AchievementConfig struct {
	ID           string                     `mapstructure:"id"`
	Name         string                     `mapstructure:"name"`
	Description  string                     `mapstructure:"description"`
	RewardPoints float64                    `mapstructure:"rewardPoints"`
	Condition    AchievementConditionConfig `mapstructure:"condition"`
}

// AchievementConditionConfig 描述一个条件变体。
// Type 取值: sum / streak / threshold / ratio，其余字段按类型取用。
type AchievementConditionConfig struct {
	Type string `mapstructure:"type"`

	// sum: Metric累计达到Threshold
	Metric    string  `mapstructure:"metric"`
	Threshold float64 `mapstructure:"threshold"`

	// streak: 连击天数达到Days
	Days int `mapstructure:"days"`

	// threshold: 单次会话指标与Value比较，Op取值 gt/gte/lt/lte/eq
	Op    string  `mapstructure:"op"`
	Value float64 `mapstructure:"value"`

	// ratio: 两个累计指标之比与Value比较
	NumeratorMetric   string `mapstructure:"numeratorMetric"`
	DenominatorMetric string `mapstructure:"denominatorMetric"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径，按顺序查找
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=:8888
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. 评分参数的默认值与产品规则一致，配置文件只需覆盖差异项
	setDefaults(v)

	// 5. 读取并反序列化
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.sqlite.path", "activity.db")
	v.SetDefault("database.redis.address", "localhost:6379")

	v.SetDefault("scoring.kStrength", 0.1)
	v.SetDefault("scoring.kCardio", 10.0)
	v.SetDefault("scoring.kCore", 0.1)
	v.SetDefault("scoring.bodyweightFloorKg", 1.0)
	v.SetDefault("scoring.baselinePaceSecPerKm", 360)
	v.SetDefault("scoring.paceFactorCeiling", 1.5)
	v.SetDefault("scoring.elevationBonusRate", 0.1)
	v.SetDefault("scoring.maxStrengthWeightKg", 500)
	v.SetDefault("scoring.minPaceSecPerKm", 150)
	v.SetDefault("scoring.varietyThreshold", 3)
	v.SetDefault("scoring.varietyBonus", 5)
	v.SetDefault("scoring.overloadRate", 0.10)
	v.SetDefault("scoring.prBonus", 15)
	v.SetDefault("scoring.earlyBirdEndHour", 7)
	v.SetDefault("scoring.nightOwlFromHour", 22)
	v.SetDefault("scoring.timeOfDayBonus", 10)
	v.SetDefault("scoring.challengeFactor", 1.05)
	v.SetDefault("scoring.seasonalFactor", 1.08)
	v.SetDefault("scoring.multiplierCap", 1.25)
	v.SetDefault("scoring.softCapRetention", 0.5)

	v.SetDefault("leaderboard.refreshIntervalSec", 300)
	v.SetDefault("leaderboard.maxEntries", 100)
}
