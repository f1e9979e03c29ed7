package user

import (
	"time"

	"gorm.io/gorm"
)

// User 定义了用户在SQLite中的持久化模型。
// 它承载评分上下文里所有无法从活动记录便宜地重算的滚动状态。
type User struct {
	// UUID 是用户的主键，来自客户端Cookie。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// TotalPoints 是累计总分（含成就奖励分），排行榜的事实来源。
	TotalPoints float64

	// LastScoredAt 是总分最近一次变化的时刻，用于排行榜同分决胜。
	LastScoredAt time.Time

	// StreakDays / LastActiveDay 是连击状态。
	StreakDays    int
	LastActiveDay string `gorm:"type:varchar(10)"`

	// ActivityCount 是已接受的活动总数。
	ActivityCount int

	// LifetimeTotals 是成就条件消费的生涯累计指标。
	LifetimeTotals map[string]float64 `gorm:"serializer:json"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// 个人纪录的种类
const (
	BestKindOneRM = "one_rm"
	BestKindPace  = "pace"
)

// PersonalBest 按 (用户, 种类, 键) 存储一条个人最佳。
// one_rm的键是动作ID，pace的键是距离档位。
type PersonalBest struct {
	gorm.Model

	UserUUID string `gorm:"uniqueIndex:idx_user_best;type:varchar(36)"`
	Kind     string `gorm:"uniqueIndex:idx_user_best;type:varchar(16)"`
	Key      string `gorm:"uniqueIndex:idx_user_best;type:varchar(64)"`

	// Value 对one_rm是公斤数（越大越好），对pace是秒/公里（越小越好）
	Value float64
}

// ChallengeMembership 记录用户加入的挑战；每个活跃挑战
// 在评分时贡献一个乘法系数。
type ChallengeMembership struct {
	gorm.Model

	UserUUID    string `gorm:"uniqueIndex:idx_user_challenge;type:varchar(36)"`
	ChallengeID string `gorm:"uniqueIndex:idx_user_challenge;type:varchar(64)"`
	Active      bool   `gorm:"index"`
}

// Friendship 是好友关系的单向边，好友榜由它过滤。
type Friendship struct {
	gorm.Model

	UserUUID   string `gorm:"uniqueIndex:idx_user_friend;type:varchar(36)"`
	FriendUUID string `gorm:"uniqueIndex:idx_user_friend;type:varchar(36)"`
}
