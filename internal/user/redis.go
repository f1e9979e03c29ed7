package user

// --- 用户模块的Redis键 ---
const (
	// KnownUsersKey 是已激活用户UUID组成的Set。
	// 提交活动前的激活检查只查这个集合，不落到SQLite；
	// 集合本身可随时从users表全量重建（见WarmupCache）。
	// Key: users:known
	// Member: 用户UUID (UUID v7)
	KnownUsersKey = "users:known"
)
