package metadata

// --- SQLite Keys ---
// 这些键用于metadata表的key列。
const (
	// LastSnapshotActivityIDKey 存储最近一次干净停机时，
	// 排行榜应用器已经消化的最后一条活动记录ID。
	LastSnapshotActivityIDKey = "last_snapshot_activity_id"
)

// --- Redis Keys ---
// 这些键用于在Redis中存储运行时元数据。
const (
	// RedisLastAppliedActivityIDKey 是一个Redis String，
	// 存储排行榜应用器最新消化的活动记录ID，是实时检查点。
	RedisLastAppliedActivityIDKey = "meta:last_applied_activity_id"
)
