package achievement

import (
	"testing"
	"time"

	"github.com/FitArena/activity-score-backend/internal/testutil"
)

func TestMarkUnlockedSetOnce(t *testing.T) {
	db := testutil.OpenTestDB(t, &Progress{})

	uid := "user-ach-1"
	first := time.Date(2026, 8, 29, 8, 0, 0, 0, time.Local)
	later := first.Add(48 * time.Hour)

	if err := MarkUnlocked(db, uid, "first_activity", first); err != nil {
		t.Fatalf("MarkUnlocked returned error: %v", err)
	}
	// 崩溃后重放同一条记录会再次评估成就，解锁时间不允许移动
	if err := MarkUnlocked(db, uid, "first_activity", later); err != nil {
		t.Fatalf("second MarkUnlocked returned error: %v", err)
	}

	var row Progress
	if err := db.Where("user_uuid = ? AND achievement_id = ?", uid, "first_activity").
		First(&row).Error; err != nil {
		t.Fatalf("无法读取进度行: %v", err)
	}
	if row.UnlockedAt == nil {
		t.Fatalf("UnlockedAt is nil after MarkUnlocked")
	}
	if !row.UnlockedAt.Equal(first) {
		t.Errorf("UnlockedAt = %v; want %v (first unlock)", row.UnlockedAt, first)
	}

	unlocked, err := UnlockedSet(uid)
	if err != nil {
		t.Fatalf("UnlockedSet returned error: %v", err)
	}
	if !unlocked["first_activity"] {
		t.Errorf("UnlockedSet missing first_activity: %v", unlocked)
	}
}

func TestSaveProgressKeepsUnlockTimestamp(t *testing.T) {
	db := testutil.OpenTestDB(t, &Progress{})

	uid := "user-ach-2"
	at := time.Date(2026, 8, 29, 8, 0, 0, 0, time.Local)

	if err := SaveProgress(db, uid, "century_club", 40); err != nil {
		t.Fatalf("SaveProgress returned error: %v", err)
	}
	if err := MarkUnlocked(db, uid, "century_club", at); err != nil {
		t.Fatalf("MarkUnlocked returned error: %v", err)
	}
	// 解锁后进度展示值继续更新，但解锁时间保持不变
	if err := SaveProgress(db, uid, "century_club", 150); err != nil {
		t.Fatalf("second SaveProgress returned error: %v", err)
	}

	var row Progress
	if err := db.Where("user_uuid = ? AND achievement_id = ?", uid, "century_club").
		First(&row).Error; err != nil {
		t.Fatalf("无法读取进度行: %v", err)
	}
	if row.Current != 150 {
		t.Errorf("Current = %v; want 150", row.Current)
	}
	if row.UnlockedAt == nil || !row.UnlockedAt.Equal(at) {
		t.Errorf("UnlockedAt = %v; want %v", row.UnlockedAt, at)
	}

	var count int64
	if err := db.Model(&Progress{}).Where("user_uuid = ?", uid).Count(&count).Error; err != nil {
		t.Fatalf("无法统计进度行: %v", err)
	}
	if count != 1 {
		t.Errorf("progress rows = %d; want 1 (upsert, not insert)", count)
	}
}
