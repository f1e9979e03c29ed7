package testutil

import (
	"path/filepath"
	"testing"

	"github.com/FitArena/activity-score-backend/internal/platform/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB 在测试的临时目录里打开一个干净的SQLite库，
// 迁移给定模型，并在测试期间接管全局数据库连接。
// 测试结束后临时目录和全局连接都会被还原。
func OpenTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("无法迁移测试表: %v", err)
		}
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}
