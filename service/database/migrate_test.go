/*
 * @module service/database/migrate_test
 * @description 数据库迁移模块单元测试
 * @architecture 测试层
 * @documentReference ai_docs/test_plan.md
 */

package database

import (
	"testing"

	"benchhub-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMigrateTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := newMigrateTestDB(t)

	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"benchmarks", "recommendations", "benchmark_standards", "analytics_entries"} {
		assert.True(t, db.Migrator().HasTable(table), "缺少表 %s", table)
	}
}

func TestInitializeData_SeedsOnce(t *testing.T) {
	db := newMigrateTestDB(t)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, InitializeData(db))

	var count int64
	db.Model(&models.BenchmarkStandard{}).Count(&count)
	assert.Greater(t, count, int64(0))

	// 再次执行不重复写入
	require.NoError(t, InitializeData(db))

	var after int64
	db.Model(&models.BenchmarkStandard{}).Count(&after)
	assert.Equal(t, count, after)
}
