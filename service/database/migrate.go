/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构，并写入默认行业标准阈值
 * @architecture 数据访问层 - 迁移管理
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致；默认标准只在标准表为空时写入
 * @dependencies benchhub-service/service/models, gorm.io/gorm
 * @refs service/models/benchmark.go, service/benchmark/metric_registry.go
 */

package database

import (
	"benchhub-service/service/benchmark"
	"benchhub-service/service/models"
	"log"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	err := db.AutoMigrate(
		&models.Benchmark{},
		&models.Recommendation{},
		&models.BenchmarkStandard{},
		&models.AnalyticsEntry{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// InitializeData 初始化基础数据
// 标准表为空时写入通用行业标准阈值种子数据，已有数据不覆盖
func InitializeData(db *gorm.DB) error {
	log.Println("开始初始化基础数据...")

	var count int64
	if err := db.Model(&models.BenchmarkStandard{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("标准表已有 %d 条记录，跳过种子数据写入", count)
		return nil
	}

	standards := benchmark.DefaultStandards()
	if err := db.Create(&standards).Error; err != nil {
		return err
	}

	log.Printf("已写入 %d 条默认行业标准阈值", len(standards))
	return nil
}
