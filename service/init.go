/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、基准测试编排器和外部依赖的初始化
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 应用启动时执行初始化流程：数据库 -> 迁移 -> 指标来源/事件/锁 -> 编排器 -> 调度器
 * @rules 确保所有依赖服务正常启动后才提供API服务；Redis和Kafka不可用时降级为内存实现
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs ai_docs/interfaces.md
 */

package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"benchhub-service/service/database"
	"benchhub-service/service/distributed_lock"
	"benchhub-service/service/event"
	"benchhub-service/service/metrics_source"
	"benchhub-service/service/orchestrator"
	"benchhub-service/service/rate_limiter"
	"benchhub-service/service/scripting"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                 *gorm.DB
	GlobalOrchestrator *orchestrator.Orchestrator
	GlobalMQTTSource   *metrics_source.MQTTMetricsSource
	GlobalPublisher    event.Publisher
	GlobalRateLimiter  *rate_limiter.RedisRateLimiter
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "things2024")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("内置行业标准初始化失败: %v", err)
	}
	log.Println("内置行业标准初始化完成")

	log.Println("所有数据库迁移任务完成")
}

// initServices 初始化服务
func initServices() {
	// 指标来源：MQTT快照优先，后端接口兜底；未配置MQTT时只用后端接口
	backendProvider := metrics_source.NewBackendProvider()
	GlobalMQTTSource = metrics_source.NewMQTTMetricsSourceFromEnv()
	if GlobalMQTTSource != nil {
		startMQTTSource()
	}
	provider := metrics_source.NewComposedProvider(GlobalMQTTSource, backendProvider)

	// 事件发布和分布式锁，依赖不可用时降级为内存实现
	GlobalPublisher = event.NewPublisherFromEnv()
	lock := distributed_lock.NewFromEnv()
	forecaster := scripting.NewForecasterFromEnv()

	var err error
	GlobalOrchestrator, err = orchestrator.NewOrchestrator(DB, provider, GlobalPublisher, lock, forecaster)
	if err != nil {
		log.Fatalf("基准测试编排器初始化失败: %v", err)
	}

	// 限流器为可选组件，未配置Redis时不启用
	if os.Getenv("REDIS_HOST") != "" {
		GlobalRateLimiter, err = rate_limiter.NewRedisRateLimiter()
		if err != nil {
			log.Printf("限流器初始化失败，接口不限流: %v", err)
			GlobalRateLimiter = nil
		}
	}

	// 启动调度器：定时自动基准测试和过期快照清理
	scheduler := GlobalOrchestrator.Scheduler()
	scheduler.SetProjectLister(backendProvider)
	if GlobalMQTTSource != nil {
		scheduler.SetSnapshotPruner(GlobalMQTTSource)
	}
	if err := scheduler.Start(); err != nil {
		log.Printf("启动调度器失败: %v", err)
	}

	log.Println("服务初始化完成")
}

// startMQTTSource 启动MQTT指标来源
func startMQTTSource() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := GlobalMQTTSource.Start(ctx); err != nil {
		log.Printf("MQTT指标来源启动失败，仅使用后端接口采集: %v", err)
	}
}
