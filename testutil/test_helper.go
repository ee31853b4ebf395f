/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/test_plan.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"benchhub-service/service/models"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Benchmark{},
		&models.Recommendation{},
		&models.BenchmarkStandard{},
		&models.AnalyticsEntry{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"benchmarks",
		"recommendations",
		"benchmark_standards",
		"analytics_entries",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// BenchmarkOption 基准测试记录选项函数类型
type BenchmarkOption func(*models.Benchmark)

// CreateBenchmark 创建测试基准测试记录
func (f *TestDataFactory) CreateBenchmark(projectID string, opts ...BenchmarkOption) *models.Benchmark {
	benchmark := &models.Benchmark{
		ID:            generateID("bm"),
		ProjectID:     projectID,
		BenchmarkType: models.BenchmarkTypeComprehensive,
		Timestamp:     time.Now(),
		Metrics: models.MetricBag{
			"performance": {"response_time": 150, "throughput": 800},
			"quality":     {"test_coverage": 85, "code_duplication": 4},
		},
		CategoryScores: models.ScoreMap{
			"performance": 0.8,
			"quality":     0.8,
		},
		MetricScores: models.NestedScoreMap{
			"performance": {"response_time": 0.8, "throughput": 0.8},
			"quality":     {"test_coverage": 0.8, "code_duplication": 0.8},
		},
		OverallScore: 0.8,
		BlendedScore: 0.8,
		Grade:        "A",
		Analysis: models.BenchmarkAnalysis{
			Strengths:     []string{},
			Weaknesses:    []string{},
			Opportunities: []string{},
			Threats:       []string{},
		},
		CreatedAt: time.Now(),
		CreatedBy: "test",
	}

	// 应用选项
	for _, opt := range opts {
		opt(benchmark)
	}

	err := f.DB.Create(benchmark).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test benchmark: %v", err))
	}

	return benchmark
}

// WithBenchmarkType 设置基准测试类型
func WithBenchmarkType(benchmarkType string) BenchmarkOption {
	return func(b *models.Benchmark) {
		b.BenchmarkType = benchmarkType
	}
}

// WithScores 设置整体评分和混合评分
func WithScores(overall, blended float64) BenchmarkOption {
	return func(b *models.Benchmark) {
		b.OverallScore = overall
		b.BlendedScore = blended
	}
}

// WithGrade 设置等级
func WithGrade(grade string) BenchmarkOption {
	return func(b *models.Benchmark) {
		b.Grade = grade
	}
}

// WithTimestamp 设置基准测试时间
func WithTimestamp(ts time.Time) BenchmarkOption {
	return func(b *models.Benchmark) {
		b.Timestamp = ts
		b.CreatedAt = ts
	}
}

// RecommendationOption 改进建议选项函数类型
type RecommendationOption func(*models.Recommendation)

// CreateRecommendation 创建测试改进建议
func (f *TestDataFactory) CreateRecommendation(benchmarkID, projectID string, opts ...RecommendationOption) *models.Recommendation {
	rec := &models.Recommendation{
		ID:           generateID("rec"),
		BenchmarkID:  benchmarkID,
		ProjectID:    projectID,
		Category:     "performance",
		Type:         "improvement",
		Priority:     "high",
		Impact:       "medium",
		Title:        "改进 performance 表现",
		Description:  "这是一条测试改进建议",
		CurrentValue: 0.6,
		TargetValue:  0.8,
		Effort:       "medium",
		Timeline:     "1-2 months",
		Actions:      []string{"分析当前瓶颈", "制定改进方案"},
		Dependencies: []string{},
		Resources:    []string{},
		Risks:        []string{},
		Benefits:     []string{"提升整体评分"},
		CreatedAt:    time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(rec)
	}

	err := f.DB.Create(rec).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test recommendation: %v", err))
	}

	return rec
}

// WithRecCategory 设置建议分类
func WithRecCategory(category string) RecommendationOption {
	return func(r *models.Recommendation) {
		r.Category = category
	}
}

// WithRecPriority 设置建议优先级
func WithRecPriority(priority string) RecommendationOption {
	return func(r *models.Recommendation) {
		r.Priority = priority
	}
}

// StandardOption 行业标准选项函数类型
type StandardOption func(*models.BenchmarkStandard)

// CreateStandard 创建测试行业标准
func (f *TestDataFactory) CreateStandard(category, metric string, opts ...StandardOption) *models.BenchmarkStandard {
	standard := &models.BenchmarkStandard{
		ID:            generateID("std"),
		Industry:      "",
		Category:      category,
		Metric:        metric,
		Excellent:     100,
		Good:          200,
		Average:       500,
		Poor:          1000,
		LowerIsBetter: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
		UpdatedBy:     "test",
	}

	// 应用选项
	for _, opt := range opts {
		opt(standard)
	}

	err := f.DB.Create(standard).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test standard: %v", err))
	}

	return standard
}

// AnalyticsEntryOption 分析快照选项函数类型
type AnalyticsEntryOption func(*models.AnalyticsEntry)

// CreateAnalyticsEntry 创建测试分析快照
func (f *TestDataFactory) CreateAnalyticsEntry(projectID, benchmarkID string, opts ...AnalyticsEntryOption) *models.AnalyticsEntry {
	entry := &models.AnalyticsEntry{
		ID:            generateID("ae"),
		ProjectID:     projectID,
		BenchmarkID:   benchmarkID,
		BenchmarkType: models.BenchmarkTypeComprehensive,
		Score:         0.8,
		Grade:         "A",
		Summary:       models.JSONB{"categories": 2},
		CreatedAt:     time.Now(),
		ExpiresAt:     time.Now().Add(7 * 24 * time.Hour),
	}

	// 应用选项
	for _, opt := range opts {
		opt(entry)
	}

	err := f.DB.Create(entry).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test analytics entry: %v", err))
	}

	return entry
}

// WithExpiresAt 设置快照过期时间
func WithExpiresAt(expiresAt time.Time) AnalyticsEntryOption {
	return func(a *models.AnalyticsEntry) {
		a.ExpiresAt = expiresAt
	}
}

// 辅助函数
func generateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), generateSuffix())
}

func generateSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
}

// TestConfig 测试配置
type TestConfig struct {
	Database struct {
		Driver string
		DSN    string
	}
	Timeout time.Duration
	Cleanup bool
}

// DefaultTestConfig 默认测试配置
func DefaultTestConfig() *TestConfig {
	return &TestConfig{
		Database: struct {
			Driver string
			DSN    string
		}{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		Timeout: 30 * time.Second,
		Cleanup: true,
	}
}

// TestTransaction 测试事务辅助工具
type TestTransaction struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewTestTransaction 创建测试事务
func NewTestTransaction(db *gorm.DB) *TestTransaction {
	tx := db.Begin()
	return &TestTransaction{
		db: db,
		tx: tx,
	}
}

// DB 获取事务数据库
func (tt *TestTransaction) DB() *gorm.DB {
	return tt.tx
}

// Commit 提交事务
func (tt *TestTransaction) Commit() {
	tt.tx.Commit()
}

// Rollback 回滚事务
func (tt *TestTransaction) Rollback() {
	tt.tx.Rollback()
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
