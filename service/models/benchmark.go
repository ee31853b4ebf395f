/*
 * @module service/models/benchmark
 * @description 基准测试相关模型定义，包括基准测试记录、改进建议、行业标准阈值等
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 基准测试创建 -> 评分计算 -> 持久化 -> 只读查询
 * @rules 基准测试记录一经创建不可变更，只允许追加
 * @dependencies gorm.io/gorm, github.com/google/uuid, github.com/lib/pq
 * @refs service/benchmark/, service/orchestrator/
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// 基准测试类型常量
const (
	BenchmarkTypePerformance   = "performance"
	BenchmarkTypeQuality       = "quality"
	BenchmarkTypeSecurity      = "security"
	BenchmarkTypeCompliance    = "compliance"
	BenchmarkTypeComprehensive = "comprehensive"
)

// BenchmarkCategories 全量基准测试分类（comprehensive 覆盖的四个分类）
var BenchmarkCategories = []string{
	BenchmarkTypePerformance,
	BenchmarkTypeQuality,
	BenchmarkTypeSecurity,
	BenchmarkTypeCompliance,
}

// IsValidBenchmarkType 校验基准测试类型是否合法
func IsValidBenchmarkType(benchmarkType string) bool {
	switch benchmarkType {
	case BenchmarkTypePerformance, BenchmarkTypeQuality, BenchmarkTypeSecurity,
		BenchmarkTypeCompliance, BenchmarkTypeComprehensive:
		return true
	}
	return false
}

// Benchmark 基准测试记录模型
// 一次基准测试的不可变快照，按 (project_id, benchmark_type, timestamp) 追加存储
type Benchmark struct {
	ID             string         `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID      string         `gorm:"not null;index:idx_benchmark_project_type" json:"project_id"`
	BenchmarkType  string         `gorm:"not null;index:idx_benchmark_project_type" json:"benchmark_type"`
	Timestamp      time.Time      `gorm:"not null;index" json:"timestamp"`
	Metrics        MetricBag      `gorm:"type:jsonb" json:"metrics"`
	CategoryScores ScoreMap       `gorm:"type:jsonb" json:"category_scores"`
	MetricScores   NestedScoreMap `gorm:"type:jsonb" json:"metric_scores"`
	OverallScore   float64        `gorm:"not null" json:"overall_score"`
	// BlendedScore 对外可见评分：70% 引擎评分 + 30% 行业对比评分，排名和榜单以此为准
	BlendedScore float64           `gorm:"not null;index" json:"blended_score"`
	Grade        string            `gorm:"not null;size:4" json:"grade"`
	Analysis     BenchmarkAnalysis `gorm:"type:jsonb;serializer:json" json:"analysis"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy    string            `gorm:"not null;default:'system';size:100" json:"created_by"`
}

// BenchmarkAnalysis 基准测试分析结果（SWOT 分类）
type BenchmarkAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// BeforeCreate 创建前钩子
func (b *Benchmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedBy == "" {
		b.CreatedBy = "system"
	}
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now()
	}
	return nil
}

// Recommendation 改进建议模型
// 每次基准测试重新生成，关联到来源基准测试记录
type Recommendation struct {
	ID           string         `gorm:"type:uuid;primary_key" json:"id"`
	BenchmarkID  string         `gorm:"not null;index" json:"benchmark_id"`
	ProjectID    string         `gorm:"not null;index" json:"project_id"`
	Category     string         `gorm:"not null" json:"category"`
	Metric       string         `json:"metric,omitempty"`
	Type         string         `gorm:"not null" json:"type"` // critical_improvement/improvement/optimization/metric_improvement/systemic/security_compliance/trend_reversal
	Priority     string         `gorm:"not null" json:"priority"` // critical/high/medium/low/info
	Impact       string         `gorm:"not null" json:"impact"`   // high/medium/low
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `json:"description"`
	CurrentValue float64        `json:"current_value"`
	TargetValue  float64        `json:"target_value"`
	Effort       string         `gorm:"not null" json:"effort"`   // low/medium/high/very_high
	Timeline     string         `gorm:"not null" json:"timeline"` // 1-2 weeks / 1-2 months / 3-6 months / 6+ months
	Actions      pq.StringArray `gorm:"type:text[]" json:"actions"`
	Dependencies pq.StringArray `gorm:"type:text[]" json:"dependencies"`
	Resources    pq.StringArray `gorm:"type:text[]" json:"resources"`
	Risks        pq.StringArray `gorm:"type:text[]" json:"risks"`
	Benefits     pq.StringArray `gorm:"type:text[]" json:"benefits"`
	CreatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	// SortIndex 生成顺序，稳定排序后的最终位置
	SortIndex int `gorm:"not null;default:0" json:"sort_index"`
}

// BeforeCreate 创建前钩子
func (r *Recommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// BenchmarkStandard 行业标准阈值模型
// industry 为空表示通用阈值，非空表示行业覆盖阈值
type BenchmarkStandard struct {
	ID            string    `gorm:"type:uuid;primary_key" json:"id"`
	Industry      string    `gorm:"size:100;index:idx_standard_key,unique;default:''" json:"industry"`
	Category      string    `gorm:"not null;index:idx_standard_key,unique" json:"category"`
	Metric        string    `gorm:"not null;index:idx_standard_key,unique" json:"metric"`
	Excellent     float64   `gorm:"not null" json:"excellent"`
	Good          float64   `gorm:"not null" json:"good"`
	Average       float64   `gorm:"not null" json:"average"`
	Poor          float64   `gorm:"not null" json:"poor"`
	LowerIsBetter bool      `gorm:"not null;default:false" json:"lower_is_better"`
	Unit          string    `gorm:"size:32" json:"unit"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy     string    `gorm:"not null;default:'system';size:100" json:"updated_by"`
}

// BeforeCreate 创建前钩子
func (s *BenchmarkStandard) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.UpdatedBy == "" {
		s.UpdatedBy = "system"
	}
	return nil
}

// AnalyticsEntry 派生分析快照模型
// 由每次基准测试运行产生的派生统计，7 天后由清理任务删除；原始 Benchmark 记录永久保留
type AnalyticsEntry struct {
	ID            string    `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID     string    `gorm:"not null;index" json:"project_id"`
	BenchmarkID   string    `gorm:"not null" json:"benchmark_id"`
	BenchmarkType string    `gorm:"not null" json:"benchmark_type"`
	Score         float64   `gorm:"not null" json:"score"`
	Grade         string    `gorm:"not null;size:4" json:"grade"`
	Summary       JSONB     `gorm:"type:jsonb" json:"summary"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expires_at"`
}

// BeforeCreate 创建前钩子
func (a *AnalyticsEntry) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.ExpiresAt.IsZero() {
		a.ExpiresAt = time.Now().Add(7 * 24 * time.Hour)
	}
	return nil
}
