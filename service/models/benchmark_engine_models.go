/*
 * @module service/models/benchmark_engine_models
 * @description 基准测试引擎派生类型定义，包括标准对比结果、趋势分析结果、改进计划和API请求响应结构
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 派生类型不单独持久化，随基准测试响应返回或按需重算
 * @rules 对比结果和改进计划均由最新基准测试确定性推导
 * @dependencies time
 * @refs service/benchmark/, api/controllers/
 */

package models

import "time"

// MetricComparison 单指标与行业标准的对比结果
type MetricComparison struct {
	Metric   string             `json:"metric"`
	Value    float64            `json:"value"`
	Score    float64            `json:"score"`
	Level    string             `json:"level"` // excellent/good/average/poor/unknown
	Standard *BenchmarkStandard `json:"standard,omitempty"`
}

// CategoryComparison 单分类与行业标准的对比结果
type CategoryComparison struct {
	Category      string             `json:"category"`
	Score         float64            `json:"score"`
	Level         string             `json:"level"`
	Metrics       []MetricComparison `json:"metrics"`
	Strengths     []string           `json:"strengths"`
	Weaknesses    []string           `json:"weaknesses"`
	Opportunities []string           `json:"opportunities"`
}

// ComparisonResult 基准测试与行业标准的整体对比结果
type ComparisonResult struct {
	Categories   map[string]*CategoryComparison `json:"categories"`
	OverallScore float64                        `json:"overall_score"`
	Grade        string                         `json:"grade"`
	Industry     string                         `json:"industry,omitempty"`
}

// TrendResult 趋势分析结果
// 历史数据不足两个点时返回 insufficient_data 哨兵值，不是错误
type TrendResult struct {
	Trend       string  `json:"trend"` // improving/declining/stable/insufficient_data
	Direction   string  `json:"direction"`
	Rate        float64 `json:"rate"`
	Confidence  float64 `json:"confidence"`
	Improvement float64 `json:"improvement"`
	DataPoints  int     `json:"data_points"`
}

// ForecastHorizon 单个预测期的结果
type ForecastHorizon struct {
	PredictedScore float64  `json:"predicted_score"`
	Confidence     float64  `json:"confidence"`
	Factors        []string `json:"factors"`
}

// Forecast 未来表现预测，固定三个预测期
type Forecast struct {
	NextMonth   ForecastHorizon `json:"next_month"`
	NextQuarter ForecastHorizon `json:"next_quarter"`
	NextYear    ForecastHorizon `json:"next_year"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// PlanPhase 改进计划阶段
type PlanPhase struct {
	Name            string           `json:"name"`
	DurationWeeks   int              `json:"duration_weeks"`
	Recommendations []Recommendation `json:"recommendations"`
}

// PlanMilestone 改进计划里程碑，与阶段边界对应
type PlanMilestone struct {
	Name       string    `json:"name"`
	TargetDate time.Time `json:"target_date"`
}

// ResourceEstimate 按分类汇总的人力估算
type ResourceEstimate struct {
	Category string `json:"category"`
	Hours    int    `json:"hours"`
}

// ImprovementPlan 改进计划
type ImprovementPlan struct {
	ProjectID   string             `json:"project_id"`
	Timeline    string             `json:"timeline"`
	TargetScore float64            `json:"target_score"`
	Phases      []PlanPhase        `json:"phases"`
	Milestones  []PlanMilestone    `json:"milestones"`
	Resources   []ResourceEstimate `json:"resources"`
	TotalHours  int                `json:"total_hours"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// BenchmarkRunResult 一次基准测试运行的完整结果
type BenchmarkRunResult struct {
	Benchmark       *Benchmark        `json:"benchmark"`
	Comparison      *ComparisonResult `json:"comparison"`
	Trend           *TrendResult      `json:"trend"`
	Forecast        *Forecast         `json:"forecast"`
	Recommendations []Recommendation  `json:"recommendations"`
}

// ProjectRanking 项目对比排名条目
type ProjectRanking struct {
	Target     string  `json:"target"`
	Score      float64 `json:"score"`
	Grade      string  `json:"grade"`
	Rank       int     `json:"rank"`
	Percentile float64 `json:"percentile"`
}

// MetricFlag 指标强弱标记（±10% 比率判定）
type MetricFlag struct {
	Category string  `json:"category"`
	Metric   string  `json:"metric"`
	Ratio    float64 `json:"ratio"`
	Flag     string  `json:"flag"` // strength/weakness/neutral
}

// PeerComparisonResult 项目间对比结果
type PeerComparisonResult struct {
	ProjectID   string           `json:"project_id"`
	Rankings    []ProjectRanking `json:"rankings"`
	MetricFlags []MetricFlag     `json:"metric_flags"`
}

// LeaderboardEntry 榜单条目
type LeaderboardEntry struct {
	ProjectID      string    `json:"project_id"`
	AverageScore   float64   `json:"average_score"`
	Grade          string    `json:"grade"`
	BenchmarkCount int       `json:"benchmark_count"`
	LastBenchmark  time.Time `json:"last_benchmark"`
}

// AnalyticsBucket 按时间分组的聚合桶
type AnalyticsBucket struct {
	Period            string         `json:"period"`
	Count             int            `json:"count"`
	AverageScore      float64        `json:"average_score"`
	GradeDistribution map[string]int `json:"grade_distribution"`
}

// BenchmarkAnalytics 聚合统计结果
type BenchmarkAnalytics struct {
	TotalBenchmarks   int               `json:"total_benchmarks"`
	AverageScore      float64           `json:"average_score"`
	GradeDistribution map[string]int    `json:"grade_distribution"`
	ImprovementRate   float64           `json:"improvement_rate"`
	Buckets           []AnalyticsBucket `json:"buckets"`
}

// SystemStatus 系统状态
type SystemStatus struct {
	IsRunning         bool    `json:"is_running"`
	TotalBenchmarks   int64   `json:"total_benchmarks"`
	ActiveProjects    int64   `json:"active_projects"`
	PendingBenchmarks int64   `json:"pending_benchmarks"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// CreateBenchmarkRequest 创建基准测试请求
type CreateBenchmarkRequest struct {
	ProjectID     string                        `json:"projectId"`
	BenchmarkType string                        `json:"benchmarkType"`
	Metrics       map[string]map[string]any     `json:"metrics,omitempty"`
	Weights       map[string]float64            `json:"weights,omitempty"`
	Industry      string                        `json:"industry,omitempty"`
}

// CompareBenchmarksRequest 项目对比请求
type CompareBenchmarksRequest struct {
	ProjectID         string   `json:"projectId"`
	ComparisonTargets []string `json:"comparisonTargets"`
	BenchmarkType     string   `json:"benchmarkType,omitempty"`
}

// ImprovementPlanRequest 改进计划请求
type ImprovementPlanRequest struct {
	ProjectID  string   `json:"projectId"`
	FocusAreas []string `json:"focusAreas,omitempty"`
	Timeline   string   `json:"timeline,omitempty"`
}

// CreateStandardRequest 扩展行业标准请求
type CreateStandardRequest struct {
	Industry      string  `json:"industry,omitempty"`
	Category      string  `json:"category"`
	Metric        string  `json:"metric"`
	Excellent     float64 `json:"excellent"`
	Good          float64 `json:"good"`
	Average       float64 `json:"average"`
	Poor          float64 `json:"poor"`
	LowerIsBetter bool    `json:"lowerIsBetter"`
	Unit          string  `json:"unit,omitempty"`
}
