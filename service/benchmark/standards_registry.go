/*
 * @module service/benchmark/standards_registry
 * @description 行业标准注册表，维护通用和行业覆盖的指标阈值表，提供数值到评分的四档归一化和整体标准对比
 * @architecture 分层架构 - 领域服务层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 启动时加载默认标准和数据库标准 -> 运行期只读查询 -> 管理操作可追加标准
 * @rules 四档打分不插值：excellent=1.0, good=0.8, average=0.6, 其余 0.4；无标准时显式回退 {0.5, unknown}
 * @dependencies benchhub-service/service/models, gorm.io/gorm
 * @refs metric_registry.go, engine.go
 */

package benchmark

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"benchhub-service/service/models"

	"gorm.io/gorm"
)

// 标准对比等级常量
const (
	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelAverage   = "average"
	LevelPoor      = "poor"
	LevelUnknown   = "unknown"
)

// UnknownMetricScore 无标准时的显式回退评分
const UnknownMetricScore = 0.5

// StandardsRegistry 行业标准注册表
// 读多写少：基准测试只读，管理操作在锁保护下追加
type StandardsRegistry struct {
	mu       sync.RWMutex
	db       *gorm.DB
	generic  map[string]*models.BenchmarkStandard
	industry map[string]map[string]*models.BenchmarkStandard
}

// NewStandardsRegistry 创建行业标准注册表实例
// db 可以为 nil（仅内存模式，用于测试）
func NewStandardsRegistry(db *gorm.DB) *StandardsRegistry {
	return &StandardsRegistry{
		db:       db,
		generic:  make(map[string]*models.BenchmarkStandard),
		industry: make(map[string]map[string]*models.BenchmarkStandard),
	}
}

func standardKey(category, metric string) string {
	return category + "/" + CanonicalMetricName(metric)
}

// Load 加载标准表：先写入默认标准，再用数据库中的标准覆盖
func (r *StandardsRegistry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, std := range DefaultStandards() {
		s := std
		r.generic[standardKey(s.Category, s.Metric)] = &s
	}

	if r.db == nil {
		return nil
	}

	var stored []models.BenchmarkStandard
	if err := r.db.Find(&stored).Error; err != nil {
		return fmt.Errorf("加载行业标准失败: %w", err)
	}
	for _, std := range stored {
		s := std
		r.putLocked(&s)
	}
	return nil
}

func (r *StandardsRegistry) putLocked(std *models.BenchmarkStandard) {
	key := standardKey(std.Category, std.Metric)
	if std.Industry == "" {
		r.generic[key] = std
		return
	}
	if r.industry[std.Industry] == nil {
		r.industry[std.Industry] = make(map[string]*models.BenchmarkStandard)
	}
	r.industry[std.Industry][key] = std
}

// AddStandard 新增或覆盖行业标准（管理操作），持久化后更新内存表
// 同 industry/category/metric 的已有标准（含内置种子）被整体覆盖，保留原记录 ID
// 基准测试流程本身不会修改标准表
func (r *StandardsRegistry) AddStandard(std *models.BenchmarkStandard) error {
	std.Metric = CanonicalMetricName(std.Metric)
	if std.Category == "" || std.Metric == "" {
		return fmt.Errorf("标准的分类和指标名不能为空")
	}
	if r.db != nil {
		var existing models.BenchmarkStandard
		err := r.db.Where("industry = ? AND category = ? AND metric = ?",
			std.Industry, std.Category, std.Metric).First(&existing).Error
		switch {
		case err == nil:
			std.ID = existing.ID
			std.CreatedAt = existing.CreatedAt
			std.UpdatedAt = time.Now()
			if err := r.db.Save(std).Error; err != nil {
				return fmt.Errorf("更新行业标准失败: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := r.db.Create(std).Error; err != nil {
				return fmt.Errorf("保存行业标准失败: %w", err)
			}
		default:
			return fmt.Errorf("查询行业标准失败: %w", err)
		}
	}
	r.mu.Lock()
	r.putLocked(std)
	r.mu.Unlock()
	return nil
}

// ListStandards 查询标准表，category/metric 为空表示不过滤
func (r *StandardsRegistry) ListStandards(category, metric string) []models.BenchmarkStandard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metric = CanonicalMetricName(metric)
	var out []models.BenchmarkStandard
	collect := func(table map[string]*models.BenchmarkStandard) {
		for _, std := range table {
			if category != "" && std.Category != category {
				continue
			}
			if metric != "" && std.Metric != metric {
				continue
			}
			out = append(out, *std)
		}
	}
	collect(r.generic)
	for _, table := range r.industry {
		collect(table)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Industry != out[j].Industry {
			return out[i].Industry < out[j].Industry
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Metric < out[j].Metric
	})
	return out
}

// lookup 查找阈值：行业覆盖表优先，回退到通用表，都没有返回 nil
func (r *StandardsRegistry) lookup(category, metric, industry string) *models.BenchmarkStandard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := standardKey(category, metric)
	if industry != "" {
		if table, ok := r.industry[industry]; ok {
			if std, ok := table[key]; ok {
				return std
			}
		}
	}
	return r.generic[key]
}

// CompareMetric 单指标与标准对比
// 无对应标准时返回显式回退 {score: 0.5, level: unknown}，不静默失败
func (r *StandardsRegistry) CompareMetric(category, metric string, value float64, industry string) models.MetricComparison {
	std := r.lookup(category, metric, industry)
	if std == nil {
		return models.MetricComparison{
			Metric: CanonicalMetricName(metric),
			Value:  value,
			Score:  UnknownMetricScore,
			Level:  LevelUnknown,
		}
	}

	score, level := bandScore(std, value)
	return models.MetricComparison{
		Metric:   CanonicalMetricName(metric),
		Value:    value,
		Score:    score,
		Level:    level,
		Standard: std,
	}
}

// bandScore 四档打分：达到 excellent 得 1.0，good 得 0.8，average 得 0.6，否则 0.4
// ratio 单位的指标在对比前带入百分数启发：值 > 1 视为百分数除以 100
func bandScore(std *models.BenchmarkStandard, value float64) (float64, string) {
	if std.Unit == "ratio" && value > 1 {
		value = value / 100
	}

	meets := func(threshold float64) bool {
		if std.LowerIsBetter {
			return value <= threshold
		}
		return value >= threshold
	}

	switch {
	case meets(std.Excellent):
		return 1.0, LevelExcellent
	case meets(std.Good):
		return 0.8, LevelGood
	case meets(std.Average):
		return 0.6, LevelAverage
	default:
		return 0.4, LevelPoor
	}
}

// CompareBenchmark 将基准测试与标准表整体对比
// 强弱分类与引擎保持同一阈值：评分 >=0.8 为强项，<0.5 为弱项，其余为机会
func (r *StandardsRegistry) CompareBenchmark(b *models.Benchmark, industry string) *models.ComparisonResult {
	result := &models.ComparisonResult{
		Categories: make(map[string]*models.CategoryComparison),
		Industry:   industry,
	}

	categories := make([]string, 0, len(b.Metrics))
	for category := range b.Metrics {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var categoryTotal float64
	var categoryCount int
	for _, category := range categories {
		metrics := b.Metrics[category]
		comparison := &models.CategoryComparison{Category: category}

		names := make([]string, 0, len(metrics))
		for name := range metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		var total float64
		for _, name := range names {
			mc := r.CompareMetric(category, name, metrics[name], industry)
			comparison.Metrics = append(comparison.Metrics, mc)
			total += mc.Score

			switch {
			case mc.Score >= StrengthThreshold:
				comparison.Strengths = append(comparison.Strengths, mc.Metric)
			case mc.Score < WeaknessThreshold:
				comparison.Weaknesses = append(comparison.Weaknesses, mc.Metric)
			default:
				comparison.Opportunities = append(comparison.Opportunities, mc.Metric)
			}
		}

		if len(names) > 0 {
			comparison.Score = total / float64(len(names))
		}
		comparison.Level = levelForScore(comparison.Score)
		result.Categories[category] = comparison

		categoryTotal += comparison.Score
		categoryCount++
	}

	if categoryCount > 0 {
		result.OverallScore = categoryTotal / float64(categoryCount)
	}
	result.Grade = GradeForScore(result.OverallScore)
	return result
}

// levelForScore 将聚合评分映射到等级描述
func levelForScore(score float64) string {
	switch {
	case score >= 0.9:
		return LevelExcellent
	case score >= 0.8:
		return LevelGood
	case score >= 0.6:
		return LevelAverage
	default:
		return LevelPoor
	}
}
