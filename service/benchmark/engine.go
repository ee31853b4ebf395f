/*
 * @module service/benchmark/engine
 * @description 基准测试引擎，将各分类原始指标归一化为加权评分，计算总分、等级和SWOT分析
 * @architecture 分层架构 - 领域服务层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 类型校验 -> 指标归一化 -> 分类加权评分 -> 总分混合 -> 等级评定 -> SWOT分析
 * @rules 空指标集合仍产生有效的零分基准测试；未知类型在任何计算前作为校验错误拒绝
 * @dependencies benchhub-service/service/models
 * @refs standards_registry.go, planner.go
 */

package benchmark

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"benchhub-service/service/models"
)

// 与标准对比共用的强弱阈值
const (
	StrengthThreshold    = 0.8
	WeaknessThreshold    = 0.5
	OpportunityThreshold = 0.7
)

// ErrInvalidBenchmarkType 未知基准测试类型，计算开始前即拒绝
var ErrInvalidBenchmarkType = errors.New("不支持的基准测试类型")

// comprehensiveBlend 综合基准测试的分类混合权重
// 只有实际参与计算的分类贡献权重，权重按参与分类重新归一化
var comprehensiveBlend = map[string]float64{
	models.BenchmarkTypePerformance: 0.30,
	models.BenchmarkTypeQuality:     0.25,
	models.BenchmarkTypeSecurity:    0.20,
	"maintainability":               0.15,
	models.BenchmarkTypeCompliance:  0.10,
}

// Engine 基准测试引擎
type Engine struct {
	registry *StandardsRegistry
}

// NewEngine 创建基准测试引擎实例
func NewEngine(registry *StandardsRegistry) *Engine {
	return &Engine{registry: registry}
}

// RunBenchmark 执行一次基准测试计算
// rawMetrics 为分类 -> 指标名 -> 原始数值；weightOverrides 覆盖指标默认权重
func (e *Engine) RunBenchmark(projectID, benchmarkType string, rawMetrics models.MetricBag, weightOverrides map[string]float64, industry string) (*models.Benchmark, error) {
	if !models.IsValidBenchmarkType(benchmarkType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBenchmarkType, benchmarkType)
	}

	categories := e.relevantCategories(benchmarkType, rawMetrics)

	b := &models.Benchmark{
		ProjectID:      projectID,
		BenchmarkType:  benchmarkType,
		Timestamp:      time.Now(),
		Metrics:        make(models.MetricBag, len(categories)),
		CategoryScores: make(models.ScoreMap, len(categories)),
		MetricScores:   make(models.NestedScoreMap, len(categories)),
	}

	present := make(map[string]bool, len(categories))
	for _, category := range categories {
		bag := rawMetrics[category]
		kept := make(map[string]float64, len(bag))
		scores := make(map[string]float64, len(bag))

		var weightedSum, weightTotal float64
		for name, value := range bag {
			// 非法数值直接丢弃，绝不按 0 处理
			if math.IsNaN(value) || math.IsInf(value, 0) {
				continue
			}
			canonical := CanonicalMetricName(name)
			score := e.normalizeMetric(category, canonical, value, industry)
			weight := LookupMetricSpec(canonical).DefaultWeight
			if override, ok := weightOverrides[canonical]; ok && override > 0 {
				weight = override
			}

			kept[canonical] = value
			scores[canonical] = score
			weightedSum += score * weight
			weightTotal += weight
		}

		// 无有效加权指标时分类评分为 0，而不是未定义
		categoryScore := 0.0
		if weightTotal > 0 {
			categoryScore = clamp01(weightedSum / weightTotal)
		}

		b.Metrics[category] = kept
		b.MetricScores[category] = scores
		b.CategoryScores[category] = categoryScore
		present[category] = weightTotal > 0
	}

	b.OverallScore = blendOverallScore(b.CategoryScores, present)
	b.Grade = GradeForScore(b.OverallScore)
	b.Analysis = analyzeCategories(b.CategoryScores)
	return b, nil
}

// relevantCategories 返回本次基准测试需要计算的分类
// comprehensive 固定覆盖四个分类，额外出现在指标集合且有混合权重的分类也参与计算
func (e *Engine) relevantCategories(benchmarkType string, rawMetrics models.MetricBag) []string {
	if benchmarkType != models.BenchmarkTypeComprehensive {
		return []string{benchmarkType}
	}

	categories := append([]string(nil), models.BenchmarkCategories...)
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		seen[c] = true
	}
	extra := make([]string, 0, 1)
	for category := range rawMetrics {
		if !seen[category] {
			if _, ok := comprehensiveBlend[category]; ok {
				extra = append(extra, category)
			}
		}
	}
	sort.Strings(extra)
	return append(categories, extra...)
}

// normalizeMetric 方向感知的指标归一化
// 有标准阈值的指标按四档打分；无标准的指标带入百分数启发（值 > 1 除以 100）后截断到 [0,1]，
// 越低越好的指标取补
func (e *Engine) normalizeMetric(category, metric string, value float64, industry string) float64 {
	if std := e.registry.lookup(category, metric, industry); std != nil {
		score, _ := bandScore(std, value)
		return score
	}

	scaled := value
	if scaled > 1 {
		scaled = scaled / 100
	}
	scaled = clamp01(scaled)
	if LookupMetricSpec(metric).LowerIsBetter {
		return 1 - scaled
	}
	return scaled
}

// blendOverallScore 计算总分
// 仅有实际指标的分类贡献权重，权重在这些分类上重新归一化；
// 没有任何分类有指标时总分为 0
func blendOverallScore(categoryScores models.ScoreMap, present map[string]bool) float64 {
	var weightedSum, weightTotal float64
	for category, score := range categoryScores {
		if !present[category] {
			continue
		}
		weight, ok := comprehensiveBlend[category]
		if !ok {
			weight = 0.1
		}
		weightedSum += score * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0
	}
	return clamp01(weightedSum / weightTotal)
}

// GradeForScore 固定等级阶梯（下界闭区间）
func GradeForScore(score float64) string {
	switch {
	case score >= 0.90:
		return "A+"
	case score >= 0.80:
		return "A"
	case score >= 0.70:
		return "B+"
	case score >= 0.60:
		return "B"
	case score >= 0.50:
		return "C+"
	case score >= 0.40:
		return "C"
	case score >= 0.30:
		return "D"
	default:
		return "F"
	}
}

// analyzeCategories SWOT 分类
// >=0.8 强项；<0.5 弱项；[0.5,0.8) 中 >=0.7 为机会，其余按跨分类模式判定为威胁或机会
func analyzeCategories(categoryScores models.ScoreMap) models.BenchmarkAnalysis {
	analysis := models.BenchmarkAnalysis{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Opportunities: []string{},
		Threats:       []string{},
	}

	categories := make([]string, 0, len(categoryScores))
	for category := range categoryScores {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		score := categoryScores[category]
		switch {
		case score >= StrengthThreshold:
			analysis.Strengths = append(analysis.Strengths, category)
		case score < WeaknessThreshold:
			analysis.Weaknesses = append(analysis.Weaknesses, category)
		case score >= OpportunityThreshold:
			analysis.Opportunities = append(analysis.Opportunities, category)
		default:
			if matchesCrossCategoryPattern(category, categoryScores) {
				analysis.Threats = append(analysis.Threats, category)
			} else {
				analysis.Opportunities = append(analysis.Opportunities, category)
			}
		}
	}
	return analysis
}

// matchesCrossCategoryPattern 跨分类模式检查
// 命中系统性问题模式（>=2 个分类低于 0.6）或安全/合规告急模式（低于 0.7）
func matchesCrossCategoryPattern(category string, categoryScores models.ScoreMap) bool {
	if category == models.BenchmarkTypeSecurity || category == models.BenchmarkTypeCompliance {
		if categoryScores[category] < SecurityComplianceThreshold {
			return true
		}
	}

	low := 0
	for _, score := range categoryScores {
		if score < SystemicIssueThreshold {
			low++
		}
	}
	return low >= 2 && categoryScores[category] < SystemicIssueThreshold
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
