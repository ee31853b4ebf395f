/*
 * @module service/benchmark/planner_test
 * @description 改进建议规划器单元测试，覆盖分类规则、指标规则、跨分类模式、趋势规则、稳定排序与阶段切分
 * @architecture 测试层
 * @documentReference ai_docs/test_plan.md
 * @stateFlow 构造基准结果 -> 生成建议 -> 断言规则触发与排序
 * @rules 下降趋势恰好生成一条扭转建议；安全与合规同时告急也只生成一条
 * @dependencies testing, stretchr/testify
 */

package benchmark

import (
	"testing"
	"time"

	"benchhub-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func benchmarkWithScores(scores models.ScoreMap) *models.Benchmark {
	return &models.Benchmark{
		ID:             "bm-1",
		ProjectID:      "proj-1",
		BenchmarkType:  models.BenchmarkTypeComprehensive,
		CategoryScores: scores,
		MetricScores:   models.NestedScoreMap{},
	}
}

func recsOfType(recs []models.Recommendation, recType string) []models.Recommendation {
	matched := make([]models.Recommendation, 0)
	for _, rec := range recs {
		if rec.Type == recType {
			matched = append(matched, rec)
		}
	}
	return matched
}

// TestGenerateRecommendations_CategoryRules 分类规则的四个区间
func TestGenerateRecommendations_CategoryRules(t *testing.T) {
	planner := NewPlanner()
	b := benchmarkWithScores(models.ScoreMap{
		models.BenchmarkTypePerformance: 0.4,  // 关键改进
		models.BenchmarkTypeQuality:     0.6,  // 改进
		models.BenchmarkTypeSecurity:    0.8,  // 优化
		models.BenchmarkTypeCompliance:  0.95, // 无建议
	})

	recs := planner.GenerateRecommendations(b, nil, nil)
	require.Len(t, recs, 3)

	// 稳定排序后 critical 在前
	assert.Equal(t, RecTypeCriticalImprovement, recs[0].Type)
	assert.Equal(t, PriorityCritical, recs[0].Priority)
	assert.Equal(t, models.BenchmarkTypePerformance, recs[0].Category)
	assert.Equal(t, 0.7, recs[0].TargetValue)

	assert.Equal(t, RecTypeImprovement, recs[1].Type)
	assert.Equal(t, PriorityHigh, recs[1].Priority)
	assert.Equal(t, 0.8, recs[1].TargetValue)

	assert.Equal(t, RecTypeOptimization, recs[2].Type)
	assert.Equal(t, PriorityMedium, recs[2].Priority)
	assert.Equal(t, 0.95, recs[2].TargetValue)

	for i, rec := range recs {
		assert.Equal(t, i, rec.SortIndex)
		assert.Equal(t, "proj-1", rec.ProjectID)
		assert.Equal(t, "bm-1", rec.BenchmarkID)
	}
}

// TestGenerateRecommendations_MetricRule 只有达标分类内的低分指标才触发指标建议
func TestGenerateRecommendations_MetricRule(t *testing.T) {
	planner := NewPlanner()
	b := benchmarkWithScores(models.ScoreMap{
		models.BenchmarkTypeQuality:     0.75,
		models.BenchmarkTypePerformance: 0.55,
	})
	b.MetricScores = models.NestedScoreMap{
		models.BenchmarkTypeQuality: {
			"test_coverage":         0.5, // 分类达标，触发
			"maintainability_index": 0.9,
		},
		models.BenchmarkTypePerformance: {
			"response_time": 0.4, // 分类未达标，不触发指标建议
		},
	}

	recs := planner.GenerateRecommendations(b, nil, nil)
	metricRecs := recsOfType(recs, RecTypeMetricImprovement)
	require.Len(t, metricRecs, 1)
	assert.Equal(t, "test_coverage", metricRecs[0].Metric)
	assert.Equal(t, models.BenchmarkTypeQuality, metricRecs[0].Category)
	assert.Equal(t, PriorityMedium, metricRecs[0].Priority)
	assert.Equal(t, 0.8, metricRecs[0].TargetValue)
	assert.Equal(t, "high", metricRecs[0].Impact) // 差距 0.3 > 0.2
}

// TestGenerateRecommendations_SystemicIssue 两个以上分类低于 0.6 触发系统性建议
func TestGenerateRecommendations_SystemicIssue(t *testing.T) {
	planner := NewPlanner()
	b := benchmarkWithScores(models.ScoreMap{
		models.BenchmarkTypePerformance: 0.55,
		models.BenchmarkTypeQuality:     0.45,
		models.BenchmarkTypeSecurity:    0.85,
	})

	recs := planner.GenerateRecommendations(b, nil, nil)
	systemic := recsOfType(recs, RecTypeSystemic)
	require.Len(t, systemic, 1)
	assert.Equal(t, "cross_category", systemic[0].Category)
	assert.Equal(t, PriorityHigh, systemic[0].Priority)
	assert.Equal(t, 2.0, systemic[0].CurrentValue)

	// 单个低分分类不触发
	b2 := benchmarkWithScores(models.ScoreMap{
		models.BenchmarkTypePerformance: 0.55,
		models.BenchmarkTypeQuality:     0.85,
	})
	assert.Empty(t, recsOfType(planner.GenerateRecommendations(b2, nil, nil), RecTypeSystemic))
}

// TestGenerateRecommendations_SecurityCompliance 安全与合规同时告急也只生成一条
func TestGenerateRecommendations_SecurityCompliance(t *testing.T) {
	planner := NewPlanner()
	b := benchmarkWithScores(models.ScoreMap{
		models.BenchmarkTypeSecurity:   0.65,
		models.BenchmarkTypeCompliance: 0.6,
	})

	recs := planner.GenerateRecommendations(b, nil, nil)
	scRecs := recsOfType(recs, RecTypeSecurityCompliance)
	require.Len(t, scRecs, 1)
	assert.Equal(t, PriorityCritical, scRecs[0].Priority)
	assert.Equal(t, models.BenchmarkTypeSecurity, scRecs[0].Category)
	assert.Equal(t, SecurityComplianceThreshold, scRecs[0].TargetValue)
}

// TestGenerateRecommendations_DecliningTrend 下降趋势恰好生成一条 high 扭转建议
func TestGenerateRecommendations_DecliningTrend(t *testing.T) {
	planner := NewPlanner()
	analyzer := NewTrendAnalyzer()
	trend := analyzer.AnalyzeScores([]float64{0.6, 0.45})
	require.Equal(t, TrendDeclining, trend.Direction)

	b := benchmarkWithScores(models.ScoreMap{
		models.BenchmarkTypePerformance: 0.85,
	})
	b.OverallScore = 0.85

	recs := planner.GenerateRecommendations(b, nil, trend)
	reversal := recsOfType(recs, RecTypeTrendReversal)
	require.Len(t, reversal, 1)
	assert.Equal(t, PriorityHigh, reversal[0].Priority)
	assert.Equal(t, "trend", reversal[0].Category)

	// 稳定趋势不生成
	stable := analyzer.AnalyzeScores([]float64{0.7, 0.71, 0.7})
	assert.Empty(t, recsOfType(planner.GenerateRecommendations(b, nil, stable), RecTypeTrendReversal))
}

// TestGenerateRecommendations_StableOrdering 优先级降序，相同优先级保持生成顺序
func TestGenerateRecommendations_StableOrdering(t *testing.T) {
	planner := NewPlanner()
	b := benchmarkWithScores(models.ScoreMap{
		models.BenchmarkTypePerformance: 0.45,
		models.BenchmarkTypeQuality:     0.55,
		models.BenchmarkTypeSecurity:    0.65,
		models.BenchmarkTypeCompliance:  0.85,
	})

	recs := planner.GenerateRecommendations(b, nil, nil)
	require.NotEmpty(t, recs)
	for i := 1; i < len(recs); i++ {
		prev, cur := priorityRank[recs[i-1].Priority], priorityRank[recs[i].Priority]
		assert.GreaterOrEqual(t, prev, cur, "建议 %d 的优先级不应高于建议 %d", i, i-1)
		if prev == cur {
			assert.GreaterOrEqual(t, impactRank[recs[i-1].Impact], impactRank[recs[i].Impact])
		}
		assert.Equal(t, i, recs[i].SortIndex)
	}
}

// TestEffortForGap 差距档位查找
func TestEffortForGap(t *testing.T) {
	cases := []struct {
		gap      float64
		effort   string
		timeline string
	}{
		{0.05, "low", "1-2 weeks"},
		{0.1, "low", "1-2 weeks"},
		{0.15, "medium", "1-2 months"},
		{0.25, "high", "3-6 months"},
		{0.4, "very_high", "6+ months"},
	}
	for _, c := range cases {
		effort, timeline := effortForGap(c.gap)
		assert.Equal(t, c.effort, effort, "gap=%.2f", c.gap)
		assert.Equal(t, c.timeline, timeline, "gap=%.2f", c.gap)
	}
}

// TestBuildImprovementPlan_PhaseSplit 阶段数与每阶段周数随时间线变化
func TestBuildImprovementPlan_PhaseSplit(t *testing.T) {
	planner := NewPlanner()
	recs := []models.Recommendation{
		{Category: models.BenchmarkTypePerformance, Effort: "high", TargetValue: 0.7},
		{Category: models.BenchmarkTypePerformance, Effort: "medium", TargetValue: 0.8},
		{Category: models.BenchmarkTypeQuality, Effort: "low", TargetValue: 0.95},
		{Category: models.BenchmarkTypeSecurity, Effort: "medium", TargetValue: 0.8},
		{Category: models.BenchmarkTypeSecurity, Effort: "low", TargetValue: 0.8},
	}

	cases := []struct {
		timeline   string
		phaseCount int
		phaseWeeks int
	}{
		{"1_month", 2, 2},
		{"3_months", 3, 3},
		{"6_months", 4, 6},
	}
	for _, c := range cases {
		plan := planner.BuildImprovementPlan("proj-1", recs, c.timeline)
		require.Len(t, plan.Phases, c.phaseCount, "timeline=%s", c.timeline)
		require.Len(t, plan.Milestones, c.phaseCount)

		// 连续切分覆盖全部建议且不重叠
		total := 0
		for i, phase := range plan.Phases {
			assert.Equal(t, c.phaseWeeks, phase.DurationWeeks)
			assert.NotEmpty(t, phase.Recommendations)
			total += len(phase.Recommendations)
			expected := time.Duration((i+1)*c.phaseWeeks) * 7 * 24 * time.Hour
			assert.WithinDuration(t, plan.GeneratedAt.Add(expected), plan.Milestones[i].TargetDate, time.Minute)
		}
		assert.Equal(t, len(recs), total)
	}
}

// TestBuildImprovementPlan_Resources 人力估算按分类聚合并有序
func TestBuildImprovementPlan_Resources(t *testing.T) {
	planner := NewPlanner()
	recs := []models.Recommendation{
		{Category: models.BenchmarkTypeSecurity, Effort: "high", TargetValue: 0.7},
		{Category: models.BenchmarkTypePerformance, Effort: "medium", TargetValue: 0.8},
		{Category: models.BenchmarkTypePerformance, Effort: "low", TargetValue: 0.95},
	}

	plan := planner.BuildImprovementPlan("proj-1", recs, "3_months")
	assert.Equal(t, 32+16+8, plan.TotalHours)
	assert.Equal(t, 0.95, plan.TargetScore)
	require.Len(t, plan.Resources, 2)
	assert.Equal(t, models.BenchmarkTypePerformance, plan.Resources[0].Category)
	assert.Equal(t, 24, plan.Resources[0].Hours)
	assert.Equal(t, models.BenchmarkTypeSecurity, plan.Resources[1].Category)
	assert.Equal(t, 32, plan.Resources[1].Hours)
}

// TestBuildImprovementPlan_FewRecommendations 建议数少于阶段数时阶段数收缩
func TestBuildImprovementPlan_FewRecommendations(t *testing.T) {
	planner := NewPlanner()
	recs := []models.Recommendation{
		{Category: models.BenchmarkTypeQuality, Effort: "medium", TargetValue: 0.8},
	}

	plan := planner.BuildImprovementPlan("proj-1", recs, "6_months")
	require.Len(t, plan.Phases, 1)
	assert.Len(t, plan.Phases[0].Recommendations, 1)

	// 空建议列表不生成阶段，目标评分取默认值
	empty := planner.BuildImprovementPlan("proj-1", nil, "1_month")
	assert.Empty(t, empty.Phases)
	assert.Equal(t, 0.8, empty.TargetScore)
	assert.Equal(t, 0, empty.TotalHours)
}
