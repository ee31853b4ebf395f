/*
 * @module service/benchmark/planner
 * @description 改进建议规划器，综合分类评分、指标评分、跨分类模式和趋势信号生成有序建议列表与分阶段改进计划
 * @architecture 分层架构 - 领域服务层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 分类规则 -> 指标规则 -> 跨分类模式 -> 趋势规则 -> 稳定排序 -> 阶段切分
 * @rules 排序按优先级再按影响稳定排序，并列保持生成顺序；阶段为有序列表的连续切分而非按优先级聚类
 * @dependencies benchhub-service/service/models, github.com/lib/pq
 * @refs engine.go, trend_analyzer.go
 */

package benchmark

import (
	"fmt"
	"sort"
	"time"

	"benchhub-service/service/models"

	"github.com/lib/pq"
)

// 规则阈值（固定值）
const (
	SystemicIssueThreshold        = 0.6
	SecurityComplianceThreshold   = 0.7
	MetricRecommendationThreshold = 0.6
	AcceptableCategoryThreshold   = 0.7
)

// 建议类型常量
const (
	RecTypeCriticalImprovement = "critical_improvement"
	RecTypeImprovement         = "improvement"
	RecTypeOptimization        = "optimization"
	RecTypeMetricImprovement   = "metric_improvement"
	RecTypeSystemic            = "systemic"
	RecTypeSecurityCompliance  = "security_compliance"
	RecTypeTrendReversal       = "trend_reversal"
)

// 优先级常量
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
	PriorityInfo     = "info"
)

var priorityRank = map[string]int{
	PriorityCritical: 5,
	PriorityHigh:     4,
	PriorityMedium:   3,
	PriorityLow:      2,
	PriorityInfo:     1,
}

var impactRank = map[string]int{
	"high":   3,
	"medium": 2,
	"low":    1,
}

// Planner 改进建议规划器
type Planner struct{}

// NewPlanner 创建规划器实例
func NewPlanner() *Planner {
	return &Planner{}
}

// GenerateRecommendations 生成基准测试的改进建议列表
// 各规则独立评估后合并，最终按优先级和影响稳定排序
func (p *Planner) GenerateRecommendations(b *models.Benchmark, comparison *models.ComparisonResult, trend *models.TrendResult) []models.Recommendation {
	recs := make([]models.Recommendation, 0, 8)

	categories := sortedCategories(b.CategoryScores)

	// 分类规则
	for _, category := range categories {
		if rec, ok := p.categoryRecommendation(b, category, b.CategoryScores[category]); ok {
			recs = append(recs, rec)
		}
	}

	// 指标规则：可接受分类内的低分指标
	for _, category := range categories {
		if b.CategoryScores[category] < AcceptableCategoryThreshold {
			continue
		}
		metrics := make([]string, 0, len(b.MetricScores[category]))
		for name := range b.MetricScores[category] {
			metrics = append(metrics, name)
		}
		sort.Strings(metrics)
		for _, name := range metrics {
			score := b.MetricScores[category][name]
			if score < MetricRecommendationThreshold {
				recs = append(recs, p.metricRecommendation(b, category, name, score))
			}
		}
	}

	// 跨分类模式：系统性问题
	if lowCount := countBelow(b.CategoryScores, SystemicIssueThreshold); lowCount >= 2 {
		recs = append(recs, p.systemicRecommendation(b, lowCount))
	}

	// 跨分类模式：安全/合规告急
	for _, category := range []string{models.BenchmarkTypeSecurity, models.BenchmarkTypeCompliance} {
		if score, ok := b.CategoryScores[category]; ok && score < SecurityComplianceThreshold {
			recs = append(recs, p.securityComplianceRecommendation(b, category, score))
			break // 两个分类同时告急也只生成一条
		}
	}

	// 趋势规则：下降趋势恰好生成一条扭转建议
	if trend != nil && trend.Direction == TrendDeclining {
		recs = append(recs, p.trendReversalRecommendation(b, trend))
	}

	// 稳定排序：优先级降序，其次影响降序，并列保持生成顺序
	sort.SliceStable(recs, func(i, j int) bool {
		if priorityRank[recs[i].Priority] != priorityRank[recs[j].Priority] {
			return priorityRank[recs[i].Priority] > priorityRank[recs[j].Priority]
		}
		return impactRank[recs[i].Impact] > impactRank[recs[j].Impact]
	})
	for i := range recs {
		recs[i].SortIndex = i
	}
	return recs
}

// categoryRecommendation 分类规则
// <0.5 关键改进（目标 0.7）；[0.5,0.7) 改进（目标 0.8）；[0.7,0.9) 优化（目标 0.95）；>=0.9 无建议
func (p *Planner) categoryRecommendation(b *models.Benchmark, category string, score float64) (models.Recommendation, bool) {
	var recType, priority string
	var target float64
	switch {
	case score < WeaknessThreshold:
		recType, priority, target = RecTypeCriticalImprovement, PriorityCritical, 0.7
	case score < AcceptableCategoryThreshold:
		recType, priority, target = RecTypeImprovement, PriorityHigh, 0.8
	case score < 0.9:
		recType, priority, target = RecTypeOptimization, PriorityMedium, 0.95
	default:
		return models.Recommendation{}, false
	}

	gap := target - score
	effort, timeline := effortForGap(gap)
	tpl := categoryTemplate(category)
	return models.Recommendation{
		BenchmarkID:  b.ID,
		ProjectID:    b.ProjectID,
		Category:     category,
		Type:         recType,
		Priority:     priority,
		Impact:       impactForGap(gap),
		Title:        fmt.Sprintf("%s%s", categoryLabel(category), recTypeLabel(recType)),
		Description:  fmt.Sprintf("%s分类当前评分 %.2f，目标 %.2f", categoryLabel(category), score, target),
		CurrentValue: score,
		TargetValue:  target,
		Effort:       effort,
		Timeline:     timeline,
		Actions:      tpl.actions,
		Dependencies: tpl.dependencies,
		Resources:    tpl.resources,
		Risks:        tpl.risks,
		Benefits:     tpl.benefits,
	}, true
}

// metricRecommendation 指标规则：可接受分类内评分低于 0.6 的指标，目标 0.8
func (p *Planner) metricRecommendation(b *models.Benchmark, category, metric string, score float64) models.Recommendation {
	const target = 0.8
	gap := target - score
	effort, timeline := effortForGap(gap)
	return models.Recommendation{
		BenchmarkID:  b.ID,
		ProjectID:    b.ProjectID,
		Category:     category,
		Metric:       metric,
		Type:         RecTypeMetricImprovement,
		Priority:     PriorityMedium,
		Impact:       impactForGap(gap),
		Title:        fmt.Sprintf("改进指标 %s", metric),
		Description:  fmt.Sprintf("%s分类整体达标，但指标 %s 评分 %.2f 低于 %.1f", categoryLabel(category), metric, score, MetricRecommendationThreshold),
		CurrentValue: score,
		TargetValue:  target,
		Effort:       effort,
		Timeline:     timeline,
		Actions:      pq.StringArray{fmt.Sprintf("定位 %s 指标劣化的直接原因", metric), "制定针对性优化措施并验证效果"},
		Resources:    pq.StringArray{"领域工程师"},
		Benefits:     pq.StringArray{fmt.Sprintf("%s 指标评分提升至 %.1f 以上", metric, target)},
	}
}

// systemicRecommendation 系统性问题建议：>=2 个分类低于 0.6 时生成一条
func (p *Planner) systemicRecommendation(b *models.Benchmark, lowCount int) models.Recommendation {
	return models.Recommendation{
		BenchmarkID:  b.ID,
		ProjectID:    b.ProjectID,
		Category:     "cross_category",
		Type:         RecTypeSystemic,
		Priority:     PriorityHigh,
		Impact:       "high",
		Title:        "系统性质量问题",
		Description:  fmt.Sprintf("%d 个分类评分低于 %.1f，问题跨越多个维度，建议从工程流程层面整体治理", lowCount, SystemicIssueThreshold),
		CurrentValue: float64(lowCount),
		TargetValue:  0,
		Effort:       "high",
		Timeline:     "3-6 months",
		Actions:      pq.StringArray{"组织跨团队根因分析", "建立统一的质量门禁和度量基线", "按季度复盘改进进度"},
		Dependencies: pq.StringArray{"管理层支持"},
		Resources:    pq.StringArray{"架构师", "质量负责人"},
		Risks:        pq.StringArray{"改进范围过大导致推进缓慢"},
		Benefits:     pq.StringArray{"多分类评分同步回升"},
	}
}

// securityComplianceRecommendation 安全/合规告急建议：分类评分低于 0.7 时生成一条
func (p *Planner) securityComplianceRecommendation(b *models.Benchmark, category string, score float64) models.Recommendation {
	return models.Recommendation{
		BenchmarkID:  b.ID,
		ProjectID:    b.ProjectID,
		Category:     category,
		Type:         RecTypeSecurityCompliance,
		Priority:     PriorityCritical,
		Impact:       "high",
		Title:        fmt.Sprintf("%s风险告急", categoryLabel(category)),
		Description:  fmt.Sprintf("%s分类评分 %.2f 低于告警线 %.1f，存在直接业务风险，需要立即处置", categoryLabel(category), score, SecurityComplianceThreshold),
		CurrentValue: score,
		TargetValue:  SecurityComplianceThreshold,
		Effort:       "high",
		Timeline:     "1-2 months",
		Actions:      pq.StringArray{"立即修复已知高危问题", "开展专项审计", "建立告警与响应流程"},
		Resources:    pq.StringArray{"安全工程师", "合规专员"},
		Risks:        pq.StringArray{"修复期间暴露面持续存在"},
		Benefits:     pq.StringArray{"消除直接安全合规风险"},
	}
}

// trendReversalRecommendation 趋势扭转建议：下降趋势恰好生成一条，优先级 high
func (p *Planner) trendReversalRecommendation(b *models.Benchmark, trend *models.TrendResult) models.Recommendation {
	return models.Recommendation{
		BenchmarkID:  b.ID,
		ProjectID:    b.ProjectID,
		Category:     "trend",
		Type:         RecTypeTrendReversal,
		Priority:     PriorityHigh,
		Impact:       "high",
		Title:        "扭转评分下降趋势",
		Description:  fmt.Sprintf("项目评分呈下降趋势（速率 %.3f，置信度 %.2f），需要先止跌再改进", trend.Rate, trend.Confidence),
		CurrentValue: b.OverallScore,
		TargetValue:  b.OverallScore - trend.Improvement,
		Effort:       "medium",
		Timeline:     "1-2 months",
		Actions:      pq.StringArray{"复盘最近的变更找出劣化来源", "冻结高风险变更直到趋势企稳", "提高基准测试频率跟踪恢复情况"},
		Resources:    pq.StringArray{"技术负责人"},
		Benefits:     pq.StringArray{"评分趋势恢复稳定或回升"},
	}
}

// effortForGap 按评分差距查固定档位
// <=0.1 low/1-2 周；<=0.2 medium/1-2 月；<=0.3 high/3-6 月；更大 very_high/6+ 月
func effortForGap(gap float64) (string, string) {
	switch {
	case gap <= 0.1:
		return "low", "1-2 weeks"
	case gap <= 0.2:
		return "medium", "1-2 months"
	case gap <= 0.3:
		return "high", "3-6 months"
	default:
		return "very_high", "6+ months"
	}
}

// impactForGap 差距越大影响越高
func impactForGap(gap float64) string {
	switch {
	case gap > 0.2:
		return "high"
	case gap > 0.1:
		return "medium"
	default:
		return "low"
	}
}

// effortHours 人力估算查找表
// very_high 档位规格未给出小时数，按 high 的两倍估算
var effortHours = map[string]int{
	"low":       8,
	"medium":    16,
	"high":      32,
	"very_high": 64,
}

// planPhaseCount 阶段数：1 个月 2 阶段，3 个月 3 阶段，其余 4 阶段
func planPhaseCount(timeline string) int {
	switch timeline {
	case "1_month":
		return 2
	case "3_months":
		return 3
	default:
		return 4
	}
}

// planPhaseWeeks 每阶段周数固定查找
func planPhaseWeeks(timeline string) int {
	switch timeline {
	case "1_month":
		return 2
	case "3_months":
		return 3
	default:
		return 6
	}
}

// BuildImprovementPlan 将有序建议列表连续切分为分阶段改进计划
// 切分是简单的顺序分片，不按优先级聚类；里程碑与阶段边界一一对应
func (p *Planner) BuildImprovementPlan(projectID string, recs []models.Recommendation, timeline string) *models.ImprovementPlan {
	now := time.Now()
	plan := &models.ImprovementPlan{
		ProjectID:   projectID,
		Timeline:    timeline,
		GeneratedAt: now,
	}

	phaseCount := planPhaseCount(timeline)
	phaseWeeks := planPhaseWeeks(timeline)
	if phaseCount > len(recs) && len(recs) > 0 {
		phaseCount = len(recs)
	}

	// 连续切分：前 remainder 个阶段多分一条
	if len(recs) > 0 {
		base := len(recs) / phaseCount
		remainder := len(recs) % phaseCount
		offset := 0
		cumulativeWeeks := 0
		for i := 0; i < phaseCount; i++ {
			size := base
			if i < remainder {
				size++
			}
			phase := models.PlanPhase{
				Name:            fmt.Sprintf("阶段%d", i+1),
				DurationWeeks:   phaseWeeks,
				Recommendations: recs[offset : offset+size],
			}
			offset += size
			cumulativeWeeks += phaseWeeks
			plan.Phases = append(plan.Phases, phase)
			plan.Milestones = append(plan.Milestones, models.PlanMilestone{
				Name:       fmt.Sprintf("阶段%d完成", i+1),
				TargetDate: now.Add(time.Duration(cumulativeWeeks) * 7 * 24 * time.Hour),
			})
		}
	}

	// 目标评分取建议中的最高目标
	target := 0.8
	hoursByCategory := make(map[string]int)
	for _, rec := range recs {
		if rec.TargetValue > target && rec.TargetValue <= 1 {
			target = rec.TargetValue
		}
		hours := effortHours[rec.Effort]
		hoursByCategory[rec.Category] += hours
		plan.TotalHours += hours
	}
	plan.TargetScore = target

	categories := make([]string, 0, len(hoursByCategory))
	for category := range hoursByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		plan.Resources = append(plan.Resources, models.ResourceEstimate{
			Category: category,
			Hours:    hoursByCategory[category],
		})
	}
	return plan
}

// recommendationTemplate 分类建议的动作/资源模板
type recommendationTemplate struct {
	actions      pq.StringArray
	dependencies pq.StringArray
	resources    pq.StringArray
	risks        pq.StringArray
	benefits     pq.StringArray
}

var categoryTemplates = map[string]recommendationTemplate{
	models.BenchmarkTypePerformance: {
		actions:      pq.StringArray{"分析慢请求和资源热点", "优化关键路径和缓存策略", "建立性能回归基线"},
		dependencies: pq.StringArray{"压测环境"},
		resources:    pq.StringArray{"性能工程师"},
		risks:        pq.StringArray{"优化引入新的稳定性问题"},
		benefits:     pq.StringArray{"响应时间下降", "吞吐量提升"},
	},
	models.BenchmarkTypeQuality: {
		actions:      pq.StringArray{"补齐核心路径测试覆盖", "治理重复代码和高复杂度模块", "偿还高息技术债务"},
		dependencies: pq.StringArray{"CI 流水线"},
		resources:    pq.StringArray{"开发团队"},
		risks:        pq.StringArray{"重构影响交付节奏"},
		benefits:     pq.StringArray{"缺陷率下降", "可维护性提升"},
	},
	models.BenchmarkTypeSecurity: {
		actions:      pq.StringArray{"修复高危漏洞", "升级存在已知漏洞的依赖", "启用密钥扫描"},
		dependencies: pq.StringArray{"漏洞扫描工具"},
		resources:    pq.StringArray{"安全工程师"},
		risks:        pq.StringArray{"依赖升级引入兼容性问题"},
		benefits:     pq.StringArray{"攻击面收敛"},
	},
	models.BenchmarkTypeCompliance: {
		actions:      pq.StringArray{"清理许可证违规依赖", "补齐审计日志覆盖", "对照监管要求逐项自查"},
		dependencies: pq.StringArray{"合规清单"},
		resources:    pq.StringArray{"合规专员"},
		risks:        pq.StringArray{"合规整改周期受外部审计约束"},
		benefits:     pq.StringArray{"合规风险降低"},
	},
}

func categoryTemplate(category string) recommendationTemplate {
	if tpl, ok := categoryTemplates[category]; ok {
		return tpl
	}
	return recommendationTemplate{
		actions:   pq.StringArray{"分析该分类的低分指标并制定改进项"},
		resources: pq.StringArray{"开发团队"},
		benefits:  pq.StringArray{"分类评分提升"},
	}
}

var categoryLabels = map[string]string{
	models.BenchmarkTypePerformance: "性能",
	models.BenchmarkTypeQuality:     "质量",
	models.BenchmarkTypeSecurity:    "安全",
	models.BenchmarkTypeCompliance:  "合规",
	"maintainability":               "可维护性",
}

func categoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

func recTypeLabel(recType string) string {
	switch recType {
	case RecTypeCriticalImprovement:
		return "关键改进"
	case RecTypeImprovement:
		return "改进"
	case RecTypeOptimization:
		return "优化"
	default:
		return "改进"
	}
}

func sortedCategories(scores models.ScoreMap) []string {
	categories := make([]string, 0, len(scores))
	for category := range scores {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func countBelow(scores models.ScoreMap, threshold float64) int {
	count := 0
	for _, score := range scores {
		if score < threshold {
			count++
		}
	}
	return count
}
