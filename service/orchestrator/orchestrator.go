/*
 * @module service/orchestrator/orchestrator
 * @description 基准测试编排器，串联评分引擎、趋势分析、标准对比与建议生成，持有全部持久化状态
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 指标采集 -> 引擎评分 -> 行业对比 -> 趋势分析 -> 建议生成 -> 持久化 -> 事件发布
 * @rules 同一项目的并发基准测试通过分布式锁串行化；对外评分为 70% 引擎评分 + 30% 行业对比评分
 * @dependencies gorm.io/gorm, github.com/prometheus/client_golang
 * @refs service/benchmark/, service/metrics_source/, service/distributed_lock/, service/event/
 */

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"benchhub-service/service/benchmark"
	"benchhub-service/service/distributed_lock"
	"benchhub-service/service/event"
	"benchhub-service/service/metrics_source"
	"benchhub-service/service/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

const (
	// 对外可见评分的混合权重：70% 引擎评分 + 30% 行业对比评分
	engineBlendWeight     = 0.7
	comparisonBlendWeight = 0.3

	// 单项目基准测试锁的 TTL，超时后锁自动释放
	runLockTTL = 5 * time.Minute

	// 外部指标采集超时
	metricsFetchTimeout = 30 * time.Second

	// 对比目标中的行业平均哨兵值，按 average 档位评分 0.6 参与排名
	IndustryAverageTarget = "industry_average"
	industryAverageScore  = 0.6

	// ±10% 比率判定指标强弱
	metricFlagRatio = 0.1

	// 触发来源
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"

	defaultLeaderboardRange = "30d"
	defaultLeaderboardLimit = 10
	maxPageSize             = 100
)

var (
	// ErrProjectBusy 同一项目已有基准测试在执行
	ErrProjectBusy = errors.New("项目正在执行基准测试，请稍后重试")
	// ErrBenchmarkNotFound 项目没有基准测试记录
	ErrBenchmarkNotFound = errors.New("项目没有基准测试记录")
)

var (
	benchmarkRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "benchhub_benchmark_runs_total",
		Help: "基准测试执行成功总次数",
	}, []string{"benchmark_type", "trigger"})

	benchmarkRunFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "benchhub_benchmark_run_failures_total",
		Help: "基准测试执行失败总次数",
	}, []string{"benchmark_type", "trigger"})

	analyticsEntriesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "benchhub_analytics_entries_purged_total",
		Help: "清理任务删除的过期分析快照总数",
	})
)

// Orchestrator 基准测试编排器
type Orchestrator struct {
	db         *gorm.DB
	registry   *benchmark.StandardsRegistry
	engine     *benchmark.Engine
	analyzer   *benchmark.TrendAnalyzer
	planner    *benchmark.Planner
	forecaster benchmark.Forecaster
	provider   metrics_source.Provider
	publisher  event.Publisher
	lock       distributed_lock.DistributedLock
	scheduler  *Scheduler
	startedAt  time.Time
	// inFlight 当前持有项目锁正在执行的基准测试数，状态接口上报用
	inFlight atomic.Int64
}

// NewOrchestrator 创建基准测试编排器
// provider、publisher、lock、forecaster 均可为 nil，缺省时退化为空实现
func NewOrchestrator(db *gorm.DB, provider metrics_source.Provider, publisher event.Publisher,
	lock distributed_lock.DistributedLock, forecaster benchmark.Forecaster) (*Orchestrator, error) {
	registry := benchmark.NewStandardsRegistry(db)
	if err := registry.Load(); err != nil {
		return nil, fmt.Errorf("加载行业标准失败: %w", err)
	}

	if publisher == nil {
		publisher = &event.NoopPublisher{}
	}
	if lock == nil {
		lock = distributed_lock.NewMemoryLock()
	}
	if forecaster == nil {
		forecaster = benchmark.NewHeuristicForecaster()
	}

	o := &Orchestrator{
		db:         db,
		registry:   registry,
		engine:     benchmark.NewEngine(registry),
		analyzer:   benchmark.NewTrendAnalyzer(),
		planner:    benchmark.NewPlanner(),
		forecaster: forecaster,
		provider:   provider,
		publisher:  publisher,
		lock:       lock,
		startedAt:  time.Now(),
	}
	o.scheduler = NewScheduler(o)
	return o, nil
}

// Registry 返回行业标准注册表
func (o *Orchestrator) Registry() *benchmark.StandardsRegistry {
	return o.registry
}

// Scheduler 返回调度器
func (o *Orchestrator) Scheduler() *Scheduler {
	return o.scheduler
}

// RunBenchmark 执行一次基准测试
// 同项目的并发调用被锁拒绝，返回 ErrProjectBusy
func (o *Orchestrator) RunBenchmark(ctx context.Context, req *models.CreateBenchmarkRequest, trigger string) (*models.BenchmarkRunResult, error) {
	if req == nil || strings.TrimSpace(req.ProjectID) == "" {
		return nil, errors.New("projectId 不能为空")
	}
	benchmarkType := req.BenchmarkType
	if benchmarkType == "" {
		benchmarkType = models.BenchmarkTypeComprehensive
	}
	if !models.IsValidBenchmarkType(benchmarkType) {
		return nil, fmt.Errorf("无效的基准测试类型: %s", benchmarkType)
	}
	if trigger == "" {
		trigger = TriggerManual
	}

	locked, err := o.lock.TryLock(ctx, req.ProjectID, runLockTTL)
	if err != nil {
		return nil, fmt.Errorf("获取项目锁失败: %w", err)
	}
	if !locked {
		return nil, ErrProjectBusy
	}
	defer func() {
		if err := o.lock.Unlock(context.Background(), req.ProjectID); err != nil {
			slog.Warn("释放项目锁失败", "project_id", req.ProjectID, "error", err)
		}
	}()

	o.inFlight.Add(1)
	defer o.inFlight.Add(-1)

	result, err := o.runBenchmarkLocked(ctx, req, benchmarkType)
	if err != nil {
		benchmarkRunFailures.WithLabelValues(benchmarkType, trigger).Inc()
		return nil, err
	}
	benchmarkRunsTotal.WithLabelValues(benchmarkType, trigger).Inc()
	return result, nil
}

func (o *Orchestrator) runBenchmarkLocked(ctx context.Context, req *models.CreateBenchmarkRequest, benchmarkType string) (*models.BenchmarkRunResult, error) {
	rawMetrics := o.collectMetrics(ctx, req)

	b, err := o.engine.RunBenchmark(req.ProjectID, benchmarkType, rawMetrics, req.Weights, req.Industry)
	if err != nil {
		return nil, err
	}

	comparison := o.registry.CompareBenchmark(b, req.Industry)
	b.BlendedScore = engineBlendWeight*b.OverallScore + comparisonBlendWeight*comparison.OverallScore

	historyScores, err := o.historyScores(req.ProjectID, benchmarkType)
	if err != nil {
		return nil, err
	}
	trend := o.analyzer.AnalyzeScores(append(historyScores, b.OverallScore))

	forecast, err := o.forecaster.PredictFuturePerformance(b, historyScores)
	if err != nil {
		slog.Warn("预测未来表现失败", "project_id", req.ProjectID, "error", err)
		forecast = nil
	}

	recs := o.planner.GenerateRecommendations(b, comparison, trend)

	err = o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return fmt.Errorf("保存基准测试记录失败: %w", err)
		}
		for i := range recs {
			recs[i].BenchmarkID = b.ID
			recs[i].ProjectID = b.ProjectID
		}
		if len(recs) > 0 {
			if err := tx.Create(&recs).Error; err != nil {
				return fmt.Errorf("保存改进建议失败: %w", err)
			}
		}
		entry := &models.AnalyticsEntry{
			ProjectID:     b.ProjectID,
			BenchmarkID:   b.ID,
			BenchmarkType: b.BenchmarkType,
			Score:         b.BlendedScore,
			Grade:         b.Grade,
			Summary: models.JSONB{
				"overall_score":        b.OverallScore,
				"comparison_score":     comparison.OverallScore,
				"category_count":       len(b.CategoryScores),
				"recommendation_count": len(recs),
				"trend":                trend.Trend,
			},
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("保存分析快照失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := o.publisher.PublishBenchmarkCompleted(ctx, b); err != nil {
		slog.Warn("发布基准测试完成事件失败", "project_id", b.ProjectID, "error", err)
	}

	slog.Info("基准测试完成",
		"project_id", b.ProjectID,
		"benchmark_type", b.BenchmarkType,
		"overall_score", b.OverallScore,
		"blended_score", b.BlendedScore,
		"grade", b.Grade,
		"recommendations", len(recs))

	return &models.BenchmarkRunResult{
		Benchmark:       b,
		Comparison:      comparison,
		Trend:           trend,
		Forecast:        forecast,
		Recommendations: recs,
	}, nil
}

// collectMetrics 优先使用请求内联指标，否则带超时从外部来源采集
// 采集失败不是错误，空指标照常评分为 0
func (o *Orchestrator) collectMetrics(ctx context.Context, req *models.CreateBenchmarkRequest) models.MetricBag {
	if len(req.Metrics) > 0 {
		return metrics_source.CoerceMetrics(req.ProjectID, req.Metrics)
	}
	if o.provider == nil {
		return models.MetricBag{}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, metricsFetchTimeout)
	defer cancel()

	fetched, err := o.provider.FetchProjectMetrics(fetchCtx, req.ProjectID)
	if err != nil {
		slog.Warn("采集项目指标失败，使用空指标继续", "project_id", req.ProjectID, "provider", o.provider.Name(), "error", err)
		return models.MetricBag{}
	}
	return fetched
}

// historyScores 按时间升序返回项目历史引擎评分
func (o *Orchestrator) historyScores(projectID, benchmarkType string) ([]float64, error) {
	var history []models.Benchmark
	err := o.db.Select("overall_score").
		Where("project_id = ? AND benchmark_type = ?", projectID, benchmarkType).
		Order("timestamp ASC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("查询历史基准测试失败: %w", err)
	}
	scores := make([]float64, 0, len(history))
	for _, h := range history {
		scores = append(scores, h.OverallScore)
	}
	return scores, nil
}

// latestBenchmark 返回项目最近一次基准测试记录
// benchmarkType 为空时不限定类型
func (o *Orchestrator) latestBenchmark(projectID, benchmarkType string) (*models.Benchmark, error) {
	query := o.db.Where("project_id = ?", projectID)
	if benchmarkType != "" {
		query = query.Where("benchmark_type = ?", benchmarkType)
	}

	var b models.Benchmark
	err := query.Order("timestamp DESC").First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBenchmarkNotFound, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("查询基准测试失败: %w", err)
	}
	return &b, nil
}

// CompareProjects 项目间对比：排名、百分位与指标强弱标记
// comparisonTargets 支持同行项目 ID 和 industry_average 哨兵值
func (o *Orchestrator) CompareProjects(req *models.CompareBenchmarksRequest) (*models.PeerComparisonResult, error) {
	if req == nil || strings.TrimSpace(req.ProjectID) == "" {
		return nil, errors.New("projectId 不能为空")
	}
	benchmarkType := req.BenchmarkType
	if benchmarkType == "" {
		benchmarkType = models.BenchmarkTypeComprehensive
	}
	targets := req.ComparisonTargets
	if len(targets) == 0 {
		targets = []string{IndustryAverageTarget}
	}

	source, err := o.latestBenchmark(req.ProjectID, benchmarkType)
	if err != nil {
		return nil, err
	}

	type entry struct {
		target string
		score  float64
		grade  string
		bench  *models.Benchmark
	}

	entries := []entry{{target: source.ProjectID, score: source.BlendedScore, grade: source.Grade, bench: source}}
	peers := make([]*models.Benchmark, 0, len(targets))
	industryAverage := false

	for _, target := range targets {
		if target == source.ProjectID {
			continue
		}
		if target == IndustryAverageTarget {
			entries = append(entries, entry{
				target: IndustryAverageTarget,
				score:  industryAverageScore,
				grade:  benchmark.GradeForScore(industryAverageScore),
			})
			industryAverage = true
			continue
		}
		tb, err := o.latestBenchmark(target, benchmarkType)
		if err != nil {
			slog.Warn("对比目标没有基准测试记录，跳过", "target", target, "error", err)
			continue
		}
		entries = append(entries, entry{target: target, score: tb.BlendedScore, grade: tb.Grade, bench: tb})
		peers = append(peers, tb)
	}

	// 按评分降序排名，评分相同保持插入顺序
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	n := len(entries)
	rankings := make([]models.ProjectRanking, 0, n)
	for i, e := range entries {
		rank := i + 1
		rankings = append(rankings, models.ProjectRanking{
			Target:     e.target,
			Score:      e.score,
			Grade:      e.grade,
			Rank:       rank,
			Percentile: (1 - float64(rank-1)/float64(n)) * 100,
		})
	}

	return &models.PeerComparisonResult{
		ProjectID:   req.ProjectID,
		Rankings:    rankings,
		MetricFlags: metricFlags(source, peers, industryAverage),
	}, nil
}

// metricFlags 逐指标与同行均值做 ±10% 比率判定，只输出 strength/weakness
// industry_average 目标按 average 档位 0.6 参与均值
func metricFlags(source *models.Benchmark, peers []*models.Benchmark, industryAverage bool) []models.MetricFlag {
	flags := make([]models.MetricFlag, 0)

	categories := make([]string, 0, len(source.MetricScores))
	for category := range source.MetricScores {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		metricNames := make([]string, 0, len(source.MetricScores[category]))
		for metric := range source.MetricScores[category] {
			metricNames = append(metricNames, metric)
		}
		sort.Strings(metricNames)

		for _, metric := range metricNames {
			score := source.MetricScores[category][metric]

			var sum float64
			var count int
			if industryAverage {
				sum += industryAverageScore
				count++
			}
			for _, peer := range peers {
				if peerScore, ok := peer.MetricScores[category][metric]; ok {
					sum += peerScore
					count++
				}
			}
			if count == 0 || sum == 0 {
				continue
			}

			ratio := score / (sum / float64(count))
			flag := "neutral"
			switch {
			case ratio >= 1+metricFlagRatio:
				flag = "strength"
			case ratio <= 1-metricFlagRatio:
				flag = "weakness"
			}
			if flag == "neutral" {
				continue
			}
			flags = append(flags, models.MetricFlag{
				Category: category,
				Metric:   metric,
				Ratio:    ratio,
				Flag:     flag,
			})
		}
	}
	return flags
}

// GetBenchmarks 分页查询基准测试历史，按时间降序
func (o *Orchestrator) GetBenchmarks(projectID, benchmarkType string, page, pageSize int) ([]models.Benchmark, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := o.db.Model(&models.Benchmark{})
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if benchmarkType != "" {
		query = query.Where("benchmark_type = ?", benchmarkType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计基准测试数量失败: %w", err)
	}

	var benchmarks []models.Benchmark
	err := query.Order("timestamp DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&benchmarks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询基准测试列表失败: %w", err)
	}
	return benchmarks, total, nil
}

// GetRecommendations 查询项目最近一次基准测试的改进建议，按生成顺序返回
// projectID 为空时跨项目查询最新生成的建议
func (o *Orchestrator) GetRecommendations(projectID, category, priority string) ([]models.Recommendation, error) {
	query := o.db.Model(&models.Recommendation{})
	if strings.TrimSpace(projectID) != "" {
		latest, err := o.latestBenchmark(projectID, "")
		if err != nil {
			return nil, err
		}
		query = query.Where("benchmark_id = ?", latest.ID).Order("sort_index ASC")
	} else {
		query = query.Order("created_at DESC").Limit(maxPageSize)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if priority != "" {
		query = query.Where("priority = ?", priority)
	}

	var recs []models.Recommendation
	if err := query.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("查询改进建议失败: %w", err)
	}
	return recs, nil
}

// GetTrends 查询时间窗口内的趋势分析与未来预测
func (o *Orchestrator) GetTrends(projectID, benchmarkType, timeRange string) (*models.TrendResult, *models.Forecast, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, nil, errors.New("projectId 不能为空")
	}
	if benchmarkType == "" {
		benchmarkType = models.BenchmarkTypeComprehensive
	}

	var history []models.Benchmark
	err := o.db.Where("project_id = ? AND benchmark_type = ? AND timestamp >= ?",
		projectID, benchmarkType, parseTimeRange(timeRange)).
		Order("timestamp ASC").
		Find(&history).Error
	if err != nil {
		return nil, nil, fmt.Errorf("查询历史基准测试失败: %w", err)
	}

	trend := o.analyzer.AnalyzeTrends(history)
	if len(history) == 0 {
		return trend, nil, nil
	}

	scores := make([]float64, 0, len(history))
	for _, h := range history {
		scores = append(scores, h.OverallScore)
	}
	latest := history[len(history)-1]
	forecast, err := o.forecaster.PredictFuturePerformance(&latest, scores)
	if err != nil {
		slog.Warn("预测未来表现失败", "project_id", projectID, "error", err)
		forecast = nil
	}
	return trend, forecast, nil
}

// parseTimeRange 解析时间范围字符串为窗口起点
func parseTimeRange(timeRange string) time.Time {
	now := time.Now()

	switch timeRange {
	case "1h":
		return now.Add(-1 * time.Hour)
	case "24h":
		return now.Add(-24 * time.Hour)
	case "7d":
		return now.Add(-7 * 24 * time.Hour)
	case "30d":
		return now.Add(-30 * 24 * time.Hour)
	case "90d":
		return now.Add(-90 * 24 * time.Hour)
	default:
		return now.Add(-7 * 24 * time.Hour) // 默认7天
	}
}

// GetAnalytics 聚合统计：按 hour/day/week/month 分组的平均分、等级分布与改进率
func (o *Orchestrator) GetAnalytics(projectID string, startDate, endDate time.Time, groupBy string) (*models.BenchmarkAnalytics, error) {
	if groupBy == "" {
		groupBy = "day"
	}
	switch groupBy {
	case "hour", "day", "week", "month":
	default:
		return nil, fmt.Errorf("无效的分组粒度: %s", groupBy)
	}
	if endDate.IsZero() {
		endDate = time.Now()
	}
	if startDate.IsZero() {
		startDate = endDate.Add(-30 * 24 * time.Hour)
	}

	query := o.db.Where("timestamp >= ? AND timestamp <= ?", startDate, endDate)
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var benchmarks []models.Benchmark
	if err := query.Order("timestamp ASC").Find(&benchmarks).Error; err != nil {
		return nil, fmt.Errorf("查询基准测试失败: %w", err)
	}

	analytics := &models.BenchmarkAnalytics{
		TotalBenchmarks:   len(benchmarks),
		GradeDistribution: make(map[string]int),
		Buckets:           []models.AnalyticsBucket{},
	}
	if len(benchmarks) == 0 {
		return analytics, nil
	}

	var sum float64
	bucketIndex := make(map[string]int)
	for _, b := range benchmarks {
		sum += b.BlendedScore
		analytics.GradeDistribution[b.Grade]++

		period := formatPeriod(b.Timestamp, groupBy)
		idx, ok := bucketIndex[period]
		if !ok {
			idx = len(analytics.Buckets)
			bucketIndex[period] = idx
			analytics.Buckets = append(analytics.Buckets, models.AnalyticsBucket{
				Period:            period,
				GradeDistribution: make(map[string]int),
			})
		}
		bucket := &analytics.Buckets[idx]
		bucket.Count++
		bucket.AverageScore += b.BlendedScore
		bucket.GradeDistribution[b.Grade]++
	}

	analytics.AverageScore = sum / float64(len(benchmarks))
	for i := range analytics.Buckets {
		analytics.Buckets[i].AverageScore /= float64(analytics.Buckets[i].Count)
	}

	first := benchmarks[0].BlendedScore
	last := benchmarks[len(benchmarks)-1].BlendedScore
	if first != 0 {
		analytics.ImprovementRate = (last - first) / first
	}
	return analytics, nil
}

// formatPeriod 生成分组桶的时间标签
func formatPeriod(ts time.Time, groupBy string) string {
	switch groupBy {
	case "hour":
		return ts.Format("2006-01-02 15:00")
	case "week":
		year, week := ts.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case "month":
		return ts.Format("2006-01")
	default:
		return ts.Format("2006-01-02")
	}
}

// GetLeaderboard 榜单：时间窗口内按项目平均混合评分降序，同分按项目 ID 升序
// metric 非空时改按该指标的档位评分排名，窗口内不含该指标的项目不上榜
func (o *Orchestrator) GetLeaderboard(benchmarkType, metric, timeRange string, limit int) ([]models.LeaderboardEntry, error) {
	if timeRange == "" {
		timeRange = defaultLeaderboardRange
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := o.db.Where("timestamp >= ?", parseTimeRange(timeRange))
	if benchmarkType != "" {
		query = query.Where("benchmark_type = ?", benchmarkType)
	}

	var benchmarks []models.Benchmark
	if err := query.Find(&benchmarks).Error; err != nil {
		return nil, fmt.Errorf("查询基准测试失败: %w", err)
	}

	type agg struct {
		sum   float64
		count int
		last  time.Time
	}
	byProject := make(map[string]*agg)
	for _, b := range benchmarks {
		score := b.BlendedScore
		if metric != "" {
			found := false
			for _, metricScores := range b.MetricScores {
				if s, ok := metricScores[metric]; ok {
					score = s
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}

		a, ok := byProject[b.ProjectID]
		if !ok {
			a = &agg{}
			byProject[b.ProjectID] = a
		}
		a.sum += score
		a.count++
		if b.Timestamp.After(a.last) {
			a.last = b.Timestamp
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(byProject))
	for projectID, a := range byProject {
		average := a.sum / float64(a.count)
		entries = append(entries, models.LeaderboardEntry{
			ProjectID:      projectID,
			AverageScore:   average,
			Grade:          benchmark.GradeForScore(average),
			BenchmarkCount: a.count,
			LastBenchmark:  a.last,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AverageScore != entries[j].AverageScore {
			return entries[i].AverageScore > entries[j].AverageScore
		}
		return entries[i].ProjectID < entries[j].ProjectID
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// BuildImprovementPlan 基于项目最近一次建议生成分阶段改进计划
// focusAreas 非空时只保留命中分类的建议
func (o *Orchestrator) BuildImprovementPlan(req *models.ImprovementPlanRequest) (*models.ImprovementPlan, error) {
	if req == nil || strings.TrimSpace(req.ProjectID) == "" {
		return nil, errors.New("projectId 不能为空")
	}

	recs, err := o.GetRecommendations(req.ProjectID, "", "")
	if err != nil {
		return nil, err
	}

	if len(req.FocusAreas) > 0 {
		focus := make(map[string]bool, len(req.FocusAreas))
		for _, area := range req.FocusAreas {
			focus[area] = true
		}
		filtered := make([]models.Recommendation, 0, len(recs))
		for _, rec := range recs {
			if focus[rec.Category] {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}

	timeline := req.Timeline
	if timeline == "" {
		timeline = "3_months"
	}
	return o.planner.BuildImprovementPlan(req.ProjectID, recs, timeline), nil
}

// CleanupExpiredAnalytics 删除过期分析快照，原始基准测试记录永久保留
func (o *Orchestrator) CleanupExpiredAnalytics() (int64, error) {
	result := o.db.Where("expires_at <= ?", time.Now()).Delete(&models.AnalyticsEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("清理过期分析快照失败: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		analyticsEntriesPurged.Add(float64(result.RowsAffected))
		slog.Info("清理过期分析快照完成", "deleted", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// SystemStatus 返回系统运行状态
func (o *Orchestrator) SystemStatus() (*models.SystemStatus, error) {
	var total int64
	if err := o.db.Model(&models.Benchmark{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("统计基准测试数量失败: %w", err)
	}

	var activeProjects int64
	err := o.db.Model(&models.Benchmark{}).Distinct("project_id").Count(&activeProjects).Error
	if err != nil {
		return nil, fmt.Errorf("统计活跃项目数量失败: %w", err)
	}

	return &models.SystemStatus{
		IsRunning:         o.scheduler.IsRunning(),
		TotalBenchmarks:   total,
		ActiveProjects:    activeProjects,
		PendingBenchmarks: o.inFlight.Load(),
		UptimeSeconds:     time.Since(o.startedAt).Seconds(),
	}, nil
}
