/*
 * @module service/benchmark/metric_registry
 * @description 指标注册表，定义各分类下已知指标的方向性、单位和默认权重，以及通用行业标准阈值种子数据
 * @architecture 分层架构 - 领域服务层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 进程启动时加载，运行期只读
 * @rules 方向性为固定闭集：延迟百分位、资源利用率、漏洞/缺陷数、技术债务、重复率、圈复杂度为越低越好，其余越高越好
 * @dependencies benchhub-service/service/models
 * @refs standards_registry.go, engine.go
 */

package benchmark

import "benchhub-service/service/models"

// MetricSpec 指标规格定义
type MetricSpec struct {
	Name          string
	Unit          string // ms/rps/ratio/score/count/hours
	DefaultWeight float64
	LowerIsBetter bool
}

// metricAliases 常见指标别名到规范名的映射
var metricAliases = map[string]string{
	"cpu":         "cpu_usage",
	"memory":      "memory_usage",
	"disk":        "disk_usage",
	"latency":     "response_time",
	"coverage":    "test_coverage",
	"duplication": "code_duplication",
	"complexity":  "cyclomatic_complexity",
}

// metricSpecs 已知指标规格表，未登记的指标默认权重 1、越高越好
var metricSpecs = map[string]MetricSpec{
	// 性能指标
	"response_time": {Name: "response_time", Unit: "ms", DefaultWeight: 2, LowerIsBetter: true},
	"latency_p95":   {Name: "latency_p95", Unit: "ms", DefaultWeight: 1, LowerIsBetter: true},
	"latency_p99":   {Name: "latency_p99", Unit: "ms", DefaultWeight: 1, LowerIsBetter: true},
	"throughput":    {Name: "throughput", Unit: "rps", DefaultWeight: 2},
	"cpu_usage":     {Name: "cpu_usage", Unit: "ratio", DefaultWeight: 1, LowerIsBetter: true},
	"memory_usage":  {Name: "memory_usage", Unit: "ratio", DefaultWeight: 1, LowerIsBetter: true},
	"disk_usage":    {Name: "disk_usage", Unit: "ratio", DefaultWeight: 1, LowerIsBetter: true},
	"error_rate":    {Name: "error_rate", Unit: "ratio", DefaultWeight: 1, LowerIsBetter: true},

	// 质量指标
	"test_coverage":          {Name: "test_coverage", Unit: "ratio", DefaultWeight: 2},
	"code_duplication":       {Name: "code_duplication", Unit: "ratio", DefaultWeight: 1, LowerIsBetter: true},
	"cyclomatic_complexity":  {Name: "cyclomatic_complexity", Unit: "count", DefaultWeight: 1, LowerIsBetter: true},
	"maintainability_index":  {Name: "maintainability_index", Unit: "score", DefaultWeight: 1},
	"documentation_coverage": {Name: "documentation_coverage", Unit: "ratio", DefaultWeight: 1},
	"defect_density":         {Name: "defect_density", Unit: "count", DefaultWeight: 1, LowerIsBetter: true},
	"technical_debt":         {Name: "technical_debt", Unit: "hours", DefaultWeight: 1, LowerIsBetter: true},

	// 安全指标
	"critical_vulnerabilities": {Name: "critical_vulnerabilities", Unit: "count", DefaultWeight: 3, LowerIsBetter: true},
	"high_vulnerabilities":     {Name: "high_vulnerabilities", Unit: "count", DefaultWeight: 2, LowerIsBetter: true},
	"vulnerability_count":      {Name: "vulnerability_count", Unit: "count", DefaultWeight: 2, LowerIsBetter: true},
	"security_score":           {Name: "security_score", Unit: "score", DefaultWeight: 1},
	"dependency_freshness":     {Name: "dependency_freshness", Unit: "ratio", DefaultWeight: 1},
	"secrets_exposure":         {Name: "secrets_exposure", Unit: "count", DefaultWeight: 2, LowerIsBetter: true},

	// 合规指标
	"license_compliance":    {Name: "license_compliance", Unit: "ratio", DefaultWeight: 2},
	"audit_coverage":        {Name: "audit_coverage", Unit: "ratio", DefaultWeight: 1},
	"policy_violations":     {Name: "policy_violations", Unit: "count", DefaultWeight: 1, LowerIsBetter: true},
	"data_privacy_score":    {Name: "data_privacy_score", Unit: "score", DefaultWeight: 1},
	"regulatory_compliance": {Name: "regulatory_compliance", Unit: "ratio", DefaultWeight: 1},
}

// CanonicalMetricName 返回指标规范名
func CanonicalMetricName(name string) string {
	if canonical, ok := metricAliases[name]; ok {
		return canonical
	}
	return name
}

// LookupMetricSpec 查找指标规格，未登记指标返回默认规格（权重 1，越高越好）
func LookupMetricSpec(name string) MetricSpec {
	canonical := CanonicalMetricName(name)
	if spec, ok := metricSpecs[canonical]; ok {
		return spec
	}
	return MetricSpec{Name: canonical, Unit: "ratio", DefaultWeight: 1}
}

// DefaultStandards 通用行业标准阈值种子数据
// 进程初始化时写入标准表（仅当标准表为空）
func DefaultStandards() []models.BenchmarkStandard {
	std := func(category, metric string, excellent, good, average, poor float64) models.BenchmarkStandard {
		spec := LookupMetricSpec(metric)
		return models.BenchmarkStandard{
			Category:      category,
			Metric:        metric,
			Excellent:     excellent,
			Good:          good,
			Average:       average,
			Poor:          poor,
			LowerIsBetter: spec.LowerIsBetter,
			Unit:          spec.Unit,
		}
	}

	return []models.BenchmarkStandard{
		// 性能标准
		std(models.BenchmarkTypePerformance, "response_time", 100, 500, 1000, 3000),
		std(models.BenchmarkTypePerformance, "latency_p95", 200, 800, 2000, 5000),
		std(models.BenchmarkTypePerformance, "latency_p99", 500, 1500, 4000, 10000),
		std(models.BenchmarkTypePerformance, "throughput", 1000, 500, 100, 10),
		std(models.BenchmarkTypePerformance, "cpu_usage", 0.5, 0.7, 0.85, 0.95),
		std(models.BenchmarkTypePerformance, "memory_usage", 0.6, 0.75, 0.85, 0.95),
		std(models.BenchmarkTypePerformance, "disk_usage", 0.6, 0.75, 0.85, 0.95),
		std(models.BenchmarkTypePerformance, "error_rate", 0.001, 0.01, 0.05, 0.1),

		// 质量标准
		std(models.BenchmarkTypeQuality, "test_coverage", 0.9, 0.8, 0.6, 0.4),
		std(models.BenchmarkTypeQuality, "code_duplication", 0.03, 0.05, 0.1, 0.2),
		std(models.BenchmarkTypeQuality, "cyclomatic_complexity", 5, 10, 20, 30),
		std(models.BenchmarkTypeQuality, "maintainability_index", 85, 70, 50, 30),
		std(models.BenchmarkTypeQuality, "documentation_coverage", 0.8, 0.6, 0.4, 0.2),
		std(models.BenchmarkTypeQuality, "defect_density", 0.5, 1, 2, 5),
		std(models.BenchmarkTypeQuality, "technical_debt", 8, 40, 160, 400),

		// 安全标准
		std(models.BenchmarkTypeSecurity, "critical_vulnerabilities", 0, 1, 3, 10),
		std(models.BenchmarkTypeSecurity, "high_vulnerabilities", 2, 5, 15, 30),
		std(models.BenchmarkTypeSecurity, "vulnerability_count", 5, 15, 40, 100),
		std(models.BenchmarkTypeSecurity, "security_score", 90, 80, 60, 40),
		std(models.BenchmarkTypeSecurity, "dependency_freshness", 0.9, 0.75, 0.5, 0.3),
		std(models.BenchmarkTypeSecurity, "secrets_exposure", 0, 1, 2, 5),

		// 合规标准
		std(models.BenchmarkTypeCompliance, "license_compliance", 1.0, 0.95, 0.85, 0.7),
		std(models.BenchmarkTypeCompliance, "audit_coverage", 0.9, 0.75, 0.5, 0.3),
		std(models.BenchmarkTypeCompliance, "policy_violations", 0, 2, 5, 15),
		std(models.BenchmarkTypeCompliance, "data_privacy_score", 90, 80, 60, 40),
		std(models.BenchmarkTypeCompliance, "regulatory_compliance", 0.98, 0.9, 0.75, 0.5),
	}
}
