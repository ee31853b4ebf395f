/*
 * @module service/metrics_source/backend_provider
 * @description 监控后端指标来源，通过 Prometheus 兼容即时查询拉取项目指标
 * @architecture 适配器模式 - 封装 monitor_client 为统一的指标来源接口
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 即时查询 -> 按 category/metric 标签分桶 -> 返回指标袋
 * @rules 查询带超时；缺少标签的样本丢弃；项目发现依赖 project 标签
 * @dependencies benchhub-service/monitor_client, github.com/prometheus/common/model
 * @refs provider.go
 */

package metrics_source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"benchhub-service/monitor_client"
	"benchhub-service/service/models"
)

const (
	// 指标约定：后端以 benchmark_metric{project,category,metric} 形式暴露项目指标
	backendMetricName   = "benchmark_metric"
	backendQueryTimeout = 10 * time.Second
)

// BackendProvider 监控后端指标来源
type BackendProvider struct {
	timeout time.Duration
}

// NewBackendProvider 创建监控后端来源
func NewBackendProvider() *BackendProvider {
	return &BackendProvider{timeout: backendQueryTimeout}
}

// Name 来源名称
func (p *BackendProvider) Name() string {
	return "backend"
}

// FetchProjectMetrics 即时查询项目的全部指标样本并按标签分桶
func (p *BackendProvider) FetchProjectMetrics(ctx context.Context, projectID string) (models.MetricBag, error) {
	if projectID == "" {
		return nil, fmt.Errorf("项目ID不能为空")
	}

	queryCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := fmt.Sprintf("%s{project=%q}", backendMetricName, projectID)
	vector, err := monitor_client.Query(queryCtx, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("查询监控后端失败: %w", err)
	}

	bag := make(models.MetricBag)
	for _, sample := range vector {
		category := string(sample.Metric["category"])
		metric := string(sample.Metric["metric"])
		if category == "" || metric == "" {
			slog.Warn("样本缺少 category 或 metric 标签，已丢弃",
				"project_id", projectID,
				"labels", sample.Metric.String())
			continue
		}
		if bag[category] == nil {
			bag[category] = make(map[string]float64)
		}
		bag[category][metric] = float64(sample.Value)
	}
	return bag, nil
}

// ListProjects 发现后端有监控数据的项目列表
func (p *BackendProvider) ListProjects(ctx context.Context) ([]string, error) {
	queryCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return monitor_client.LabelValues(queryCtx, "project")
}
