/*
 * @module service/metrics_source/provider
 * @description 项目指标来源抽象，负责从监控后端或推送通道拉取原始指标并做数值归一
 * @architecture 策略模式 - 多个指标来源按顺序合并
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 来源查询 -> 数值强制转换 -> 按分类合并
 * @rules 非数值指标直接丢弃并记录告警，不让单个坏值中断整次采集
 * @dependencies github.com/spf13/cast, benchhub-service/service/models
 * @refs backend_provider.go, mqtt_source.go
 */

package metrics_source

import (
	"context"
	"errors"
	"log/slog"

	"benchhub-service/service/models"

	"github.com/spf13/cast"
)

// Provider 项目指标来源
type Provider interface {
	// Name 来源名称，用于日志与状态上报
	Name() string
	// FetchProjectMetrics 拉取指定项目按分类组织的原始指标
	FetchProjectMetrics(ctx context.Context, projectID string) (models.MetricBag, error)
}

// CoerceMetrics 将任意类型的指标值强制转换为浮点数
// 转换失败的指标被丢弃并记录告警
func CoerceMetrics(projectID string, raw map[string]map[string]interface{}) models.MetricBag {
	bag := make(models.MetricBag, len(raw))
	for category, metrics := range raw {
		for name, value := range metrics {
			number, err := cast.ToFloat64E(value)
			if err != nil {
				slog.Warn("丢弃非数值指标",
					"project_id", projectID,
					"category", category,
					"metric", name,
					"value", value)
				continue
			}
			if bag[category] == nil {
				bag[category] = make(map[string]float64)
			}
			bag[category][name] = number
		}
	}
	return bag
}

// NewComposedProvider 组合推送通道和后端接口两个来源
// mqtt 为 nil（未启用推送通道）时只使用后端接口，避免把空来源放进合并链
func NewComposedProvider(mqtt *MQTTMetricsSource, backend Provider) Provider {
	if mqtt == nil {
		return backend
	}
	return NewMultiProvider(mqtt, backend)
}

// MultiProvider 依次查询多个来源并合并结果，后面的来源覆盖前面的同名指标
type MultiProvider struct {
	providers []Provider
}

// NewMultiProvider 创建多来源合并器
func NewMultiProvider(providers ...Provider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

// Name 来源名称
func (p *MultiProvider) Name() string {
	return "multi"
}

// FetchProjectMetrics 合并所有来源的指标，单个来源失败只记录日志
// 所有来源都失败时返回错误
func (p *MultiProvider) FetchProjectMetrics(ctx context.Context, projectID string) (models.MetricBag, error) {
	merged := make(models.MetricBag)
	succeeded := 0
	var lastErr error

	for _, provider := range p.providers {
		bag, err := provider.FetchProjectMetrics(ctx, projectID)
		if err != nil {
			slog.Warn("指标来源查询失败",
				"provider", provider.Name(),
				"project_id", projectID,
				"error", err)
			lastErr = err
			continue
		}
		succeeded++
		for category, metrics := range bag {
			if merged[category] == nil {
				merged[category] = make(map[string]float64, len(metrics))
			}
			for name, value := range metrics {
				merged[category][name] = value
			}
		}
	}

	if succeeded == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, errors.New("没有可用的指标来源")
	}
	return merged, nil
}
