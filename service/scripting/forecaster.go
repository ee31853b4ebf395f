/*
 * @module service/scripting/forecaster
 * @description 脚本化预测器，用用户自定义Go脚本替换默认启发式预测，脚本失败时回退
 * @architecture 策略模式 - 装饰默认预测器
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 注入评分参数 -> 执行脚本 -> 解析三个预测期 -> 失败回退启发式
 * @rules 脚本输出必须是 next_month/next_quarter/next_year 到 score/confidence 的映射
 * @dependencies benchhub-service/service/benchmark, github.com/spf13/cast
 * @refs executor.go
 */

package scripting

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"benchhub-service/service/benchmark"
	"benchhub-service/service/models"

	"github.com/spf13/cast"
)

// ScriptedForecaster 基于用户脚本的预测器
// 脚本接收 params: projectId/overallScore/grade/categoryScores/historyScores，
// 返回 map[string]interface{}，键为 next_month/next_quarter/next_year，
// 值为含 score 和 confidence 的映射，可选 factors 字符串列表
type ScriptedForecaster struct {
	executor ScriptExecutor
	script   string
	fallback benchmark.Forecaster
}

// NewScriptedForecaster 创建脚本化预测器
func NewScriptedForecaster(executor ScriptExecutor, script string) *ScriptedForecaster {
	return &ScriptedForecaster{
		executor: executor,
		script:   script,
		fallback: benchmark.NewHeuristicForecaster(),
	}
}

// NewForecasterFromEnv 根据环境选择预测器
// FORECAST_SCRIPT 配置了合法脚本时使用脚本化预测器，否则使用启发式
func NewForecasterFromEnv() benchmark.Forecaster {
	script := os.Getenv("FORECAST_SCRIPT")
	if script == "" {
		return benchmark.NewHeuristicForecaster()
	}

	executor := NewYaegiScriptExecutor()
	if err := executor.Validate(script); err != nil {
		slog.Error("预测脚本校验失败，回退到启发式预测器", "error", err)
		return benchmark.NewHeuristicForecaster()
	}

	slog.Info("已启用脚本化预测器")
	return NewScriptedForecaster(executor, script)
}

// PredictFuturePerformance 执行脚本生成预测，任何失败都回退到启发式预测器
func (f *ScriptedForecaster) PredictFuturePerformance(b *models.Benchmark, historyScores []float64) (*models.Forecast, error) {
	params := map[string]interface{}{
		"projectId":      b.ProjectID,
		"overallScore":   b.OverallScore,
		"grade":          b.Grade,
		"categoryScores": map[string]float64(b.CategoryScores),
		"historyScores":  historyScores,
	}

	result, err := f.executor.Execute(context.Background(), f.script, params)
	if err != nil {
		slog.Warn("预测脚本执行失败，回退到启发式预测器", "project_id", b.ProjectID, "error", err)
		return f.fallback.PredictFuturePerformance(b, historyScores)
	}

	forecast, err := parseForecast(result)
	if err != nil {
		slog.Warn("预测脚本输出解析失败，回退到启发式预测器", "project_id", b.ProjectID, "error", err)
		return f.fallback.PredictFuturePerformance(b, historyScores)
	}
	return forecast, nil
}

// parseForecast 解析脚本输出为预测结果
func parseForecast(result interface{}) (*models.Forecast, error) {
	horizons, err := cast.ToStringMapE(result)
	if err != nil {
		return nil, fmt.Errorf("脚本输出不是映射: %w", err)
	}

	forecast := &models.Forecast{GeneratedAt: time.Now()}
	targets := map[string]*models.ForecastHorizon{
		"next_month":   &forecast.NextMonth,
		"next_quarter": &forecast.NextQuarter,
		"next_year":    &forecast.NextYear,
	}

	for key, target := range targets {
		raw, ok := horizons[key]
		if !ok {
			return nil, fmt.Errorf("脚本输出缺少预测期 %s", key)
		}

		fields, err := cast.ToStringMapE(raw)
		if err != nil {
			return nil, fmt.Errorf("预测期 %s 不是映射: %w", key, err)
		}

		score, err := cast.ToFloat64E(fields["score"])
		if err != nil {
			return nil, fmt.Errorf("预测期 %s 的 score 无效: %w", key, err)
		}
		confidence, err := cast.ToFloat64E(fields["confidence"])
		if err != nil {
			return nil, fmt.Errorf("预测期 %s 的 confidence 无效: %w", key, err)
		}

		target.PredictedScore = clamp01(score)
		target.Confidence = clamp01(confidence)
		if factors, ok := fields["factors"]; ok {
			target.Factors = cast.ToStringSlice(factors)
		}
	}
	return forecast, nil
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
