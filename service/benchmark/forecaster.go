/*
 * @module service/benchmark/forecaster
 * @description 未来表现预测器，默认实现为确定性启发式；接口保持稳定以便替换为真实预测模型
 * @architecture 策略模式 - 可插拔预测策略
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 输入最新基准测试与历史评分 -> 输出三个预测期的评分/置信度/影响因子
 * @rules 固定三个预测期：下月/下季度/明年；启发式增幅 +0.05/+0.15/+0.25，置信度 0.7/0.6/0.5
 * @dependencies benchhub-service/service/models
 * @refs trend_analyzer.go, service/scripting/
 */

package benchmark

import (
	"time"

	"benchhub-service/service/models"
)

// Forecaster 预测策略接口
// 输入为历史评分和最新基准测试，输出三个预测期的结果；调用方不感知具体策略
type Forecaster interface {
	PredictFuturePerformance(b *models.Benchmark, historyScores []float64) (*models.Forecast, error)
}

// HeuristicForecaster 默认的确定性启发式预测器
type HeuristicForecaster struct{}

// NewHeuristicForecaster 创建启发式预测器实例
func NewHeuristicForecaster() *HeuristicForecaster {
	return &HeuristicForecaster{}
}

// PredictFuturePerformance 按固定增幅外推三个预测期
func (f *HeuristicForecaster) PredictFuturePerformance(b *models.Benchmark, historyScores []float64) (*models.Forecast, error) {
	base := b.OverallScore

	return &models.Forecast{
		NextMonth: models.ForecastHorizon{
			PredictedScore: minFloat(base+0.05, 1.0),
			Confidence:     0.7,
			Factors:        forecastFactors(b, "短期改进建议落地"),
		},
		NextQuarter: models.ForecastHorizon{
			PredictedScore: minFloat(base+0.15, 1.0),
			Confidence:     0.6,
			Factors:        forecastFactors(b, "阶段性改进计划完成"),
		},
		NextYear: models.ForecastHorizon{
			PredictedScore: minFloat(base+0.25, 1.0),
			Confidence:     0.5,
			Factors:        forecastFactors(b, "长期架构和流程优化"),
		},
		GeneratedAt: time.Now(),
	}, nil
}

// forecastFactors 生成影响因子列表：预测期主因子加上当前最显著的弱项
func forecastFactors(b *models.Benchmark, primary string) []string {
	factors := []string{primary}
	for _, weakness := range b.Analysis.Weaknesses {
		factors = append(factors, "薄弱分类改进: "+weakness)
	}
	if len(b.Analysis.Weaknesses) == 0 {
		factors = append(factors, "维持现有强项")
	}
	return factors
}
