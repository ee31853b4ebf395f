/*
 * @module service/benchmark/trend_analyzer
 * @description 趋势分析器，对同一项目同一类型的基准测试历史做最小二乘回归，输出方向、速率、置信度
 * @architecture 分层架构 - 领域服务层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 历史按时间升序输入 -> 回归斜率计算 -> 方向判定 -> 置信度评估
 * @rules 历史少于两个点返回 insufficient_data 哨兵值，不作为错误处理
 * @dependencies benchhub-service/service/models
 * @refs forecaster.go, planner.go
 */

package benchmark

import (
	"benchhub-service/service/models"
)

// 趋势方向常量
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// 方向判定的固定斜率边界
const trendSlopeBound = 0.1

// 置信度公式中防止除零的小量
const trendEpsilon = 1e-9

// TrendAnalyzer 趋势分析器
type TrendAnalyzer struct{}

// NewTrendAnalyzer 创建趋势分析器实例
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{}
}

// AnalyzeTrends 分析基准测试历史趋势
// history 必须按时间升序排列；少于两个点返回哨兵值
func (a *TrendAnalyzer) AnalyzeTrends(history []models.Benchmark) *models.TrendResult {
	scores := make([]float64, 0, len(history))
	for _, b := range history {
		scores = append(scores, b.OverallScore)
	}
	return a.AnalyzeScores(scores)
}

// AnalyzeScores 对评分序列做趋势分析
func (a *TrendAnalyzer) AnalyzeScores(scores []float64) *models.TrendResult {
	n := len(scores)
	if n < 2 {
		return &models.TrendResult{
			Trend:      TrendInsufficientData,
			Direction:  TrendStable,
			Rate:       0,
			Confidence: 0,
			DataPoints: n,
		}
	}

	slope := olsSlope(scores)
	direction := TrendStable
	switch {
	case slope >= trendSlopeBound:
		direction = TrendImproving
	case slope <= -trendSlopeBound:
		direction = TrendDeclining
	}

	mean, variance := meanVariance(scores)
	// 低方差和更多样本提升置信度
	confidence := clamp01((1 - variance/(mean*mean+trendEpsilon)) * minFloat(float64(n)/10, 1))

	return &models.TrendResult{
		Trend:       direction,
		Direction:   direction,
		Rate:        slope,
		Confidence:  confidence,
		Improvement: scores[n-1] - scores[0],
		DataPoints:  n,
	}
}

// olsSlope 普通最小二乘回归斜率（评分对序号）
func olsSlope(scores []float64) float64 {
	n := float64(len(scores))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range scores {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func meanVariance(scores []float64) (float64, float64) {
	n := float64(len(scores))
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / n

	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= n
	return mean, variance
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
