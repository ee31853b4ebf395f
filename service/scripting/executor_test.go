/*
 * @module service/scripting/executor_test
 * @description 脚本执行器与脚本化预测器单元测试
 * @architecture 测试层
 * @documentReference ai_docs/test_plan.md
 * @stateFlow 编译脚本 -> 执行 -> 断言结果与缓存
 * @rules 脚本失败时预测器必须回退到启发式结果
 * @dependencies testing, stretchr/testify
 */

package scripting

import (
	"context"
	"testing"

	"benchhub-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoScript = `
	score := params["overallScore"].(float64)
	return score + 0.1, nil
`

func TestYaegiScriptExecutor_Execute(t *testing.T) {
	executor := NewYaegiScriptExecutor()

	result, err := executor.Execute(context.Background(), echoScript, map[string]interface{}{
		"overallScore": 0.7,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, result.(float64), 1e-9)
}

func TestYaegiScriptExecutor_Cache(t *testing.T) {
	executor := NewYaegiScriptExecutor()
	ctx := context.Background()

	_, err := executor.Execute(ctx, echoScript, map[string]interface{}{"overallScore": 0.5})
	require.NoError(t, err)
	_, err = executor.Execute(ctx, echoScript, map[string]interface{}{"overallScore": 0.6})
	require.NoError(t, err)

	// 相同脚本只编译一次
	stats := executor.GetCacheStats()
	assert.Equal(t, 1, stats["cache_size"])

	executor.ClearCache()
	assert.Equal(t, 0, executor.GetCacheStats()["cache_size"])
}

func TestYaegiScriptExecutor_Validate(t *testing.T) {
	executor := NewYaegiScriptExecutor()

	assert.NoError(t, executor.Validate(`return 1.0, nil`))
	assert.Error(t, executor.Validate(`this is not go`))
}

const forecastScript = `
	score := params["overallScore"].(float64)
	horizon := func(bump float64, confidence float64) map[string]interface{} {
		return map[string]interface{}{"score": score + bump, "confidence": confidence}
	}
	return map[string]interface{}{
		"next_month":   horizon(0.02, 0.9),
		"next_quarter": horizon(0.08, 0.8),
		"next_year":    horizon(0.2, 0.6),
	}, nil
`

func TestScriptedForecaster(t *testing.T) {
	forecaster := NewScriptedForecaster(NewYaegiScriptExecutor(), forecastScript)

	b := &models.Benchmark{
		ProjectID:    "proj-1",
		OverallScore: 0.7,
		Grade:        "B",
	}

	forecast, err := forecaster.PredictFuturePerformance(b, []float64{0.6, 0.7})
	require.NoError(t, err)
	assert.InDelta(t, 0.72, forecast.NextMonth.PredictedScore, 1e-9)
	assert.InDelta(t, 0.9, forecast.NextMonth.Confidence, 1e-9)
	assert.InDelta(t, 0.78, forecast.NextQuarter.PredictedScore, 1e-9)
	assert.InDelta(t, 0.9, forecast.NextYear.PredictedScore, 1e-9)
}

func TestScriptedForecaster_FallbackOnBadOutput(t *testing.T) {
	// 脚本输出缺少预测期，应回退到启发式预测
	forecaster := NewScriptedForecaster(NewYaegiScriptExecutor(), `return map[string]interface{}{}, nil`)

	b := &models.Benchmark{ProjectID: "proj-1", OverallScore: 0.7}
	forecast, err := forecaster.PredictFuturePerformance(b, nil)
	require.NoError(t, err)

	// 启发式固定增幅 +0.05/+0.15/+0.25
	assert.InDelta(t, 0.75, forecast.NextMonth.PredictedScore, 1e-9)
	assert.InDelta(t, 0.85, forecast.NextQuarter.PredictedScore, 1e-9)
	assert.InDelta(t, 0.95, forecast.NextYear.PredictedScore, 1e-9)
}

func TestParseForecast_Errors(t *testing.T) {
	_, err := parseForecast("not-a-map")
	assert.Error(t, err)

	_, err = parseForecast(map[string]interface{}{
		"next_month":   map[string]interface{}{"score": "bad", "confidence": 0.5},
		"next_quarter": map[string]interface{}{"score": 0.5, "confidence": 0.5},
		"next_year":    map[string]interface{}{"score": 0.5, "confidence": 0.5},
	})
	assert.Error(t, err)
}
