/*
 * @module service/rate_limiter/redis_rate_limiter_test
 * @description Redis限流器单元测试
 * @architecture 测试层
 * @documentReference ai_docs/test_plan.md
 */

package rate_limiter

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortRulesByPriority(t *testing.T) {
	limiter := &RedisRateLimiter{}

	rules := []RateLimitRule{
		{Type: "global", TimeWindow: 60, MaxRequests: 1000},
		{Type: "client", TargetID: "caller-1", TimeWindow: 60, MaxRequests: 10},
		{Type: "project", TargetID: "proj-1", TimeWindow: 60, MaxRequests: 100},
	}

	sorted := limiter.sortRulesByPriority(rules)
	require.Len(t, sorted, 3)
	assert.Equal(t, "client", sorted[0].Type)
	assert.Equal(t, "project", sorted[1].Type)
	assert.Equal(t, "global", sorted[2].Type)

	// 原切片不被修改
	assert.Equal(t, "global", rules[0].Type)
}

func TestBuildRateLimitKey(t *testing.T) {
	limiter := &RedisRateLimiter{}
	window := 60
	currentWindow := time.Now().Unix() / int64(window)

	globalKey := limiter.buildRateLimitKey("global", "", window)
	assert.Equal(t, fmt.Sprintf("benchmark_rate:global:%d", currentWindow), globalKey)

	projectKey := limiter.buildRateLimitKey("project", "proj-1", window)
	assert.Equal(t, fmt.Sprintf("benchmark_rate:project:proj-1:%d", currentWindow), projectKey)

	// 不同时间窗口产生不同的Key
	otherKey := limiter.buildRateLimitKey("project", "proj-1", 3600)
	assert.NotEqual(t, projectKey, otherKey)
	assert.True(t, strings.HasPrefix(otherKey, "benchmark_rate:project:proj-1:"))
}

func TestGetRateLimitTypeName(t *testing.T) {
	limiter := &RedisRateLimiter{}

	assert.Equal(t, "全局", limiter.getRateLimitTypeName("global"))
	assert.Equal(t, "项目", limiter.getRateLimitTypeName("project"))
	assert.Equal(t, "客户端", limiter.getRateLimitTypeName("client"))
	assert.Equal(t, "未知", limiter.getRateLimitTypeName("whatever"))
}

func TestCheckRateLimit_NoRules(t *testing.T) {
	limiter := &RedisRateLimiter{}

	result, err := limiter.CheckRateLimit(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, "none", result.RateLimitType)
	assert.Equal(t, -1, result.Limit)
}
