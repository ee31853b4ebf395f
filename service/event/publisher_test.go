/*
 * @module service/event/publisher_test
 * @description 事件发布器单元测试，覆盖事件构造和环境退化行为
 * @architecture 测试层
 * @documentReference ai_docs/test_plan.md
 * @stateFlow 构造基准结果 -> 生成事件 -> 断言字段
 * @rules 未配置Kafka时必须返回空发布器
 * @dependencies testing, stretchr/testify
 */

package event

import (
	"context"
	"testing"
	"time"

	"benchhub-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBenchmarkCompletedEvent(t *testing.T) {
	benchmark := &models.Benchmark{
		ID:            "bm-1",
		ProjectID:     "proj-1",
		BenchmarkType: models.BenchmarkTypePerformance,
		OverallScore:  0.87,
		Grade:         "A",
	}

	event := NewBenchmarkCompletedEvent(benchmark)
	assert.Equal(t, EventTypeBenchmarkCompleted, event.EventType)
	assert.Equal(t, "proj-1", event.ProjectID)
	assert.Equal(t, "bm-1", event.BenchmarkID)
	assert.Equal(t, models.BenchmarkTypePerformance, event.BenchmarkType)
	assert.Equal(t, 0.87, event.OverallScore)
	assert.Equal(t, "A", event.Grade)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Second)
}

func TestNewPublisherFromEnv_NoBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	publisher := NewPublisherFromEnv()
	require.IsType(t, &NoopPublisher{}, publisher)

	// 空发布器不报错
	assert.NoError(t, publisher.PublishBenchmarkCompleted(context.Background(), &models.Benchmark{}))
	assert.NoError(t, publisher.Close())
}

func TestNewKafkaPublisher(t *testing.T) {
	publisher := NewKafkaPublisher([]string{"localhost:9092"}, "benchmark.events")
	require.NotNil(t, publisher.writer)
	assert.Equal(t, "benchmark.events", publisher.topic)
	assert.NoError(t, publisher.Close())
}
