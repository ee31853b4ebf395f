/*
 * @module service/event/publisher
 * @description 基准测试事件发布器，把完成的基准测试结果发布到Kafka供下游系统消费
 * @architecture 事件驱动架构 - 业务服务层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 基准测试完成 -> 构造事件 -> 按项目ID分区发布
 * @rules 未配置Kafka时退化为空发布器；发布失败只记录日志不阻断主流程
 * @dependencies github.com/segmentio/kafka-go
 * @refs service/orchestrator/orchestrator.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"benchhub-service/service/models"

	"github.com/segmentio/kafka-go"
)

const (
	defaultEventTopic           = "benchmark.events"
	publishTimeout              = 10 * time.Second
	EventTypeBenchmarkCompleted = "benchmark_completed"
)

// BenchmarkEvent 发布到消息总线的基准测试事件
type BenchmarkEvent struct {
	EventType     string    `json:"event_type"`
	ProjectID     string    `json:"project_id"`
	BenchmarkID   string    `json:"benchmark_id"`
	BenchmarkType string    `json:"benchmark_type"`
	OverallScore  float64   `json:"overall_score"`
	Grade         string    `json:"grade"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher 基准测试事件发布器
type Publisher interface {
	// PublishBenchmarkCompleted 发布基准测试完成事件
	PublishBenchmarkCompleted(ctx context.Context, benchmark *models.Benchmark) error
	// Close 关闭发布器
	Close() error
}

// NewPublisherFromEnv 根据环境创建发布器
// KAFKA_BROKERS 未设置时返回空发布器
func NewPublisherFromEnv() Publisher {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		slog.Info("未配置Kafka，基准测试事件发布已禁用")
		return &NoopPublisher{}
	}

	topic := os.Getenv("KAFKA_EVENT_TOPIC")
	if topic == "" {
		topic = defaultEventTopic
	}

	return NewKafkaPublisher(strings.Split(brokers, ","), topic)
}

// KafkaPublisher Kafka事件发布器
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher 创建Kafka发布器
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
	}

	slog.Info("Kafka事件发布器已创建", "brokers", brokers, "topic", topic)
	return &KafkaPublisher{writer: writer, topic: topic}
}

// PublishBenchmarkCompleted 发布基准测试完成事件
// 以项目ID为消息键，保证同一项目的事件有序
func (p *KafkaPublisher) PublishBenchmarkCompleted(ctx context.Context, benchmark *models.Benchmark) error {
	event := NewBenchmarkCompletedEvent(benchmark)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(benchmark.ProjectID),
		Value: payload,
		Time:  event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}

	slog.Debug("基准测试事件已发布",
		"topic", p.topic,
		"project_id", benchmark.ProjectID,
		"benchmark_id", benchmark.ID)
	return nil
}

// Close 关闭底层writer
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// NewBenchmarkCompletedEvent 从基准测试结果构造完成事件
func NewBenchmarkCompletedEvent(benchmark *models.Benchmark) *BenchmarkEvent {
	return &BenchmarkEvent{
		EventType:     EventTypeBenchmarkCompleted,
		ProjectID:     benchmark.ProjectID,
		BenchmarkID:   benchmark.ID,
		BenchmarkType: benchmark.BenchmarkType,
		OverallScore:  benchmark.OverallScore,
		Grade:         benchmark.Grade,
		Timestamp:     time.Now(),
	}
}

// NoopPublisher 空发布器，未配置消息总线时使用
type NoopPublisher struct{}

// PublishBenchmarkCompleted 什么也不做
func (p *NoopPublisher) PublishBenchmarkCompleted(ctx context.Context, benchmark *models.Benchmark) error {
	return nil
}

// Close 什么也不做
func (p *NoopPublisher) Close() error {
	return nil
}
