/*
 * @module service/metrics_source/mqtt_source
 * @description MQTT 推送指标来源，订阅项目指标主题并缓存每个项目的最新快照
 * @architecture 发布订阅模式 - 连接MQTT broker并订阅主题
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow MQTT客户端生命周期：连接 -> 订阅主题 -> 接收消息 -> 更新快照 -> 断开连接
 * @rules 只保留每个项目的最新快照；超过保鲜期的快照视为不可用并被清理
 * @dependencies github.com/eclipse/paho.mqtt.golang, github.com/spf13/cast
 * @refs provider.go
 */

package metrics_source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"benchhub-service/service/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cast"
)

const (
	defaultMetricsTopic = "benchmark/metrics/+"
	defaultSnapshotAge  = 15 * time.Minute
)

// metricsSnapshot 单个项目的最新推送指标
type metricsSnapshot struct {
	metrics    models.MetricBag
	receivedAt time.Time
}

// MQTTMetricsSource MQTT 推送指标来源
// 项目把指标发布到 benchmark/metrics/<projectID>，payload 为分类到指标的 JSON 映射
type MQTTMetricsSource struct {
	client    mqtt.Client
	broker    string
	port      int
	clientID  string
	username  string
	password  string
	topic     string
	qos       byte
	timeout   time.Duration
	keepAlive time.Duration
	maxAge    time.Duration

	mu        sync.RWMutex
	snapshots map[string]metricsSnapshot
	started   bool
}

// NewMQTTMetricsSource 创建MQTT指标来源
func NewMQTTMetricsSource(broker string, port int) *MQTTMetricsSource {
	return &MQTTMetricsSource{
		broker:    broker,
		port:      port,
		clientID:  fmt.Sprintf("benchhub-metrics-%d", time.Now().Unix()),
		topic:     defaultMetricsTopic,
		qos:       0,
		timeout:   30 * time.Second,
		keepAlive: 60 * time.Second,
		maxAge:    defaultSnapshotAge,
		snapshots: make(map[string]metricsSnapshot),
	}
}

// NewMQTTMetricsSourceFromEnv 从环境变量创建MQTT指标来源
// MQTT_BROKER 未设置时返回 nil，表示未启用推送通道
func NewMQTTMetricsSourceFromEnv() *MQTTMetricsSource {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		return nil
	}

	port := 1883
	if p := os.Getenv("MQTT_PORT"); p != "" {
		port = cast.ToInt(p)
	}

	source := NewMQTTMetricsSource(broker, port)
	source.username = os.Getenv("MQTT_USERNAME")
	source.password = os.Getenv("MQTT_PASSWORD")
	if topic := os.Getenv("MQTT_METRICS_TOPIC"); topic != "" {
		source.topic = topic
	}
	return source
}

// Name 来源名称
func (s *MQTTMetricsSource) Name() string {
	return "mqtt"
}

// Start 连接 broker 并订阅指标主题
func (s *MQTTMetricsSource) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", s.broker, s.port))
	opts.SetClientID(s.clientID)
	opts.SetKeepAlive(s.keepAlive)
	opts.SetConnectTimeout(s.timeout)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		slog.Error("MQTT连接丢失，等待自动重连", "error", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		slog.Info("MQTT连接成功", "broker", s.broker, "client_id", s.clientID)
	})

	if s.username != "" {
		opts.SetUsername(s.username)
	}
	if s.password != "" {
		opts.SetPassword(s.password)
	}

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("连接MQTT broker失败: %v", token.Error())
	}

	if token := s.client.Subscribe(s.topic, s.qos, s.messageHandler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("订阅主题 %s 失败: %v", s.topic, token.Error())
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	slog.Info("MQTT指标来源已启动", "broker", s.broker, "topic", s.topic)
	return nil
}

// Stop 取消订阅并断开连接
func (s *MQTTMetricsSource) Stop(ctx context.Context) error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Unsubscribe(s.topic)
		s.client.Disconnect(250)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	slog.Info("MQTT指标来源已停止")
	return nil
}

// messageHandler 处理收到的指标消息
func (s *MQTTMetricsSource) messageHandler(client mqtt.Client, msg mqtt.Message) {
	projectID := projectFromTopic(msg.Topic())
	if projectID == "" {
		slog.Warn("无法从主题解析项目ID，丢弃消息", "topic", msg.Topic())
		return
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		slog.Warn("指标消息解析失败，丢弃", "topic", msg.Topic(), "error", err)
		return
	}

	bag := CoerceMetrics(projectID, raw)
	if len(bag) == 0 {
		slog.Warn("指标消息没有可用数值，丢弃", "topic", msg.Topic())
		return
	}

	s.storeSnapshot(projectID, bag)
}

// storeSnapshot 记录项目最新快照并顺带清理过期条目
func (s *MQTTMetricsSource) storeSnapshot(projectID string, bag models.MetricBag) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[projectID] = metricsSnapshot{metrics: bag, receivedAt: now}
	for id, snapshot := range s.snapshots {
		if now.Sub(snapshot.receivedAt) > s.maxAge {
			delete(s.snapshots, id)
		}
	}
}

// FetchProjectMetrics 返回项目的最新推送快照
// 没有快照或快照过期时返回错误，让上层回退到其他来源
func (s *MQTTMetricsSource) FetchProjectMetrics(ctx context.Context, projectID string) (models.MetricBag, error) {
	s.mu.RLock()
	snapshot, ok := s.snapshots[projectID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("项目 %s 没有推送指标", projectID)
	}
	if time.Since(snapshot.receivedAt) > s.maxAge {
		return nil, fmt.Errorf("项目 %s 的推送指标已过期", projectID)
	}
	return snapshot.metrics, nil
}

// PruneExpired 清理过期快照，返回清理数量
func (s *MQTTMetricsSource) PruneExpired() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, snapshot := range s.snapshots {
		if now.Sub(snapshot.receivedAt) > s.maxAge {
			delete(s.snapshots, id)
			pruned++
		}
	}
	return pruned
}

// SnapshotCount 当前缓存的项目快照数（用于状态上报）
func (s *MQTTMetricsSource) SnapshotCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// IsConnected 检查是否已连接（用于测试）
func (s *MQTTMetricsSource) IsConnected() bool {
	if s.client == nil {
		return false
	}
	return s.client.IsConnected()
}

// projectFromTopic 从主题的最后一段提取项目ID
func projectFromTopic(topic string) string {
	idx := strings.LastIndex(topic, "/")
	if idx < 0 || idx == len(topic)-1 {
		return ""
	}
	return topic[idx+1:]
}
