/*
 * @module service/orchestrator/scheduler
 * @description 基准测试定时调度器，负责每小时自动基准测试与每5分钟过期快照清理
 * @architecture 分层架构 - 任务调度层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 调度器启动 -> 定时触发 -> 项目发现 -> 逐项目执行 -> 失败记录 -> 调度器停止
 * @rules 定时任务失败只记录不中断调度；项目锁被占用视为正常跳过
 * @dependencies github.com/robfig/cron/v3
 * @refs service/orchestrator/orchestrator.go, service/metrics_source/
 */

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"benchhub-service/service/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
)

const (
	// 每小时整点自动基准测试
	autoBenchmarkCron = "0 0 * * * *"
	// 每5分钟清理过期分析快照
	cleanupCron = "0 */5 * * * *"

	// 自动基准测试只回看最近有记录的项目
	autoBenchmarkLookback = 7 * 24 * time.Hour
)

var scheduledTaskFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "benchhub_scheduled_task_failures_total",
	Help: "定时任务失败总次数",
}, []string{"task"})

// ProjectLister 项目发现接口，由指标来源实现
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]string, error)
}

// SnapshotPruner 本地快照清理接口，由 MQTT 指标来源实现
type SnapshotPruner interface {
	PruneExpired() int
}

// Scheduler 基准测试定时调度器
type Scheduler struct {
	orchestrator *Orchestrator
	cron         *cron.Cron
	lister       ProjectLister
	pruner       SnapshotPruner
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.Mutex
	started      bool
}

// NewScheduler 创建调度器
func NewScheduler(orchestrator *Orchestrator) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		orchestrator: orchestrator,
		cron:         cron.New(cron.WithSeconds()),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SetProjectLister 设置项目发现来源
func (s *Scheduler) SetProjectLister(lister ProjectLister) {
	s.lister = lister
}

// SetSnapshotPruner 设置本地快照清理器
func (s *Scheduler) SetSnapshotPruner(pruner SnapshotPruner) {
	s.pruner = pruner
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("调度器已经启动")
	}

	_, err := s.cron.AddFunc(autoBenchmarkCron, s.runAutoBenchmark)
	if err != nil {
		return fmt.Errorf("注册自动基准测试任务失败: %w", err)
	}
	_, err = s.cron.AddFunc(cleanupCron, s.runCleanup)
	if err != nil {
		return fmt.Errorf("注册清理任务失败: %w", err)
	}

	s.cron.Start()
	s.started = true
	slog.Info("基准测试调度器已启动", "auto_benchmark_cron", autoBenchmarkCron, "cleanup_cron", cleanupCron)
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.cancel()
	s.cron.Stop()
	s.started = false
	slog.Info("基准测试调度器已停止")
}

// IsRunning 调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// runAutoBenchmark 逐项目执行自动基准测试，单项目失败不影响其他项目
func (s *Scheduler) runAutoBenchmark() {
	projects, err := s.discoverProjects(s.ctx)
	if err != nil {
		slog.Error("发现项目失败", "error", err)
		scheduledTaskFailures.WithLabelValues("auto_benchmark").Inc()
		return
	}
	if len(projects) == 0 {
		slog.Info("没有可执行自动基准测试的项目")
		return
	}

	slog.Info("开始自动基准测试", "projects", len(projects))
	for _, projectID := range projects {
		req := &models.CreateBenchmarkRequest{
			ProjectID:     projectID,
			BenchmarkType: models.BenchmarkTypeComprehensive,
		}
		_, err := s.orchestrator.RunBenchmark(s.ctx, req, TriggerScheduled)
		if errors.Is(err, ErrProjectBusy) {
			slog.Info("项目锁被占用，跳过本轮自动基准测试", "project_id", projectID)
			continue
		}
		if err != nil {
			slog.Error("自动基准测试失败", "project_id", projectID, "error", err)
			scheduledTaskFailures.WithLabelValues("auto_benchmark").Inc()
		}
	}
}

// discoverProjects 优先从指标来源发现项目，失败时回退到数据库内近期有记录的项目
func (s *Scheduler) discoverProjects(ctx context.Context) ([]string, error) {
	if s.lister != nil {
		projects, err := s.lister.ListProjects(ctx)
		if err == nil {
			return projects, nil
		}
		slog.Warn("从指标来源发现项目失败，回退到数据库", "error", err)
	}

	var projects []string
	err := s.orchestrator.db.Model(&models.Benchmark{}).
		Distinct("project_id").
		Where("timestamp >= ?", time.Now().Add(-autoBenchmarkLookback)).
		Order("project_id").
		Pluck("project_id", &projects).Error
	if err != nil {
		return nil, fmt.Errorf("查询近期项目失败: %w", err)
	}
	return projects, nil
}

// runCleanup 清理过期分析快照和本地指标快照
func (s *Scheduler) runCleanup() {
	if _, err := s.orchestrator.CleanupExpiredAnalytics(); err != nil {
		slog.Error("清理过期分析快照失败", "error", err)
		scheduledTaskFailures.WithLabelValues("cleanup").Inc()
	}
	if s.pruner != nil {
		if pruned := s.pruner.PruneExpired(); pruned > 0 {
			slog.Info("清理本地指标快照完成", "pruned", pruned)
		}
	}
}
