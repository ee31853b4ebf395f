/*
 * @module service/orchestrator/scheduler_test
 * @description 定时调度器单元测试
 * @architecture 测试层
 * @documentReference ai_docs/test_plan.md
 * @stateFlow 调度器构造 -> 任务函数直接调用 -> 结果断言
 * @rules 直接调用任务函数验证行为，不等待 cron 触发
 * @dependencies testify, testutil
 * @refs service/orchestrator/scheduler.go
 */

package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"benchhub-service/service/models"
	"benchhub-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	projects []string
	err      error
}

func (s *stubLister) ListProjects(ctx context.Context) ([]string, error) {
	return s.projects, s.err
}

type stubPruner struct {
	pruned int
	calls  int
}

func (s *stubPruner) PruneExpired() int {
	s.calls++
	return s.pruned
}

func TestSchedulerStartStop(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	scheduler := o.Scheduler()

	require.NoError(t, scheduler.Start())
	assert.True(t, scheduler.IsRunning())

	// 重复启动报错
	assert.Error(t, scheduler.Start())

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())

	// 重复停止不报错
	scheduler.Stop()
}

func TestDiscoverProjects_FromLister(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	scheduler := o.Scheduler()
	scheduler.SetProjectLister(&stubLister{projects: []string{"proj-1", "proj-2"}})

	projects, err := scheduler.discoverProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-1", "proj-2"}, projects)
}

func TestDiscoverProjects_FallbackToDatabase(t *testing.T) {
	o, factory := newTestOrchestrator(t)
	scheduler := o.Scheduler()
	scheduler.SetProjectLister(&stubLister{err: errors.New("指标来源不可用")})

	factory.CreateBenchmark("proj-b", testutil.WithTimestamp(time.Now().Add(-time.Hour)))
	factory.CreateBenchmark("proj-a", testutil.WithTimestamp(time.Now().Add(-2*time.Hour)))
	// 回看窗口之外的项目不参与自动基准测试
	factory.CreateBenchmark("proj-old", testutil.WithTimestamp(time.Now().Add(-8*24*time.Hour)))

	projects, err := scheduler.discoverProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-a", "proj-b"}, projects)
}

func TestRunAutoBenchmark(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	scheduler := o.Scheduler()
	scheduler.SetProjectLister(&stubLister{projects: []string{"proj-1", "proj-2"}})

	scheduler.runAutoBenchmark()

	// 每个项目各产生一条 comprehensive 记录
	var count int64
	o.db.Model(&models.Benchmark{}).Where("benchmark_type = ?", models.BenchmarkTypeComprehensive).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestRunAutoBenchmark_SkipsLockedProject(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	scheduler := o.Scheduler()
	scheduler.SetProjectLister(&stubLister{projects: []string{"proj-1"}})

	ctx := context.Background()
	locked, err := o.lock.TryLock(ctx, "proj-1", time.Minute)
	require.NoError(t, err)
	require.True(t, locked)
	defer o.lock.Unlock(ctx, "proj-1")

	scheduler.runAutoBenchmark()

	var count int64
	o.db.Model(&models.Benchmark{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRunCleanup(t *testing.T) {
	o, factory := newTestOrchestrator(t)
	scheduler := o.Scheduler()

	pruner := &stubPruner{pruned: 2}
	scheduler.SetSnapshotPruner(pruner)

	factory.CreateAnalyticsEntry("proj-1", "bm-1", testutil.WithExpiresAt(time.Now().Add(-time.Hour)))
	factory.CreateAnalyticsEntry("proj-1", "bm-2", testutil.WithExpiresAt(time.Now().Add(time.Hour)))

	scheduler.runCleanup()

	var remaining int64
	o.db.Model(&models.AnalyticsEntry{}).Count(&remaining)
	assert.Equal(t, int64(1), remaining)
	assert.Equal(t, 1, pruner.calls)
}
