/*
 * @module api/controllers/benchmark_controller
 * @description 基准测试控制器，提供基准测试执行、历史查询、项目对比、趋势、建议、改进计划、聚合统计和榜单接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow HTTP请求 -> 参数验证 -> 编排器调用 -> 响应返回
 * @rules 参数校验失败返回400，记录不存在返回404，项目锁冲突返回409
 * @dependencies service/orchestrator, service/models
 * @refs api/routes.go
 */

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"benchhub-service/service/models"
	"benchhub-service/service/orchestrator"

	"github.com/go-chi/render"
)

// BenchmarkController 基准测试控制器
type BenchmarkController struct {
	orchestrator *orchestrator.Orchestrator
}

// NewBenchmarkController 创建基准测试控制器
func NewBenchmarkController(o *orchestrator.Orchestrator) *BenchmarkController {
	return &BenchmarkController{orchestrator: o}
}

// RunBenchmark 执行基准测试
// @Summary 执行基准测试
// @Description 对指定项目执行一次基准测试，未提供指标时从外部指标来源采集
// @Description
// @Description **支持的基准测试类型:**
// @Description - performance: 性能
// @Description - quality: 质量
// @Description - security: 安全
// @Description - compliance: 合规
// @Description - comprehensive: 综合（覆盖全部分类）
// @Tags 基准测试
// @Accept json
// @Produce json
// @Param benchmark body models.CreateBenchmarkRequest true "基准测试请求"
// @Success 200 {object} APIResponse{data=models.BenchmarkRunResult} "执行成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 409 {object} APIResponse "项目正在执行基准测试"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /benchmarks [post]
func (c *BenchmarkController) RunBenchmark(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBenchmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	if req.ProjectID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("projectId 不能为空", nil))
		return
	}
	if req.BenchmarkType == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("benchmarkType 不能为空", nil))
		return
	}
	if !models.IsValidBenchmarkType(req.BenchmarkType) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("无效的基准测试类型", nil))
		return
	}

	result, err := c.orchestrator.RunBenchmark(r.Context(), &req, orchestrator.TriggerManual)
	if errors.Is(err, orchestrator.ErrProjectBusy) {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, errorResponse(http.StatusConflict, "项目正在执行基准测试", nil))
		return
	}
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("基准测试执行失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("基准测试执行成功", result))
}

// ListBenchmarks 查询基准测试历史
// @Summary 查询基准测试历史
// @Description 分页查询基准测试历史记录，按时间降序
// @Tags 基准测试
// @Produce json
// @Param project_id query string false "项目ID"
// @Param benchmark_type query string false "基准测试类型"
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param limit query int false "size 的别名"
// @Param include_history query bool false "为 false 时只返回最近一条记录" default(true)
// @Success 200 {object} PaginatedResponse{data=[]models.Benchmark}
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /benchmarks [get]
func (c *BenchmarkController) ListBenchmarks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	if r.URL.Query().Get("include_history") == "false" {
		page, size = 1, 1
	}

	benchmarks, total, err := c.orchestrator.GetBenchmarks(
		r.URL.Query().Get("project_id"),
		r.URL.Query().Get("benchmark_type"),
		page, size)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("查询基准测试历史失败", err))
		return
	}

	render.JSON(w, r, SuccessPaginatedResponse(benchmarks, total, page, size))
}

// CompareBenchmarks 项目对比
// @Summary 项目对比
// @Description 将项目与同行项目或行业平均对比，返回排名、百分位和指标强弱标记
// @Description comparisonTargets 支持项目ID和 industry_average 哨兵值
// @Tags 基准测试
// @Accept json
// @Produce json
// @Param compare body models.CompareBenchmarksRequest true "对比请求"
// @Success 200 {object} APIResponse{data=models.PeerComparisonResult}
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "项目没有基准测试记录"
// @Router /benchmarks/compare [post]
func (c *BenchmarkController) CompareBenchmarks(w http.ResponseWriter, r *http.Request) {
	var req models.CompareBenchmarksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	if req.ProjectID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("projectId 不能为空", nil))
		return
	}
	if len(req.ComparisonTargets) == 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("comparisonTargets 不能为空", nil))
		return
	}

	result, err := c.orchestrator.CompareProjects(&req)
	if errors.Is(err, orchestrator.ErrBenchmarkNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, NotFoundResponse("项目没有基准测试记录", err))
		return
	}
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("项目对比失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("项目对比成功", result))
}

// TrendsResult 趋势查询响应
type TrendsResult struct {
	Trend    *models.TrendResult `json:"trend"`
	Forecast *models.Forecast    `json:"forecast,omitempty"`
}

// GetTrends 趋势分析
// @Summary 趋势分析
// @Description 查询时间窗口内的评分趋势与未来表现预测
// @Tags 基准测试
// @Produce json
// @Param project_id query string true "项目ID"
// @Param benchmark_type query string false "基准测试类型" default(comprehensive)
// @Param time_range query string false "时间范围" Enums(1h,24h,7d,30d,90d) default(7d)
// @Success 200 {object} APIResponse{data=TrendsResult}
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /benchmarks/trends [get]
func (c *BenchmarkController) GetTrends(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("project_id 不能为空", nil))
		return
	}

	trend, forecast, err := c.orchestrator.GetTrends(projectID,
		r.URL.Query().Get("benchmark_type"),
		r.URL.Query().Get("time_range"))
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("趋势分析失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("趋势分析成功", TrendsResult{Trend: trend, Forecast: forecast}))
}

// GetRecommendations 查询改进建议
// @Summary 查询改进建议
// @Description 查询项目最近一次基准测试生成的改进建议，按优先级稳定排序；不传项目时跨项目返回最新建议
// @Tags 基准测试
// @Produce json
// @Param project_id query string false "项目ID"
// @Param category query string false "分类过滤"
// @Param priority query string false "优先级过滤" Enums(critical,high,medium,low,info)
// @Success 200 {object} APIResponse{data=[]models.Recommendation}
// @Failure 404 {object} APIResponse "项目没有基准测试记录"
// @Router /benchmarks/recommendations [get]
func (c *BenchmarkController) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := c.orchestrator.GetRecommendations(r.URL.Query().Get("project_id"),
		r.URL.Query().Get("category"),
		r.URL.Query().Get("priority"))
	if errors.Is(err, orchestrator.ErrBenchmarkNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, NotFoundResponse("项目没有基准测试记录", err))
		return
	}
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("查询改进建议失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("查询改进建议成功", recs))
}

// BuildImprovementPlan 生成改进计划
// @Summary 生成改进计划
// @Description 基于项目最近一次改进建议生成分阶段改进计划
// @Description
// @Description **支持的时间线:**
// @Description - 1_month: 2个阶段，每阶段2周
// @Description - 3_months: 3个阶段，每阶段3周
// @Description - 6_months: 4个阶段，每阶段6周
// @Tags 基准测试
// @Accept json
// @Produce json
// @Param plan body models.ImprovementPlanRequest true "改进计划请求"
// @Success 200 {object} APIResponse{data=models.ImprovementPlan}
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "项目没有基准测试记录"
// @Router /benchmarks/improvement-plan [post]
func (c *BenchmarkController) BuildImprovementPlan(w http.ResponseWriter, r *http.Request) {
	var req models.ImprovementPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	if req.ProjectID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("projectId 不能为空", nil))
		return
	}

	plan, err := c.orchestrator.BuildImprovementPlan(&req)
	if errors.Is(err, orchestrator.ErrBenchmarkNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, NotFoundResponse("项目没有基准测试记录", err))
		return
	}
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("生成改进计划失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("生成改进计划成功", plan))
}

// GetAnalytics 聚合统计
// @Summary 聚合统计
// @Description 按时间粒度分组的平均评分、等级分布与改进率
// @Tags 基准测试
// @Produce json
// @Param project_id query string false "项目ID"
// @Param start_date query string false "起始时间（RFC3339）"
// @Param end_date query string false "结束时间（RFC3339）"
// @Param group_by query string false "分组粒度" Enums(hour,day,week,month) default(day)
// @Success 200 {object} APIResponse{data=models.BenchmarkAnalytics}
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /benchmarks/analytics [get]
func (c *BenchmarkController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	var startDate, endDate time.Time
	var err error

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		startDate, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, BadRequestResponse("无效的起始时间格式", err))
			return
		}
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		endDate, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, BadRequestResponse("无效的结束时间格式", err))
			return
		}
	}

	analytics, err := c.orchestrator.GetAnalytics(
		r.URL.Query().Get("project_id"),
		startDate, endDate,
		r.URL.Query().Get("group_by"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("聚合统计失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("聚合统计成功", analytics))
}

// GetLeaderboard 项目榜单
// @Summary 项目榜单
// @Description 时间窗口内按项目平均混合评分降序的榜单
// @Tags 基准测试
// @Produce json
// @Param category query string false "基准测试类型过滤"
// @Param metric query string false "按指定指标的档位评分排名"
// @Param time_range query string false "时间范围" Enums(1h,24h,7d,30d,90d) default(30d)
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} APIResponse{data=[]models.LeaderboardEntry}
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /benchmarks/leaderboard [get]
func (c *BenchmarkController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := c.orchestrator.GetLeaderboard(
		r.URL.Query().Get("category"),
		r.URL.Query().Get("metric"),
		r.URL.Query().Get("time_range"),
		limit)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("查询榜单失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("查询榜单成功", entries))
}

// GetSystemStatus 系统状态
// @Summary 系统状态
// @Description 返回调度器运行状态、基准测试总数、活跃项目数和运行时长
// @Tags 基准测试
// @Produce json
// @Success 200 {object} APIResponse{data=models.SystemStatus}
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /benchmarks/status [get]
func (c *BenchmarkController) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	status, err := c.orchestrator.SystemStatus()
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("查询系统状态失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("查询系统状态成功", status))
}
