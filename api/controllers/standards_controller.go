/*
 * @module api/controllers/standards_controller
 * @description 行业标准控制器，提供行业标准的查询和扩展接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow HTTP请求 -> 参数验证 -> 标准注册表调用 -> 响应返回
 * @rules 新增标准同时写入数据库并更新内存注册表，与内置标准同类同名时覆盖
 * @dependencies service/benchmark, service/models
 * @refs api/routes.go
 */

package controllers

import (
	"encoding/json"
	"net/http"

	"benchhub-service/service/benchmark"
	"benchhub-service/service/models"

	"github.com/go-chi/render"
)

// StandardsController 行业标准控制器
type StandardsController struct {
	registry *benchmark.StandardsRegistry
}

// NewStandardsController 创建行业标准控制器
func NewStandardsController(registry *benchmark.StandardsRegistry) *StandardsController {
	return &StandardsController{registry: registry}
}

// ListStandards 查询行业标准
// @Summary 查询行业标准
// @Description 查询当前生效的行业标准，支持按分类和指标过滤
// @Tags 行业标准
// @Produce json
// @Param category query string false "分类过滤"
// @Param metric query string false "指标过滤"
// @Success 200 {object} APIResponse{data=[]models.BenchmarkStandard}
// @Router /standards [get]
func (c *StandardsController) ListStandards(w http.ResponseWriter, r *http.Request) {
	standards := c.registry.ListStandards(
		r.URL.Query().Get("category"),
		r.URL.Query().Get("metric"))

	render.JSON(w, r, SuccessResponse("查询行业标准成功", standards))
}

// CreateStandard 扩展行业标准
// @Summary 扩展行业标准
// @Description 新增或覆盖行业标准，立即对后续基准测试生效
// @Tags 行业标准
// @Accept json
// @Produce json
// @Param standard body models.CreateStandardRequest true "行业标准"
// @Success 200 {object} APIResponse{data=models.BenchmarkStandard}
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /standards [post]
func (c *StandardsController) CreateStandard(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStandardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	if req.Category == "" || req.Metric == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("category 和 metric 不能为空", nil))
		return
	}

	std := &models.BenchmarkStandard{
		Industry:      req.Industry,
		Category:      req.Category,
		Metric:        req.Metric,
		Excellent:     req.Excellent,
		Good:          req.Good,
		Average:       req.Average,
		Poor:          req.Poor,
		LowerIsBetter: req.LowerIsBetter,
		Unit:          req.Unit,
	}
	if err := c.registry.AddStandard(std); err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, InternalErrorResponse("新增行业标准失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("新增行业标准成功", std))
}
