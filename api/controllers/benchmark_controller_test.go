/*
 * @module api/controllers/benchmark_controller_test
 * @description 基准测试控制器单元测试，覆盖参数校验、成功路径和错误路径
 * @architecture 测试层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 构建内存数据库编排器 -> chi路由分发 -> 断言响应
 * @rules 测试使用SQLite内存数据库，不依赖外部服务
 * @dependencies testutil, service/orchestrator
 * @refs api/controllers/benchmark_controller.go
 */

package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"benchhub-service/service/orchestrator"
	"benchhub-service/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBenchmarkTestRouter(t *testing.T) (*chi.Mux, *testutil.TestDataFactory) {
	t.Helper()

	tdb := testutil.NewTestDB()
	t.Cleanup(func() { tdb.Close() })

	o, err := orchestrator.NewOrchestrator(tdb.DB, nil, nil, nil, nil)
	require.NoError(t, err)

	controller := NewBenchmarkController(o)

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Route("/benchmarks", func(r chi.Router) {
		r.Post("/", controller.RunBenchmark)
		r.Get("/", controller.ListBenchmarks)
		r.Post("/compare", controller.CompareBenchmarks)
		r.Get("/trends", controller.GetTrends)
		r.Get("/recommendations", controller.GetRecommendations)
		r.Post("/improvement-plan", controller.BuildImprovementPlan)
		r.Get("/analytics", controller.GetAnalytics)
		r.Get("/leaderboard", controller.GetLeaderboard)
		r.Get("/status", controller.GetSystemStatus)
	})

	return r, testutil.NewTestDataFactory(tdb.DB)
}

func doJSON(t *testing.T, router *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	helper := testutil.NewHTTPTestHelper()
	req, err := helper.CreateJSONRequest(method, path, body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRunBenchmarkEndpoint(t *testing.T) {
	router, _ := newBenchmarkTestRouter(t)

	body := map[string]interface{}{
		"projectId":     "proj-api",
		"benchmarkType": "performance",
		"metrics": map[string]interface{}{
			"performance": map[string]float64{
				"response_time": 80,
				"throughput":    1200,
			},
		},
	}
	w := doJSON(t, router, http.MethodPost, "/benchmarks", body)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 0, resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	benchmark, ok := data["benchmark"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "proj-api", benchmark["project_id"])
	assert.InDelta(t, 1.0, benchmark["overall_score"], 1e-9)
	assert.Equal(t, "A+", benchmark["grade"])
}

func TestRunBenchmarkEndpoint_Validation(t *testing.T) {
	router, _ := newBenchmarkTestRouter(t)

	tests := []struct {
		name string
		body map[string]interface{}
		msg  string
	}{
		{
			name: "缺少projectId",
			body: map[string]interface{}{"benchmarkType": "performance"},
			msg:  "projectId 不能为空",
		},
		{
			name: "缺少benchmarkType",
			body: map[string]interface{}{"projectId": "proj-1"},
			msg:  "benchmarkType 不能为空",
		},
		{
			name: "无效的benchmarkType",
			body: map[string]interface{}{"projectId": "proj-1", "benchmarkType": "latency"},
			msg:  "无效的基准测试类型",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/benchmarks", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeEnvelope(t, w)
			assert.Equal(t, http.StatusBadRequest, resp.Status)
			assert.Contains(t, resp.Msg, tt.msg)
		})
	}
}

func TestListBenchmarksEndpoint(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)

	for i := 0; i < 3; i++ {
		factory.CreateBenchmark(fmt.Sprintf("proj-%d", i))
	}
	factory.CreateBenchmark("proj-0")

	w := doJSON(t, router, http.MethodGet, "/benchmarks?project_id=proj-0", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 1, resp.Page)

	rows, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 2)

	// include_history=false 只返回最近一条记录
	w = doJSON(t, router, http.MethodGet, "/benchmarks?project_id=proj-0&include_history=false", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows, ok = resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 1)
}

func TestCompareBenchmarksEndpoint(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)

	factory.CreateBenchmark("proj-a", testutil.WithScores(0.9, 0.9))
	factory.CreateBenchmark("proj-b", testutil.WithScores(0.5, 0.5))

	body := map[string]interface{}{
		"projectId":         "proj-a",
		"comparisonTargets": []string{"proj-b", "industry_average"},
	}
	w := doJSON(t, router, http.MethodPost, "/benchmarks/compare", body)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 0, resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	rankings, ok := data["rankings"].([]interface{})
	require.True(t, ok)
	require.Len(t, rankings, 3)

	first, ok := rankings[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "proj-a", first["target"])
	assert.InDelta(t, 1.0, first["rank"], 1e-9)
}

func TestCompareBenchmarksEndpoint_Validation(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)
	factory.CreateBenchmark("proj-a")

	w := doJSON(t, router, http.MethodPost, "/benchmarks/compare",
		map[string]interface{}{"comparisonTargets": []string{"proj-b"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/benchmarks/compare",
		map[string]interface{}{"projectId": "proj-a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/benchmarks/compare",
		map[string]interface{}{"projectId": "proj-missing", "comparisonTargets": []string{"proj-a"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTrendsEndpoint(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)

	now := time.Now()
	factory.CreateBenchmark("proj-trend", testutil.WithScores(0.5, 0.5), testutil.WithTimestamp(now.Add(-2*time.Hour)))
	factory.CreateBenchmark("proj-trend", testutil.WithScores(0.8, 0.8), testutil.WithTimestamp(now.Add(-time.Hour)))

	w := doJSON(t, router, http.MethodGet, "/benchmarks/trends?project_id=proj-trend&time_range=7d", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 0, resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	trend, ok := data["trend"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "improving", trend["trend"])

	w = doJSON(t, router, http.MethodGet, "/benchmarks/trends", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRecommendationsEndpoint(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)

	b := factory.CreateBenchmark("proj-rec")
	factory.CreateRecommendation(b.ID, "proj-rec", testutil.WithRecPriority("high"))
	factory.CreateRecommendation(b.ID, "proj-rec", testutil.WithRecPriority("low"))

	w := doJSON(t, router, http.MethodGet, "/benchmarks/recommendations?project_id=proj-rec&priority=high", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	rows, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 1)

	// 不传项目时跨项目返回最新建议
	w = doJSON(t, router, http.MethodGet, "/benchmarks/recommendations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp = decodeEnvelope(t, w)
	rows, ok = resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 2)

	w = doJSON(t, router, http.MethodGet, "/benchmarks/recommendations?project_id=proj-none", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildImprovementPlanEndpoint(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)

	b := factory.CreateBenchmark("proj-plan")
	factory.CreateRecommendation(b.ID, "proj-plan")

	body := map[string]interface{}{"projectId": "proj-plan", "timeline": "3_months"}
	w := doJSON(t, router, http.MethodPost, "/benchmarks/improvement-plan", body)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "proj-plan", data["project_id"])
	assert.NotEmpty(t, data["phases"])
}

func TestGetAnalyticsEndpoint(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)

	factory.CreateAnalyticsEntry("proj-stat", "bench-1")

	w := doJSON(t, router, http.MethodGet, "/benchmarks/analytics?group_by=day", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 1, data["total_benchmarks"], 1e-9)

	w = doJSON(t, router, http.MethodGet, "/benchmarks/analytics?group_by=quarter", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/benchmarks/analytics?start_date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLeaderboardEndpoint(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)

	factory.CreateBenchmark("proj-a", testutil.WithScores(0.9, 0.95))
	factory.CreateBenchmark("proj-b", testutil.WithScores(0.5, 0.55))

	w := doJSON(t, router, http.MethodGet, "/benchmarks/leaderboard?limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	rows, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 2)

	first, ok := rows[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "proj-a", first["project_id"])
}

func TestGetSystemStatusEndpoint(t *testing.T) {
	router, factory := newBenchmarkTestRouter(t)

	factory.CreateBenchmark("proj-a")

	w := doJSON(t, router, http.MethodGet, "/benchmarks/status", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 1, data["total_benchmarks"], 1e-9)
	assert.Equal(t, false, data["is_running"])
}
