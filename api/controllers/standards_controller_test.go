/*
 * @module api/controllers/standards_controller_test
 * @description 行业标准控制器单元测试
 * @architecture 测试层
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 构建内存数据库注册表 -> chi路由分发 -> 断言响应
 * @rules 测试使用SQLite内存数据库，不依赖外部服务
 * @dependencies testutil, service/benchmark
 * @refs api/controllers/standards_controller.go
 */

package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"benchhub-service/service/benchmark"
	"benchhub-service/service/models"
	"benchhub-service/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStandardsTestRouter(t *testing.T) (*chi.Mux, *benchmark.StandardsRegistry) {
	t.Helper()

	tdb := testutil.NewTestDB()
	t.Cleanup(func() { tdb.Close() })

	registry := benchmark.NewStandardsRegistry(tdb.DB)
	require.NoError(t, registry.Load())

	controller := NewStandardsController(registry)

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Route("/standards", func(r chi.Router) {
		r.Get("/", controller.ListStandards)
		r.Post("/", controller.CreateStandard)
	})

	return r, registry
}

func TestListStandardsEndpoint(t *testing.T) {
	router, _ := newStandardsTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/standards?category=performance", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Status)

	rows, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, rows)
	for _, row := range rows {
		std, ok := row.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "performance", std["category"])
	}
}

func TestCreateStandardEndpoint(t *testing.T) {
	router, registry := newStandardsTestRouter(t)

	body := models.CreateStandardRequest{
		Category:      "performance",
		Metric:        "p99_latency",
		Excellent:     50,
		Good:          150,
		Average:       400,
		Poor:          1000,
		LowerIsBetter: true,
		Unit:          "ms",
	}
	helper := testutil.NewHTTPTestHelper()
	req, err := helper.CreateJSONRequest(http.MethodPost, "/standards", body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// 新标准立即在注册表中生效
	standards := registry.ListStandards("performance", "p99_latency")
	require.Len(t, standards, 1)
	assert.Equal(t, 50.0, standards[0].Excellent)
	assert.True(t, standards[0].LowerIsBetter)
}

func TestCreateStandardEndpoint_Validation(t *testing.T) {
	router, _ := newStandardsTestRouter(t)

	helper := testutil.NewHTTPTestHelper()
	req, err := helper.CreateJSONRequest(http.MethodPost, "/standards",
		models.CreateStandardRequest{Category: "performance"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}
