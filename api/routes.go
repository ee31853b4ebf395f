/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs ai_docs/interfaces.md
 */

package api

import (
	"benchhub-service/api/controllers"
	apimiddleware "benchhub-service/api/middleware"
	"benchhub-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Client-ID"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 基准测试
	r.Route("/benchmarks", func(r chi.Router) {
		benchmarkController := controllers.NewBenchmarkController(service.GlobalOrchestrator)

		// 执行接口带限流
		r.With(apimiddleware.RateLimit(service.GlobalRateLimiter)).Post("/", benchmarkController.RunBenchmark)

		r.Get("/", benchmarkController.ListBenchmarks)
		r.Post("/compare", benchmarkController.CompareBenchmarks)
		r.Get("/trends", benchmarkController.GetTrends)
		r.Get("/recommendations", benchmarkController.GetRecommendations)
		r.Post("/improvement-plan", benchmarkController.BuildImprovementPlan)
		r.Get("/analytics", benchmarkController.GetAnalytics)
		r.Get("/leaderboard", benchmarkController.GetLeaderboard)
		r.Get("/status", benchmarkController.GetSystemStatus)
	})

	// 行业标准
	r.Route("/standards", func(r chi.Router) {
		standardsController := controllers.NewStandardsController(service.GlobalOrchestrator.Registry())
		r.Get("/", standardsController.ListStandards)
		r.Post("/", standardsController.CreateStandard)
	})
}
