/*
 * @module api/middleware/rate_limit
 * @description 基准测试执行接口的限流中间件，基于Redis滑动窗口限流器
 * @architecture 中间件模式
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow HTTP请求 -> 提取客户端标识 -> 限流检查 -> 放行或返回429
 * @rules 限流器未配置时直接放行；客户端标识优先取X-Client-ID请求头，缺失时使用远端地址
 * @dependencies service/rate_limiter
 * @refs api/routes.go
 */

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"benchhub-service/service/rate_limiter"

	"github.com/go-chi/render"
)

// 基准测试执行接口的默认限流规则
const (
	globalWindowSeconds = 60
	globalMaxRequests   = 120
	clientWindowSeconds = 60
	clientMaxRequests   = 20
)

// 429响应体，与APIResponse结构保持一致
type rateLimitResponse struct {
	Status int         `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data"`
}

// RateLimit 对基准测试执行接口做全局和客户端两级限流
func RateLimit(limiter *rate_limiter.RedisRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			rules := []rate_limiter.RateLimitRule{
				{Type: "global", TimeWindow: globalWindowSeconds, MaxRequests: globalMaxRequests},
				{Type: "client", TargetID: clientID(r), TimeWindow: clientWindowSeconds, MaxRequests: clientMaxRequests},
			}

			result, err := limiter.CheckRateLimit(r.Context(), rules)
			if err != nil {
				// 限流器故障时放行，避免Redis不可用导致服务整体不可用
				slog.Warn("限流检查失败，放行请求", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

			if !result.Allowed {
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, rateLimitResponse{
					Status: http.StatusTooManyRequests,
					Msg:    result.Message,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientID 提取客户端标识
func clientID(r *http.Request) string {
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
