package monitor_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"
)

var MetricsBackendUrl = "http://mh1:9090"
var client = &http.Client{
	Timeout: 30 * time.Second,
}

func init() {
	if envUrl := os.Getenv("METRICS_BACKEND_URL"); envUrl != "" {
		MetricsBackendUrl = envUrl
	}
}

// SetMetricsBackendUrl 设置指标后端的 URL（用于测试）
func SetMetricsBackendUrl(url string) {
	MetricsBackendUrl = url
}

// GetMetricsBackendUrl 获取当前指标后端的 URL
func GetMetricsBackendUrl() string {
	return MetricsBackendUrl
}

// queryResponse Prometheus 兼容 API 的响应封装
type queryResponse struct {
	Status string    `json:"status"`
	Data   queryData `json:"data"`
	Error  string    `json:"error"`
}

type queryData struct {
	ResultType model.ValueType `json:"resultType"`
	Result     json.RawMessage `json:"result"`
}

type labelValuesResponse struct {
	Status string            `json:"status"`
	Data   model.LabelValues `json:"data"`
	Error  string            `json:"error"`
}

// Query 执行即时查询，返回向量结果
func Query(ctx context.Context, query string, queryTime time.Time) (model.Vector, error) {
	if query == "" {
		return nil, errors.New("query cannot be empty")
	}

	if queryTime.IsZero() {
		queryTime = time.Now()
	}

	values := url.Values{}
	values.Add("query", query)
	values.Add("time", formatTime(queryTime))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, MetricsBackendUrl+"/api/v1/query", nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.URL.RawQuery = values.Encode()

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	var metricsResp queryResponse
	if err = json.NewDecoder(resp.Body).Decode(&metricsResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	if metricsResp.Status != "success" {
		return nil, fmt.Errorf("查询失败: %s %s", metricsResp.Status, metricsResp.Error)
	}

	if metricsResp.Data.ResultType != model.ValVector {
		return nil, fmt.Errorf("非向量结果类型: %s", metricsResp.Data.ResultType)
	}

	var vector model.Vector
	if err = json.Unmarshal(metricsResp.Data.Result, &vector); err != nil {
		return nil, fmt.Errorf("解析向量结果失败: %w", err)
	}
	return vector, nil
}

func formatTime(t time.Time) string {
	return strconv.FormatFloat(float64(t.Unix()), 'f', -1, 64)
}

// QueryRange 执行区间查询，返回矩阵结果
func QueryRange(ctx context.Context, query string, start, end time.Time, step time.Duration) (model.Matrix, error) {
	if query == "" {
		return nil, errors.New("query cannot be empty")
	}

	if start.IsZero() || end.IsZero() {
		return nil, errors.New("start and end time cannot be zero")
	}

	if start.After(end) {
		return nil, errors.New("start time must be before end time")
	}

	if step <= 0 {
		step = 15 * time.Second // 默认步长15秒
	}

	u, err := url.Parse(MetricsBackendUrl + "/api/v1/query_range")
	if err != nil {
		return nil, fmt.Errorf("解析URL失败: %w", err)
	}

	q := u.Query()
	q.Set("query", query)
	q.Set("start", formatTime(start))
	q.Set("end", formatTime(end))
	q.Set("step", strconv.FormatFloat(step.Seconds(), 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(q.Encode()))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	var metricsResp queryResponse
	if err = json.NewDecoder(resp.Body).Decode(&metricsResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	if metricsResp.Status != "success" {
		return nil, fmt.Errorf("查询失败: %s %s", metricsResp.Status, metricsResp.Error)
	}

	if metricsResp.Data.ResultType != model.ValMatrix {
		return nil, fmt.Errorf("非矩阵结果类型: %s", metricsResp.Data.ResultType)
	}

	var matrix model.Matrix
	if err = json.Unmarshal(metricsResp.Data.Result, &matrix); err != nil {
		return nil, fmt.Errorf("解析矩阵结果失败: %w", err)
	}
	return matrix, nil
}

// LabelValues 获取指定标签的所有值（用于发现带监控数据的项目）
func LabelValues(ctx context.Context, label string) ([]string, error) {
	if label == "" {
		return nil, errors.New("label cannot be empty")
	}

	urlSuffix := "/api/v1/label/" + label + "/values"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, MetricsBackendUrl+urlSuffix, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP请求失败: 状态码=%d", resp.StatusCode)
	}

	var labelResp labelValuesResponse
	if err = json.NewDecoder(resp.Body).Decode(&labelResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	if labelResp.Status != "success" {
		return nil, fmt.Errorf("查询失败: %s %s", labelResp.Status, labelResp.Error)
	}

	values := make([]string, 0, len(labelResp.Data))
	for _, v := range labelResp.Data {
		values = append(values, string(v))
	}
	return values, nil
}
