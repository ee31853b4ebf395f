package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// 通用 JSON 类型
type JSONB map[string]interface{}

// ScoreMap 用于存储分类评分的 JSONB 类型（分类名 -> 0~1 评分）
type ScoreMap map[string]float64

// MetricBag 用于存储原始指标集合的 JSONB 类型（分类名 -> 指标名 -> 数值）
type MetricBag map[string]map[string]float64

// NestedScoreMap 用于存储分类下每个指标归一化评分的 JSONB 类型
type NestedScoreMap map[string]map[string]float64

func scanJSONBytes(value interface{}) ([]byte, error) {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil, errors.New("类型断言失败: 不是 []byte 或 string")
	}
	return bytes, nil
}

// 实现 Scanner 接口
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, err := scanJSONBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, j)
}

// 实现 Valuer 接口
func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (s *ScoreMap) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, err := scanJSONBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, s)
}

func (s ScoreMap) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (m *MetricBag) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, err := scanJSONBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, m)
}

func (m MetricBag) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (n *NestedScoreMap) Scan(value interface{}) error {
	if value == nil {
		*n = nil
		return nil
	}
	bytes, err := scanJSONBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, n)
}

func (n NestedScoreMap) Value() (driver.Value, error) {
	return json.Marshal(n)
}
