/*
 * @module service/scripting/executor
 * @description Yaegi脚本执行器，支持编译缓存和参数注入，用于运行用户自定义的预测脚本
 * @architecture 工具层 - 脚本执行能力
 * @documentReference ai_docs/benchmark_req.md
 * @stateFlow 脚本哈希 -> 查缓存/编译 -> 调用 Run 入口
 * @rules 脚本必须实现 Run(params map[string]interface{}) (interface{}, error) 入口
 * @dependencies github.com/traefik/yaegi, crypto/sha1, sync
 * @refs forecaster.go
 */

package scripting

import (
	"context"
	"crypto/sha1"
	"fmt"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ScriptExecutor 脚本执行器接口
type ScriptExecutor interface {
	// Execute 执行脚本并返回结果
	Execute(ctx context.Context, script string, params map[string]interface{}) (interface{}, error)
	// Validate 验证脚本语法
	Validate(script string) error
}

// YaegiScriptExecutor Yaegi脚本执行器实现，支持缓存和参数注入
type YaegiScriptExecutor struct {
	mu    sync.RWMutex
	cache map[string]*CompiledScript
}

// CompiledScript 编译后的脚本，保存可执行函数
type CompiledScript struct {
	fn       func(map[string]interface{}) (interface{}, error)
	compiled time.Time // 编译时间
	hash     string    // 脚本哈希
}

// NewYaegiScriptExecutor 创建Yaegi脚本执行器
func NewYaegiScriptExecutor() *YaegiScriptExecutor {
	return &YaegiScriptExecutor{
		cache: make(map[string]*CompiledScript),
	}
}

// Execute 执行脚本（带参数注入和缓存优化）
func (y *YaegiScriptExecutor) Execute(ctx context.Context, script string, params map[string]interface{}) (interface{}, error) {
	// 使用脚本内容的哈希作为缓存key
	hash := fmt.Sprintf("%x", sha1.Sum([]byte(script)))

	// 先查缓存
	y.mu.RLock()
	compiled, ok := y.cache[hash]
	y.mu.RUnlock()

	if !ok {
		// 没有缓存则编译
		var err error
		compiled, err = y.compile(script, hash)
		if err != nil {
			return nil, fmt.Errorf("脚本编译失败: %v", err)
		}

		// 存入缓存
		y.mu.Lock()
		y.cache[hash] = compiled
		y.mu.Unlock()
	}

	// 调用编译后的函数
	return compiled.fn(params)
}

// wrapScript 包装脚本：脚本内容作为 Run 函数的函数体
func wrapScript(script string) string {
	return fmt.Sprintf(`
package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// 必须提供一个 Run 函数作为入口
func Run(params map[string]interface{}) (interface{}, error) {
%s
}
`, script)
}

// compile 编译脚本为可执行函数
func (y *YaegiScriptExecutor) compile(script, hash string) (*CompiledScript, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库失败: %w", err)
	}

	_, err := i.Eval(wrapScript(script))
	if err != nil {
		return nil, fmt.Errorf("脚本编译失败: %w", err)
	}

	// 获取 Run 函数
	v, err := i.Eval("Run")
	if err != nil {
		return nil, fmt.Errorf("脚本缺少 Run 函数: %w", err)
	}

	runFunc, ok := v.Interface().(func(map[string]interface{}) (interface{}, error))
	if !ok {
		return nil, fmt.Errorf("Run 函数签名必须是 func(map[string]interface{}) (interface{}, error)")
	}

	return &CompiledScript{
		fn:       runFunc,
		compiled: time.Now(),
		hash:     hash,
	}, nil
}

// GetCacheStats 获取缓存统计信息
func (y *YaegiScriptExecutor) GetCacheStats() map[string]interface{} {
	y.mu.RLock()
	defer y.mu.RUnlock()

	stats := make(map[string]interface{})
	stats["cache_size"] = len(y.cache)

	if len(y.cache) > 0 {
		oldestTime := time.Now()
		newestTime := time.Time{}

		for _, compiled := range y.cache {
			if compiled.compiled.Before(oldestTime) {
				oldestTime = compiled.compiled
			}
			if compiled.compiled.After(newestTime) {
				newestTime = compiled.compiled
			}
		}

		stats["oldest_compiled"] = oldestTime
		stats["newest_compiled"] = newestTime
	}

	return stats
}

// ClearCache 清理缓存
func (y *YaegiScriptExecutor) ClearCache() {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.cache = make(map[string]*CompiledScript)
}

// Validate 验证脚本语法（快速校验）
func (y *YaegiScriptExecutor) Validate(script string) error {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("加载标准库符号失败: %v", err)
	}

	if _, err := i.Eval(wrapScript(script)); err != nil {
		return fmt.Errorf("脚本语法错误: %v", err)
	}
	return nil
}
