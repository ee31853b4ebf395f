/*
 * @module service/distributed_lock/memory_lock
 * @description 进程内内存锁实现，单实例部署时替代Redis分布式锁
 * @architecture 工具层 - 提供与分布式锁一致的接口
 * @documentReference ai_docs/distributed_lock_design.md
 * @stateFlow 获取锁 -> 执行任务 -> 释放锁/自动过期
 * @rules 只在单实例内有效；过期锁在下次操作时惰性清理
 * @dependencies sync, time
 * @refs redis_lock.go
 */

package distributed_lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errLockNotHeld = errors.New("锁不存在或已过期")

// MemoryLock 进程内锁实现
type MemoryLock struct {
	mu    sync.Mutex
	locks map[string]time.Time // key -> 过期时间
}

// NewMemoryLock 创建内存锁
func NewMemoryLock() *MemoryLock {
	return &MemoryLock{locks: make(map[string]time.Time)}
}

// TryLock 尝试获取锁，已持有且未过期时返回 false
func (m *MemoryLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if expiry, ok := m.locks[key]; ok && now.Before(expiry) {
		return false, nil
	}
	m.locks[key] = now.Add(ttl)
	return true, nil
}

// Unlock 释放锁
func (m *MemoryLock) Unlock(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

// Refresh 刷新锁的过期时间
func (m *MemoryLock) Refresh(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, ok := m.locks[key]; !ok || time.Now().After(expiry) {
		delete(m.locks, key)
		return errLockNotHeld
	}
	m.locks[key] = time.Now().Add(ttl)
	return nil
}

// IsLocked 检查锁是否存在且未过期
func (m *MemoryLock) IsLocked(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.locks[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(m.locks, key)
		return false, nil
	}
	return true, nil
}
