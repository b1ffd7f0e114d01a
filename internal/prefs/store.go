package prefs

import (
	"context"
	"sync"
)

// Store 偏好记录所在的键值存储
type Store interface {
	// GetWithDefault 读取键值，不存在时返回 defaultValue
	GetWithDefault(ctx context.Context, key, defaultValue string) string
	// Set 写入单个键
	Set(ctx context.Context, key, value string) error
	// SetMultiple 原子地写入多个键
	SetMultiple(ctx context.Context, kvs map[string]string) error
}

// MemoryStore 进程内存储，用于测试和 --ephemeral 运行
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) GetWithDefault(_ context.Context, key, defaultValue string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.data[key]; ok {
		return v
	}
	return defaultValue
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) SetMultiple(_ context.Context, kvs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range kvs {
		s.data[k] = v
	}
	return nil
}

// GetAll 返回全部键值
func (s *MemoryStore) GetAll(context.Context) (map[string]string, error) {
	return s.Snapshot(), nil
}

// Snapshot 返回当前内容的拷贝
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}
