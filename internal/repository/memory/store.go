// Package memory 进程内键值存储，用于本地开发和测试
package memory

import (
	"context"
	"sync"
	"sync/atomic"
)

type Store struct {
	mu          sync.RWMutex
	data        map[string][]byte
	unavailable atomic.Bool
}

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.data[key]
	if len(v) == 0 {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(value) == 0 {
		delete(s.data, key)
		return nil
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

func (s *Store) IsAvailable(context.Context) bool {
	return !s.unavailable.Load()
}

// SetAvailable 切换可用状态
func (s *Store) SetAvailable(ok bool) {
	s.unavailable.Store(!ok)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
