package service

import (
	"context"
	"sync"
	"testing"

	"Gated_Community/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

// fakeStore 在内存存储外包一层，按 key 注入读写错误并记录写入顺序；
// beforeGet/afterGet 在读之前/之后回调，用于编排并发
type fakeStore struct {
	*memory.Store

	mu        sync.Mutex
	getErr    map[string]error
	setErr    map[string]error
	writes    []string
	beforeGet func(key string)
	afterGet  func(key string)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		Store:  memory.NewStore(),
		getErr: make(map[string]error),
		setErr: make(map[string]error),
	}
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.beforeGet != nil {
		s.beforeGet(key)
	}
	s.mu.Lock()
	err := s.getErr[key]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	b, err := s.Store.Get(ctx, key)
	if s.afterGet != nil {
		s.afterGet(key)
	}
	return b, err
}

func (s *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.writes = append(s.writes, key)
	err := s.setErr[key]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, key, value)
}

func (s *fakeStore) put(t *testing.T, key string, value []byte) {
	t.Helper()
	require.NoError(t, s.Store.Set(context.Background(), key, value))
}

func (s *fakeStore) failGet(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr[key] = err
}

func (s *fakeStore) failSet(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr[key] = err
}

func (s *fakeStore) writtenKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, v)
	return p.err
}

func (p *recordingPublisher) published() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.events...)
}
