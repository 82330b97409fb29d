package repository

import (
	"context"
	"errors"
	"time"
)

var errUnavailable = errors.New("unavailable")

type (
	KV interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Set(ctx context.Context, key string, value []byte) error
		IsAvailable(ctx context.Context) bool
	}

	StoreMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// ObservedStore 给任意后端加上 prometheus 指标
type ObservedStore struct {
	store   KV
	metrics StoreMetrics
}

func NewObservedStore(store KV, metrics StoreMetrics) *ObservedStore {
	return &ObservedStore{
		store:   store,
		metrics: metrics,
	}
}

func (s *ObservedStore) Get(ctx context.Context, key string) (b []byte, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("get", err, started)
	}()
	return s.store.Get(ctx, key)
}

func (s *ObservedStore) Set(ctx context.Context, key string, value []byte) (err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("set", err, started)
	}()
	return s.store.Set(ctx, key, value)
}

func (s *ObservedStore) IsAvailable(ctx context.Context) bool {
	started := time.Now()
	ok := s.store.IsAvailable(ctx)
	var err error
	if !ok {
		err = errUnavailable
	}
	s.metrics.Observe("is_available", err, started)
	return ok
}
