package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"Gated_Community/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	operation string
	err       error
}

type recordingMetrics struct {
	observed []observation
}

func (m *recordingMetrics) Observe(operation string, err error, _ time.Time) {
	m.observed = append(m.observed, observation{operation: operation, err: err})
}

type failingKV struct {
	*memory.Store
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("read only")
}

func TestObservedStore(t *testing.T) {
	ctx := context.Background()
	m := &recordingMetrics{}
	inner := memory.NewStore()
	s := NewObservedStore(inner, m)

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.True(t, s.IsAvailable(ctx))

	inner.SetAvailable(false)
	assert.False(t, s.IsAvailable(ctx))

	require.Len(t, m.observed, 4)
	assert.Equal(t, observation{operation: "set"}, m.observed[0])
	assert.Equal(t, observation{operation: "get"}, m.observed[1])
	assert.Equal(t, observation{operation: "is_available"}, m.observed[2])
	assert.Equal(t, "is_available", m.observed[3].operation)
	assert.Error(t, m.observed[3].err)
}

func TestObservedStoreRecordsErrors(t *testing.T) {
	m := &recordingMetrics{}
	s := NewObservedStore(failingKV{memory.NewStore()}, m)

	require.Error(t, s.Set(context.Background(), "k", []byte("v")))
	require.Len(t, m.observed, 1)
	assert.Equal(t, "set", m.observed[0].operation)
	assert.Error(t, m.observed[0].err)
}
