package service

import (
	"testing"
	"time"

	"Gated_Community/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduled struct {
	after time.Duration
	fire  func()
}

// manualTracker 复位定时器由测试手动触发
func manualTracker() (*StatusTracker, *[]scheduled) {
	t := NewStatusTracker(0, 0)
	var timers []scheduled
	t.afterFunc = func(d time.Duration, f func()) {
		timers = append(timers, scheduled{after: d, fire: f})
	}
	return t, &timers
}

func TestStatusTrackerLifecycle(t *testing.T) {
	tr, timers := manualTracker()
	assert.Equal(t, model.TxIdle, tr.Current().State)

	op := tr.Begin("working")
	assert.Equal(t, model.TxPending, tr.Current().State)
	assert.Equal(t, "working", tr.Current().Message)
	assert.Equal(t, op, tr.Current().Operation)

	require.True(t, tr.Succeed(op, "done"))
	assert.Equal(t, model.TxSuccess, tr.Current().State)
	require.Len(t, *timers, 1)
	assert.Equal(t, DefaultSuccessHold, (*timers)[0].after)

	(*timers)[0].fire()
	assert.Equal(t, model.TxIdle, tr.Current().State)
	assert.Empty(t, tr.Current().Message)
}

func TestStatusTrackerErrorHold(t *testing.T) {
	tr, timers := manualTracker()
	op := tr.Begin("working")
	require.True(t, tr.Fail(op, "boom"))

	assert.Equal(t, model.TxError, tr.Current().State)
	require.Len(t, *timers, 1)
	assert.Equal(t, DefaultErrorHold, (*timers)[0].after)
}

func TestStatusTrackerSupersession(t *testing.T) {
	tr, timers := manualTracker()

	first := tr.Begin("first")
	require.True(t, tr.Succeed(first, "first done"))

	second := tr.Begin("second")
	assert.Greater(t, second, first)
	assert.Equal(t, model.TxPending, tr.Current().State)

	// 第一个操作的自动复位已过期，必须被忽略
	(*timers)[0].fire()
	assert.Equal(t, model.TxPending, tr.Current().State)
	assert.Equal(t, "second", tr.Current().Message)

	require.True(t, tr.Fail(second, "second failed"))
	assert.Equal(t, model.TxError, tr.Current().State)
	assert.Equal(t, second, tr.Current().Operation)

	(*timers)[1].fire()
	assert.Equal(t, model.TxIdle, tr.Current().State)
}

func TestStatusTrackerIgnoresStaleResolution(t *testing.T) {
	tr, timers := manualTracker()

	first := tr.Begin("first")
	second := tr.Begin("second")

	assert.False(t, tr.Succeed(first, "late"))
	assert.Equal(t, model.TxPending, tr.Current().State)
	assert.Equal(t, second, tr.Current().Operation)
	assert.Empty(t, *timers)

	require.True(t, tr.Succeed(second, "ok"))
	assert.False(t, tr.Fail(second, "twice"), "already resolved")
	assert.Equal(t, model.TxSuccess, tr.Current().State)
}

func TestStatusTrackerBeginWhilePending(t *testing.T) {
	tr, _ := manualTracker()
	tr.Begin("a")
	op := tr.Begin("b")
	assert.Equal(t, model.TxStatus{State: model.TxPending, Message: "b", Operation: op, UpdatedAt: tr.Current().UpdatedAt}, tr.Current())
}

func TestStatusTrackerRealTimers(t *testing.T) {
	tr := NewStatusTracker(20*time.Millisecond, 200*time.Millisecond)

	first := tr.Begin("first")
	tr.Succeed(first, "ok")
	second := tr.Begin("second")
	tr.Fail(second, "bad")

	// 第一个复位在 20ms 触发时应被丢弃，错误状态保持到 200ms
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, model.TxError, tr.Current().State)

	assert.Eventually(t, func() bool {
		return tr.Current().State == model.TxIdle
	}, time.Second, 5*time.Millisecond)
}

func TestStatusTrackerSubscribe(t *testing.T) {
	tr, timers := manualTracker()
	ch, cancel := tr.Subscribe()

	initial := <-ch
	assert.Equal(t, model.TxIdle, initial.State)

	op := tr.Begin("x")
	tr.Succeed(op, "y")
	(*timers)[0].fire()

	var states []model.TxState
	for i := 0; i < 3; i++ {
		states = append(states, (<-ch).State)
	}
	assert.Equal(t, []model.TxState{model.TxPending, model.TxSuccess, model.TxIdle}, states)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	tr.Begin("after cancel")
}

func TestStatusTrackerStaleResolveReportsOwnStatus(t *testing.T) {
	tr, timers := manualTracker()
	first := tr.Begin("first")
	second := tr.Begin("second")

	own, ok := tr.resolve(first, model.TxError, "first failed")
	assert.False(t, ok)
	assert.Equal(t, model.TxError, own.State)
	assert.Equal(t, "first failed", own.Message)
	assert.Equal(t, first, own.Operation)
	assert.Equal(t, "second", tr.Current().Message)
	assert.Empty(t, *timers, "stale result schedules nothing")

	own, ok = tr.resolve(second, model.TxSuccess, "second done")
	require.True(t, ok)
	assert.Equal(t, own, tr.Current())
}
