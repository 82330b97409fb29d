package service

import (
	"sync"
	"time"

	"Gated_Community/internal/model"
)

const (
	DefaultSuccessHold = 2 * time.Second
	DefaultErrorHold   = 3 * time.Second

	subscriberBuffer = 16
)

// StatusTracker 单槽位的操作状态：idle -> pending -> success|error -> idle。
// 每次 Begin 生成新的令牌，过期令牌的结果和自动复位都会被丢弃。
type StatusTracker struct {
	mu          sync.Mutex
	current     model.TxStatus
	token       uint64
	successHold time.Duration
	errorHold   time.Duration
	now         func() time.Time
	afterFunc   func(time.Duration, func())

	subs   map[int]chan model.TxStatus
	nextID int
}

func NewStatusTracker(successHold, errorHold time.Duration) *StatusTracker {
	if successHold <= 0 {
		successHold = DefaultSuccessHold
	}
	if errorHold <= 0 {
		errorHold = DefaultErrorHold
	}
	t := &StatusTracker{
		successHold: successHold,
		errorHold:   errorHold,
		now:         time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		subs: make(map[int]chan model.TxStatus),
	}
	t.current = model.TxStatus{State: model.TxIdle, UpdatedAt: t.now()}
	return t
}

// Begin 任何状态都直接进入 pending，覆盖正在显示的状态
func (t *StatusTracker) Begin(message string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token++
	t.setLocked(model.TxPending, message)
	return t.token
}

func (t *StatusTracker) Succeed(token uint64, message string) bool {
	_, ok := t.resolve(token, model.TxSuccess, message)
	return ok
}

func (t *StatusTracker) Fail(token uint64, message string) bool {
	_, ok := t.resolve(token, model.TxError, message)
	return ok
}

// resolve 返回该操作自己的结果状态；令牌过期时不写入槽位，ok 为 false
func (t *StatusTracker) resolve(token uint64, state model.TxState, message string) (model.TxStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token != t.token || t.current.State != model.TxPending {
		return model.TxStatus{
			State:     state,
			Message:   message,
			Operation: token,
			UpdatedAt: t.now(),
		}, false
	}
	t.setLocked(state, message)
	hold := t.successHold
	if state == model.TxError {
		hold = t.errorHold
	}
	t.afterFunc(hold, func() { t.revert(token) })
	return t.current, true
}

func (t *StatusTracker) revert(token uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token != t.token {
		return
	}
	if t.current.State != model.TxSuccess && t.current.State != model.TxError {
		return
	}
	t.setLocked(model.TxIdle, "")
}

func (t *StatusTracker) Current() model.TxStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Subscribe 订阅状态变化，返回取消函数；订阅者跟不上时丢弃事件
func (t *StatusTracker) Subscribe() (<-chan model.TxStatus, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan model.TxStatus, subscriberBuffer)
	t.subs[id] = ch
	ch <- t.current

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
}

func (t *StatusTracker) setLocked(state model.TxState, message string) {
	t.current = model.TxStatus{
		State:     state,
		Message:   message,
		Operation: t.token,
		UpdatedAt: t.now(),
	}
	for _, ch := range t.subs {
		select {
		case ch <- t.current:
		default:
		}
	}
}
