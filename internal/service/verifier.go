package service

import (
	"context"
	"errors"
	"time"

	"Gated_Community/internal/clock"
	"Gated_Community/internal/model"

	"go.uber.org/zap"
)

// DefaultProofLatency 模拟证明计算耗时
const DefaultProofLatency = 2 * time.Second

var (
	ErrNoSession           = errors.New("no session")
	ErrCommunityIDRequired = errors.New("community id required")
)

// Verifier 三步校验：会话 -> 存储可用 -> 证明。
// 目前证明步骤只是固定延迟，之后替换它即可，调用约定不变。
type Verifier struct {
	store   Store
	latency time.Duration
	sleep   func(context.Context, time.Duration) error
	metrics VerifierMetrics
	logger  *zap.Logger
}

func NewVerifier(store Store, latency time.Duration, metrics VerifierMetrics, logger *zap.Logger) *Verifier {
	if latency < 0 {
		latency = DefaultProofLatency
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Verifier{
		store:   store,
		latency: latency,
		sleep:   clock.SleepWithContext,
		metrics: metrics,
		logger:  logger.With(zap.String("component", "verifier")),
	}
}

func (v *Verifier) Verify(ctx context.Context, account, communityID string) (outcome model.VerifyOutcome, err error) {
	started := time.Now()
	defer func() {
		v.metrics.ObserveVerify(string(outcome), started)
	}()

	if account == "" {
		return model.VerifyFailure, ErrNoSession
	}
	if communityID == "" {
		return model.VerifyFailure, ErrCommunityIDRequired
	}
	if !v.store.IsAvailable(ctx) {
		return model.VerifyFailure, ErrStoreUnavailable
	}
	if err := v.prove(ctx, account, communityID); err != nil {
		return model.VerifyFailure, err
	}

	v.logger.Info("access verified", zap.String("account", account), zap.String("community_id", communityID))
	return model.VerifySuccess, nil
}

// prove 占位证明
func (v *Verifier) prove(ctx context.Context, _, _ string) error {
	return v.sleep(ctx, v.latency)
}
