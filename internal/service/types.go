package service

import (
	"context"
	"time"
)

type (
	// Store 外部不透明键值存储，零长度的值表示不存在
	Store interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Set(ctx context.Context, key string, value []byte) error
		IsAvailable(ctx context.Context) bool
	}

	// EventPublisher kafka 生产者的抽象
	EventPublisher interface {
		Publish(ctx context.Context, key string, v any) error
	}

	RegistryMetrics interface {
		ObserveRegistry(operation string, err error, started time.Time)
	}

	VerifierMetrics interface {
		ObserveVerify(outcome string, started time.Time)
	}
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveRegistry(string, error, time.Time) {}
func (nopMetrics) ObserveVerify(string, time.Time)         {}
