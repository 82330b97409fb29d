// Package clock 时间相关的小工具
package clock

import (
	"context"
	"time"
)

// SleepWithContext 等待 d，context 结束时提前返回 ctx.Err()
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
