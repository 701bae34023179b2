// Package gate 提供单飞（single-flight）请求闸门：同一时刻只允许一个外呼请求处于进行中。
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-panel-go/pkg/log"
)

// State 是闸门的两种状态。
type State string

const (
	Idle    State = "idle"
	Pending State = "pending"
)

// BusyMessage 是闸门处于 pending 时返回给用户的固定提示。
const BusyMessage = "Please wait, a previous request is still processing."

// ErrBusy 表示闸门已被占用，本次提交被直接拒绝（不排队、不重试）。
var ErrBusy = errors.New("gate: request already pending")

// Gate 是请求闸门的抽象。
type Gate interface {
	// TryAcquire 尝试从 idle 切换到 pending，已是 pending 时返回 false。
	TryAcquire(ctx context.Context) (bool, error)
	// Release 将闸门置回 idle。
	Release(ctx context.Context) error
	// State 返回当前状态。
	State(ctx context.Context) (State, error)
}

// Renewer 由带租约的闸门实现。Do 在 fn 执行期间按 RenewInterval 续期，
// 外呼耗时超过租约时闸门不会提前回到 idle。
type Renewer interface {
	// Renew 仅在仍由本实例持有时延长租约，返回是否仍持有。
	Renew(ctx context.Context) (bool, error)
	RenewInterval() time.Duration
}

// Factory 为每个会话创建独立的闸门。
type Factory interface {
	New(sessionID string) Gate
}

// Do 在持有闸门的前提下执行 fn。闸门在所有退出路径上都会释放，包括 fn 返回错误或 panic。
func Do(ctx context.Context, g Gate, fn func(ctx context.Context) error) (err error) {
	ok, err := g.TryAcquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire gate: %w", err)
	}
	if !ok {
		return ErrBusy
	}
	defer func() {
		// 释放使用独立的 context，避免请求被取消时闸门永久锁死
		if rerr := g.Release(context.WithoutCancel(ctx)); rerr != nil && err == nil {
			err = fmt.Errorf("release gate: %w", rerr)
		}
	}()
	if r, ok := g.(Renewer); ok {
		stop := keepAlive(ctx, r)
		defer stop()
	}
	return fn(ctx)
}

// keepAlive 启动续期协程，返回的 stop 会等待协程退出，保证续期不会晚于 Release。
func keepAlive(ctx context.Context, r Renewer) (stop func()) {
	interval := r.RenewInterval()
	if interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				held, err := r.Renew(ctx)
				if ctx.Err() != nil {
					return
				}
				if err != nil {
					log.Warnw("闸门租约续期失败", "error", err)
					continue
				}
				if !held {
					log.Warnw("闸门租约已丢失，停止续期")
					return
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
