// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"time"

	"chat-panel-go/internal/model"
	"chat-panel-go/internal/validation"
	"chat-panel-go/pkg/events"
	"chat-panel-go/pkg/log"
)

// ErrValidation 是所有表单校验失败的哨兵错误，配合 errors.Is 使用。
var ErrValidation = errors.New("validation failed")

// ValidationError 携带字段级错误，不会造成任何状态变化。
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string { return e.Fields.Error() }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Notifier 是业务层向用户推送横幅通知和滚动事件的能力。
type Notifier interface {
	Notify(sessionID string, kind model.NotificationKind, message string) model.Notification
	ScrollTo(sessionID, messageID string)
}

// sleepCtx 等待 d 或 ctx 结束。
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publish 发送聊天事件，失败只记录日志。
func publish(ctx context.Context, p events.Publisher, ev events.ChatEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), ev); err != nil {
		log.Warnw("发布聊天事件失败", "type", ev.Type, "sessionId", ev.SessionID, "error", err)
	}
}
