// Package events 定义发送到 Kafka 的聊天事件结构。
package events

import (
	"context"
	"time"
)

// Type 是聊天事件的类型。
type Type string

const (
	MessageAppended     Type = "message_appended"
	ConversationCleared Type = "conversation_cleared"
	SessionClosed       Type = "session_closed"
)

// ChatEvent 描述一次对话状态变化。
type ChatEvent struct {
	Type      Type      `json:"type"`
	SessionID string    `json:"sessionId"`
	MessageID string    `json:"messageId,omitempty"`
	Role      string    `json:"role,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher 发布聊天事件。实现方不得阻塞调用方太久，失败只返回错误由调用方记录。
type Publisher interface {
	Publish(ctx context.Context, event ChatEvent) error
}

// Nop 丢弃所有事件，在未配置 Kafka 时使用。
type Nop struct{}

func (Nop) Publish(context.Context, ChatEvent) error { return nil }
