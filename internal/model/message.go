// Package model 包含了应用的数据模型定义。
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role 标识一条消息的来源，取值为封闭集合。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Valid 判断 role 是否属于 user/assistant/error 之一。
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleError:
		return true
	}
	return false
}

// Label 返回聊天面板中展示的角色名称。
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleError:
		return "Error"
	default:
		return "Assistant"
	}
}

// Message 代表对话记录中的一条消息。创建后 ID、Role、Timestamp 与 Content 均不再修改。
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage 生成一条带有新 ID 和当前时间戳的消息。role 不在封闭集合内属于编程错误，直接 panic。
func NewMessage(role Role, content string) Message {
	if !role.Valid() {
		panic(fmt.Sprintf("model: invalid message role %q", role))
	}
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// HistoryPreview 是侧边栏中展示的一行历史摘要。
type HistoryPreview struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp LocalTime `json:"timestamp"`
}

const previewRunes = 20

// Preview 生成形如 "You: 前二十个字符..." 的摘要。
func (m Message) Preview() HistoryPreview {
	prefix := "AI: "
	if m.Role == RoleUser {
		prefix = "You: "
	}
	runes := []rune(m.Content)
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return HistoryPreview{
		ID:        m.ID,
		Role:      m.Role,
		Text:      prefix + string(runes) + "...",
		Timestamp: LocalTime(m.Timestamp),
	}
}
