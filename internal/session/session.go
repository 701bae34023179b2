// Package session 管理浏览器会话：每个会话拥有自己的身份信息、对话记录与请求闸门。
package session

import (
	"sync"
	"time"

	"chat-panel-go/internal/conversation"
	"chat-panel-go/internal/model"
	"chat-panel-go/pkg/gate"
)

// Session 是一次浏览器会话，对应原先“页面刷新前”的全部状态。
type Session struct {
	ID           string
	Conversation *conversation.Conversation
	Gate         gate.Gate
	CreatedAt    time.Time

	mu       sync.RWMutex
	identity *model.Identity
	lastSeen time.Time
}

func newSession(id string, g gate.Gate, now time.Time) *Session {
	return &Session{
		ID:           id,
		Conversation: conversation.New(),
		Gate:         g,
		CreatedAt:    now,
		lastSeen:     now,
	}
}

// Identity 返回当前登录的身份，未登录时 ok 为 false。
func (s *Session) Identity() (model.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return model.Identity{}, false
	}
	return *s.identity, true
}

// SignIn 设置当前身份，覆盖之前的身份。
func (s *Session) SignIn(id model.Identity) {
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen 返回会话最近一次被访问的时间。
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
