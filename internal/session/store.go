package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"chat-panel-go/pkg/gate"
	"chat-panel-go/pkg/log"

	"github.com/google/uuid"
)

// ErrNotFound 表示会话不存在或已被销毁。
var ErrNotFound = errors.New("session not found")

// Store 是进程内的会话表，不做任何持久化。
type Store struct {
	gates   gate.Factory
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	onDelete []func(sessionID string)
}

// NewStore 创建会话表；idleTTL<=0 表示不自动回收。
func NewStore(gates gate.Factory, idleTTL time.Duration) *Store {
	return &Store{
		gates:    gates,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// OnDelete 注册会话销毁时的回调，例如清理通知。
func (s *Store) OnDelete(fn func(sessionID string)) {
	s.mu.Lock()
	s.onDelete = append(s.onDelete, fn)
	s.mu.Unlock()
}

// Create 创建一个新会话：无身份、空对话、闸门处于 idle。
func (s *Store) Create() *Session {
	id := uuid.NewString()
	sess := newSession(id, s.gates.New(id), s.now())
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

// Get 返回会话并刷新其活跃时间。
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Delete 销毁会话，对话与身份随之丢弃。
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	hooks := append([]func(string){}, s.onDelete...)
	s.mu.Unlock()
	if ok {
		for _, fn := range hooks {
			fn(id)
		}
	}
	return ok
}

// Len 返回当前会话数量。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep 销毁所有空闲超过 idleTTL 的会话，返回销毁数量。
func (s *Store) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)
	var expired []string
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.Delete(id)
	}
	return len(expired)
}

// StartJanitor 在后台定期回收空闲会话，ctx 结束时退出。
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.idleTTL <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Infof("回收空闲会话 %d 个", n)
				}
			}
		}
	}()
}
