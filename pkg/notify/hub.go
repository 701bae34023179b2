// Package notify 管理每个会话的横幅通知栈，并把通知与对话滚动事件推送给在线的 websocket 客户端。
package notify

import (
	"sync"
	"time"

	"chat-panel-go/internal/model"
	"chat-panel-go/pkg/log"

	"github.com/google/uuid"
)

const (
	EventNotification = "notification"
	EventTranscript   = "transcript"
)

// Event 是推送给客户端的一条消息。
type Event struct {
	Type          string              `json:"type"`
	Notification  *model.Notification `json:"notification,omitempty"`
	LastMessageID string              `json:"lastMessageId,omitempty"`
	Timestamp     int64               `json:"timestamp"`
}

// Options 定义通知的默认展示参数。
type Options struct {
	DefaultDuration time.Duration
	SuccessDuration time.Duration
	ErrorDuration   time.Duration
	Position        string
}

// Hub 保存每个会话尚未消失的通知，新通知叠加在栈顶，过期自动移除。
type Hub struct {
	opts Options
	now  func() time.Time

	mu     sync.Mutex
	stacks map[string][]model.Notification
	subs   map[string]map[chan Event]struct{}
}

// NewHub 创建一个新的 Hub。
func NewHub(opts Options) *Hub {
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = 5 * time.Second
	}
	if opts.Position == "" {
		opts.Position = "top-center"
	}
	return &Hub{
		opts:   opts,
		now:    time.Now,
		stacks: make(map[string][]model.Notification),
		subs:   make(map[string]map[chan Event]struct{}),
	}
}

func (h *Hub) durationFor(kind model.NotificationKind) time.Duration {
	switch kind {
	case model.NotificationSuccess:
		if h.opts.SuccessDuration > 0 {
			return h.opts.SuccessDuration
		}
	case model.NotificationError:
		if h.opts.ErrorDuration > 0 {
			return h.opts.ErrorDuration
		}
	}
	return h.opts.DefaultDuration
}

// Notify 生成一条通知并推送到会话的通知栈，非阻塞。
func (h *Hub) Notify(sessionID string, kind model.NotificationKind, message string) model.Notification {
	now := h.now()
	d := h.durationFor(kind)
	icon, color := model.IconFor(kind)
	n := model.Notification{
		ID:         uuid.NewString(),
		Kind:       kind,
		Message:    message,
		Icon:       icon,
		Color:      color,
		Position:   h.opts.Position,
		DurationMs: d.Milliseconds(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(d),
	}

	h.mu.Lock()
	h.stacks[sessionID] = append(h.prune(sessionID, now), n)
	h.mu.Unlock()

	h.publish(sessionID, Event{Type: EventNotification, Notification: &n, Timestamp: now.UnixMilli()})
	return n
}

// ScrollTo 通知客户端对话已变化，应滚动到 messageID 所在的最新位置。
func (h *Hub) ScrollTo(sessionID, messageID string) {
	h.publish(sessionID, Event{Type: EventTranscript, LastMessageID: messageID, Timestamp: h.now().UnixMilli()})
}

// Active 返回会话中尚未消失的通知，按产生顺序排列。
func (h *Hub) Active(sessionID string) []model.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	live := h.prune(sessionID, h.now())
	out := make([]model.Notification, len(live))
	copy(out, live)
	return out
}

// prune 移除过期通知，调用方需持有锁。
func (h *Hub) prune(sessionID string, now time.Time) []model.Notification {
	stack := h.stacks[sessionID]
	live := stack[:0]
	for _, n := range stack {
		if !n.Expired(now) {
			live = append(live, n)
		}
	}
	if len(live) == 0 {
		delete(h.stacks, sessionID)
		return nil
	}
	h.stacks[sessionID] = live
	return live
}

// Subscribe 为会话注册一个事件通道，返回的函数用于取消订阅。
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan Event]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[sessionID]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(h.subs, sessionID)
				}
			}
			h.mu.Unlock()
		})
	}
}

// Forget 在会话销毁时清理其通知与订阅。
func (h *Hub) Forget(sessionID string) {
	h.mu.Lock()
	delete(h.stacks, sessionID)
	for ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
	h.mu.Unlock()
}

func (h *Hub) publish(sessionID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[sessionID] {
		select {
		case ch <- ev:
		default:
			log.Warnf("通知通道已满，丢弃事件: session=%s type=%s", sessionID, ev.Type)
		}
	}
}
