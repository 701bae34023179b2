// Package conversation 保存单个会话内按时间排序的消息记录。
package conversation

import (
	"sync"

	"chat-panel-go/internal/model"
)

// Conversation 是有序的消息序列，插入顺序即展示顺序（最早的在前）。
// 只存在于内存中，随会话一起销毁。
type Conversation struct {
	mu       sync.RWMutex
	messages []model.Message
}

// New 创建一个空的对话。
func New() *Conversation {
	return &Conversation{}
}

// Append 把消息追加到末尾，不去重、不限长。
func (c *Conversation) Append(msg model.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// Clear 清空对话。
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

// Messages 返回消息的快照副本。
func (c *Conversation) Messages() []model.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len 返回消息条数。
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last 返回最新的一条消息。
func (c *Conversation) Last() (model.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return model.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Previews 返回侧边栏使用的历史摘要。
func (c *Conversation) Previews() []model.HistoryPreview {
	msgs := c.Messages()
	out := make([]model.HistoryPreview, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Preview())
	}
	return out
}
