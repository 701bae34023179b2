package service

import (
	"context"
	"time"

	"chat-panel-go/internal/model"
	"chat-panel-go/internal/session"
	"chat-panel-go/pkg/events"
)

// ConversationService 定义了对话记录的读取与清空。
type ConversationService interface {
	GetMessages(sess *session.Session) []model.Message
	GetHistory(sess *session.Session) []model.HistoryPreview
	Clear(ctx context.Context, sess *session.Session) int
}

type conversationService struct {
	notifier  Notifier
	publisher events.Publisher
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(notifier Notifier, publisher events.Publisher) ConversationService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &conversationService{notifier: notifier, publisher: publisher}
}

// GetMessages 返回会话的完整消息记录，最早的在前。
func (s *conversationService) GetMessages(sess *session.Session) []model.Message {
	return sess.Conversation.Messages()
}

// GetHistory 返回侧边栏使用的消息摘要。
func (s *conversationService) GetHistory(sess *session.Session) []model.HistoryPreview {
	return sess.Conversation.Previews()
}

// Clear 清空对话，返回被清除的消息数。
// 以空的 lastMessageId 推送一次 transcript 事件，页面据此清空消息列表。
func (s *conversationService) Clear(ctx context.Context, sess *session.Session) int {
	n := sess.Conversation.Len()
	sess.Conversation.Clear()
	s.notifier.ScrollTo(sess.ID, "")
	publish(ctx, s.publisher, events.ChatEvent{
		Type:      events.ConversationCleared,
		SessionID: sess.ID,
		Timestamp: time.Now(),
	})
	return n
}
