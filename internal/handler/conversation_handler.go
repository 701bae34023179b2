package handler

import (
	"chat-panel-go/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 处理与对话记录相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetMessages 返回当前会话的全部消息，最早的在前。
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	ok(c, "success", h.service.GetMessages(sess))
}

// GetHistory 返回侧边栏的历史摘要。
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	ok(c, "success", h.service.GetHistory(sess))
}

// ClearMessages 清空当前会话的对话。
func (h *ConversationHandler) ClearMessages(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	n := h.service.Clear(c.Request.Context(), sess)
	ok(c, "conversation cleared", gin.H{"removed": n})
}
