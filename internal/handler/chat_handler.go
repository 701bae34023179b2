package handler

import (
	"net/http"

	"chat-panel-go/internal/service"
	"chat-panel-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ChatHandler 处理聊天面板的消息提交。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessageRequest 是提交聊天输入的请求体。
type SendMessageRequest struct {
	Message string `json:"message" form:"message"`
}

// SendMessage 提交一条聊天输入。
// 校验失败返回 400，已有请求进行中返回 429，二者都不会改变对话。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warnf("SendMessage: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "Invalid request payload", nil)
		return
	}

	result, err := h.chatService.Submit(c.Request.Context(), sess, req.Message)
	if err != nil {
		if validationFailed(c, err, true) {
			return
		}
		log.Errorf("SendMessage: submit failed for session %s: %v", sess.ID, err)
		fail(c, http.StatusInternalServerError, "Failed to submit message", nil)
		return
	}
	if result.Busy {
		fail(c, http.StatusTooManyRequests, result.BusyMessage, result)
		return
	}
	ok(c, "success", result)
}
