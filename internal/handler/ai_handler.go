package handler

import (
	"net/http"

	"chat-panel-go/pkg/llm"

	"github.com/gin-gonic/gin"
)

// AIHandler 直接暴露 AI 适配器，结果总是一个可展示的字符串。
type AIHandler struct {
	adapter *llm.Adapter
}

// NewAIHandler 创建一个新的 AIHandler。
func NewAIHandler(adapter *llm.Adapter) *AIHandler {
	return &AIHandler{adapter: adapter}
}

// AskRequest 是 Ask 的请求体。
type AskRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Ask 在会话闸门保护下请求一次补全。闸门被占用时返回忙碌提示。
func (h *AIHandler) Ask(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "prompt is required", nil)
		return
	}
	text := h.adapter.Ask(c.Request.Context(), sess.Gate, req.Prompt)
	ok(c, "success", gin.H{"text": text})
}
