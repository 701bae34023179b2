package handler

import (
	"chat-panel-go/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionHandler 负责会话的显式销毁。
type SessionHandler struct {
	store      *session.Store
	cookieName string
}

// NewSessionHandler 创建一个新的 SessionHandler。
func NewSessionHandler(store *session.Store, cookieName string) *SessionHandler {
	return &SessionHandler{store: store, cookieName: cookieName}
}

// Delete 销毁当前会话：身份、对话与通知一并丢弃，并清除 cookie。
func (h *SessionHandler) Delete(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	h.store.Delete(sess.ID)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	ok(c, "session ended", nil)
}
