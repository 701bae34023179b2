package handler

import (
	"net/http"

	"chat-panel-go/internal/session"
	"chat-panel-go/pkg/log"
	"chat-panel-go/pkg/notify"
	"chat-panel-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// NotificationHandler 提供横幅通知的查询与 websocket 推送。
type NotificationHandler struct {
	hub        *notify.Hub
	store      *session.Store
	jwtManager *token.JWTManager
}

// NewNotificationHandler 创建一个新的 NotificationHandler。
func NewNotificationHandler(hub *notify.Hub, store *session.Store, jwtManager *token.JWTManager) *NotificationHandler {
	return &NotificationHandler{hub: hub, store: store, jwtManager: jwtManager}
}

// List 返回当前会话中仍在展示期内的通知。
func (h *NotificationHandler) List(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	ok(c, "success", h.hub.Active(sess.ID))
}

// Handle 处理一个传入的 WebSocket 连接，token 为会话 token。
func (h *NotificationHandler) Handle(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		fail(c, http.StatusUnauthorized, "无效的 token", nil)
		return
	}
	sess, err := h.store.Get(claims.SessionID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "会话不存在或已过期", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，会话: %s", sess.ID)
	h.hub.Serve(conn, sess.ID)
	log.Infof("WebSocket 连接已关闭，会话: %s", sess.ID)
}
