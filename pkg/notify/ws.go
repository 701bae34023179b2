package notify

import (
	"encoding/json"
	"time"

	"chat-panel-go/pkg/log"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Serve 把会话的事件持续写入 websocket，直到连接关闭或会话被销毁。
// 连接建立时先补发仍在展示期内的通知。
func (h *Hub) Serve(conn *websocket.Conn, sessionID string) {
	events, cancel := h.Subscribe(sessionID)
	defer cancel()

	for _, n := range h.Active(sessionID) {
		n := n
		if err := writeEvent(conn, Event{Type: EventNotification, Notification: &n, Timestamp: n.CreatedAt.UnixMilli()}); err != nil {
			log.Warnf("补发通知失败: %v", err)
			return
		}
	}

	// 读循环只用于感知客户端断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"), time.Now().Add(writeWait))
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				log.Warnf("推送事件失败: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}
