// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"chat-panel-go/internal/session"
	"chat-panel-go/pkg/log"
	"chat-panel-go/pkg/token"

	"github.com/gin-gonic/gin"
)

const (
	// ContextKeySession 是 gin 上下文中保存当前会话的键。
	ContextKeySession = "session"
	// ContextKeySessionToken 是 gin 上下文中保存会话 token 的键，页面用它建立 websocket 连接。
	ContextKeySessionToken = "sessionToken"
)

// SessionMiddleware 为每个请求绑定一个会话。
// 它依次从 cookie 和 Authorization 头中提取 token；token 无效或会话已被回收时创建新会话并下发 cookie。
func SessionMiddleware(jwtManager *token.JWTManager, store *session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c, cookieName)

		var sess *session.Session
		if tokenString != "" {
			if claims, err := jwtManager.VerifyToken(tokenString); err == nil {
				sess, _ = store.Get(claims.SessionID)
			}
		}

		if sess == nil {
			sess = store.Create()
			var err error
			tokenString, err = jwtManager.GenerateToken(sess.ID)
			if err != nil {
				log.Error("签发会话 token 失败", err)
				store.Delete(sess.ID)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法创建会话", "data": nil})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, tokenString, int(jwtManager.TTL().Seconds()), "/", "", false, true)
			log.Infow("创建新会话", "sessionId", sess.ID)
		}

		c.Set(ContextKeySession, sess)
		c.Set(ContextKeySessionToken, tokenString)
		c.Next()
	}
}

// CurrentSession 返回 SessionMiddleware 绑定的会话。
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextKeySession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

func extractToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	// Token 也可以以 "Bearer <token>" 的形式提供
	const bearerPrefix = "Bearer "
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimPrefix(h, bearerPrefix)
	}
	return ""
}
