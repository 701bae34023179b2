// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"chat-panel-go/internal/middleware"
	"chat-panel-go/internal/service"
	"chat-panel-go/internal/session"
	"chat-panel-go/pkg/log"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": message, "data": data})
}

func fail(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": data})
}

// mustSession 返回当前会话；中间件缺失时直接返回 500。
func mustSession(c *gin.Context) (*session.Session, bool) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		log.Errorf("请求 %s 未绑定会话", c.Request.URL.Path)
		fail(c, http.StatusInternalServerError, "session unavailable", nil)
		return nil, false
	}
	return sess, true
}

// validationFailed 在 err 为校验错误时写出 400 响应并返回 true。
// single 为 true 时 data 为单个字段错误，否则为字段错误列表。
func validationFailed(c *gin.Context, err error, single bool) bool {
	var verr *service.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) == 0 {
		return false
	}
	if single {
		fail(c, http.StatusBadRequest, verr.Fields[0].Message, verr.Fields[0])
	} else {
		fail(c, http.StatusBadRequest, "Please fix the highlighted fields", gin.H{"errors": verr.Fields})
	}
	return true
}
