package handler

import (
	"errors"
	"net/http"

	"chat-panel-go/internal/service"
	"chat-panel-go/internal/validation"
	"chat-panel-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责处理注册、登录与当前身份相关的 API 请求。
type UserHandler struct {
	userService     service.UserService
	redirectAfterMs int
}

// NewUserHandler 创建一个新的 UserHandler 实例。redirectAfterMs 是成功后前端跳转首页前的等待时长。
func NewUserHandler(userService service.UserService, redirectAfterMs int) *UserHandler {
	return &UserHandler{userService: userService, redirectAfterMs: redirectAfterMs}
}

// Register 处理用户注册请求。
func (h *UserHandler) Register(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	var form validation.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		log.Warnf("Register: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "Invalid request payload", nil)
		return
	}

	identity, err := h.userService.Register(c.Request.Context(), sess, form)
	if err != nil {
		if validationFailed(c, err, false) {
			return
		}
		if errors.Is(err, service.ErrEmailTaken) {
			fail(c, http.StatusConflict, "Email is already registered", nil)
			return
		}
		log.Errorf("Register: registration failed for '%s', error: %v", form.Email, err)
		fail(c, http.StatusInternalServerError, "Registration failed", nil)
		return
	}

	ok(c, service.RegistrationToast, gin.H{
		"user":            identity,
		"redirect":        "/",
		"redirectAfterMs": h.redirectAfterMs,
	})
}

// Login 处理用户登录请求。
func (h *UserHandler) Login(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	var form validation.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "Invalid request payload", nil)
		return
	}

	identity, err := h.userService.Login(c.Request.Context(), sess, form)
	if err != nil {
		if validationFailed(c, err, false) {
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warnf("Login: authentication failed for '%s'", form.Email)
			fail(c, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		log.Errorf("Login: login failed for '%s', error: %v", form.Email, err)
		fail(c, http.StatusInternalServerError, "Login failed", nil)
		return
	}

	ok(c, service.LoginToast, gin.H{
		"user":            identity,
		"redirect":        "/",
		"redirectAfterMs": h.redirectAfterMs,
	})
}

// GetProfile 返回当前会话的身份，未登录时 data 为 null。
func (h *UserHandler) GetProfile(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	identity, signedIn := h.userService.GetProfile(sess)
	if !signedIn {
		ok(c, "not signed in", nil)
		return
	}
	ok(c, "success", identity)
}
