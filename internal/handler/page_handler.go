package handler

import (
	"net/http"

	"chat-panel-go/internal/middleware"
	"chat-panel-go/internal/model"
	"chat-panel-go/internal/service"

	"github.com/gin-gonic/gin"
)

const appTitle = "Chat Panel"

// PageHandler 渲染聊天面板、登录与注册三个页面。
type PageHandler struct {
	userService         service.UserService
	conversationService service.ConversationService
	maxMessageLength    int
	toastPosition       string
}

// NewPageHandler 创建一个新的 PageHandler。
func NewPageHandler(userService service.UserService, conversationService service.ConversationService, maxMessageLength int, toastPosition string) *PageHandler {
	return &PageHandler{
		userService:         userService,
		conversationService: conversationService,
		maxMessageLength:    maxMessageLength,
		toastPosition:       toastPosition,
	}
}

type messageView struct {
	ID      string
	Role    model.Role
	Label   string
	Content string
	Time    string
}

// HomeView 是首页模板的数据。
type HomeView struct {
	Title         string
	Greeting      string
	Initial       string
	Username      string
	SignedIn      bool
	Messages      []messageView
	History       []model.HistoryPreview
	SessionToken  string
	MaxLength     int
	ToastPosition string
}

// Greeting 返回首页标题：已登录时问候用户名，否则显示 "Welcome"。
func Greeting(identity model.Identity, signedIn bool) string {
	if !signedIn || identity.Username == "" {
		return "Welcome"
	}
	return "Hello, " + identity.Username + "!"
}

// Home 渲染聊天面板。
func (h *PageHandler) Home(c *gin.Context) {
	sess, found := mustSession(c)
	if !found {
		return
	}
	identity, signedIn := h.userService.GetProfile(sess)

	msgs := h.conversationService.GetMessages(sess)
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{
			ID:      m.ID,
			Role:    m.Role,
			Label:   m.Role.Label(),
			Content: m.Content,
			Time:    m.Timestamp.Format("15:04"),
		})
	}

	c.HTML(http.StatusOK, "index.html", HomeView{
		Title:         appTitle,
		Greeting:      Greeting(identity, signedIn),
		Initial:       identity.Initial(),
		Username:      identity.Username,
		SignedIn:      signedIn,
		Messages:      views,
		History:       h.conversationService.GetHistory(sess),
		SessionToken:  c.GetString(middleware.ContextKeySessionToken),
		MaxLength:     h.maxMessageLength,
		ToastPosition: h.toastPosition,
	})
}

// Login 渲染登录页。
func (h *PageHandler) Login(c *gin.Context) {
	h.authPage(c, "login.html", "Log in")
}

// Register 渲染注册页。
func (h *PageHandler) Register(c *gin.Context) {
	h.authPage(c, "register.html", "Sign up")
}

func (h *PageHandler) authPage(c *gin.Context, name, title string) {
	c.HTML(http.StatusOK, name, gin.H{
		"Title":         title + " · " + appTitle,
		"SessionToken":  c.GetString(middleware.ContextKeySessionToken),
		"ToastPosition": h.toastPosition,
	})
}
