// Package app 负责按配置组装各层依赖并注册路由。
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chat-panel-go/internal/config"
	"chat-panel-go/internal/handler"
	"chat-panel-go/internal/middleware"
	"chat-panel-go/internal/repository"
	"chat-panel-go/internal/service"
	"chat-panel-go/internal/session"
	"chat-panel-go/pkg/database"
	"chat-panel-go/pkg/events"
	"chat-panel-go/pkg/gate"
	"chat-panel-go/pkg/kafka"
	"chat-panel-go/pkg/llm"
	"chat-panel-go/pkg/log"
	"chat-panel-go/pkg/notify"
	"chat-panel-go/pkg/token"
	"chat-panel-go/web"

	"github.com/gin-gonic/gin"
)

// App 持有组装好的路由与需要随进程生命周期管理的组件。
type App struct {
	Router     *gin.Engine
	Sessions   *session.Store
	Hub        *notify.Hub
	JWTManager *token.JWTManager

	closers []func() error
}

// Option 用于替换默认组件，主要供测试使用。
type Option func(*options)

type options struct {
	llmClient llm.Client
	publisher events.Publisher
}

// WithLLMClient 使用自定义的补全客户端。
func WithLLMClient(c llm.Client) Option {
	return func(o *options) { o.llmClient = c }
}

// WithPublisher 使用自定义的事件发布者，忽略 kafka 配置。
func WithPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// New 根据配置创建 App。
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{}

	// 1. 请求闸门
	var gates gate.Factory = gate.LocalFactory{}
	if cfg.Gate.Backend == config.GateBackendRedis {
		rdb, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		gates = gate.RedisFactory{
			Client:   rdb,
			KeySpace: cfg.Gate.RedisKeySpace,
			Lease:    time.Duration(cfg.Gate.LeaseSeconds) * time.Second,
		}
	}

	// 2. 聊天事件流
	publisher := o.publisher
	if publisher == nil {
		if cfg.Kafka.Brokers != "" {
			producer := kafka.NewProducer(cfg.Kafka)
			a.closers = append(a.closers, producer.Close)
			publisher = producer
		} else {
			publisher = events.Nop{}
		}
	}

	// 3. 会话与通知
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	a.Hub = notify.NewHub(notify.Options{
		DefaultDuration: ms(cfg.Notify.DefaultDurationMs),
		SuccessDuration: ms(cfg.Notify.SuccessDurationMs),
		ErrorDuration:   ms(cfg.Notify.ErrorDurationMs),
		Position:        cfg.Notify.Position,
	})
	a.Sessions = session.NewStore(gates, cfg.Session.IdleTTL())
	a.Sessions.OnDelete(a.Hub.Forget)
	a.Sessions.OnDelete(func(id string) {
		if err := publisher.Publish(context.Background(), events.ChatEvent{
			Type:      events.SessionClosed,
			SessionID: id,
			Timestamp: time.Now(),
		}); err != nil {
			log.Warnw("发布会话关闭事件失败", "sessionId", id, "error", err)
		}
	})
	a.JWTManager = token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.SessionExpireHours)

	// 4. 初始化 Service (依赖注入)
	llmClient := o.llmClient
	if llmClient == nil {
		llmClient = llm.NewClient(cfg.LLM)
	}
	adapter := llm.NewAdapter(llmClient)
	accountRepo := repository.NewAccountRepository()
	userService := service.NewUserService(accountRepo, a.Hub, cfg.Auth.SimulatedDelay())
	conversationService := service.NewConversationService(a.Hub, publisher)
	chatService := service.NewChatService(service.ChatOptionsFromConfig(cfg.Chat), adapter, a.Hub, publisher)

	// 5. 创建路由引擎
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))

	sessionMW := middleware.SessionMiddleware(a.JWTManager, a.Sessions, cfg.Session.CookieName)
	userHandler := handler.NewUserHandler(userService, cfg.Auth.RedirectDelayMs)
	chatHandler := handler.NewChatHandler(chatService)
	conversationHandler := handler.NewConversationHandler(conversationService)
	notificationHandler := handler.NewNotificationHandler(a.Hub, a.Sessions, a.JWTManager)
	pageHandler := handler.NewPageHandler(userService, conversationService, cfg.Chat.MaxMessageLength, cfg.Notify.Position)

	// 6. 注册路由
	pages := r.Group("/")
	pages.Use(sessionMW)
	{
		pages.GET("/", pageHandler.Home)
		pages.GET("/login", pageHandler.Login)
		pages.GET("/register", pageHandler.Register)
	}

	apiV1 := r.Group("/api/v1")
	apiV1.Use(sessionMW)
	{
		users := apiV1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.GET("/me", userHandler.GetProfile)
		}

		chat := apiV1.Group("/chat")
		{
			chat.GET("/messages", conversationHandler.GetMessages)
			chat.POST("/messages", chatHandler.SendMessage)
			chat.DELETE("/messages", conversationHandler.ClearMessages)
			chat.GET("/history", conversationHandler.GetHistory)
		}

		apiV1.POST("/ai/ask", handler.NewAIHandler(adapter).Ask)
		apiV1.GET("/notifications", notificationHandler.List)
		apiV1.DELETE("/session", handler.NewSessionHandler(a.Sessions, cfg.Session.CookieName).Delete)
	}

	// WebSocket 通过路径中的会话 token 鉴权
	r.GET("/ws/:token", notificationHandler.Handle)

	a.Router = r
	return a, nil
}

// Close 释放外部连接。
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Errorf("关闭组件失败: %v", err)
		}
	}
}
