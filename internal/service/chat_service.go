package service

import (
	"context"
	"errors"
	"time"

	"chat-panel-go/internal/config"
	"chat-panel-go/internal/model"
	"chat-panel-go/internal/session"
	"chat-panel-go/internal/validation"
	"chat-panel-go/pkg/events"
	"chat-panel-go/pkg/gate"
	"chat-panel-go/pkg/log"
)

const (
	// ChatFailureToast 是对话失败时弹出的错误通知。
	ChatFailureToast = "Limit exceeded or AI is temporarily unavailable"
	// ChatFailureMessage 是对话失败时追加到记录中的错误消息。
	ChatFailureMessage = "Failed to get a response. Request limit reached or the service is temporarily unavailable."
)

// Completer 是 AI 适配器中不带闸门的补全能力。
type Completer interface {
	Complete(ctx context.Context, prompt string) (text string, ok bool)
}

// SubmitResult 描述一次提交产生的结果。
type SubmitResult struct {
	// Busy 为 true 时本次提交被拒绝，对话没有任何变化。
	Busy        bool   `json:"busy"`
	BusyMessage string `json:"busyMessage,omitempty"`
	// InputReset 表示输入框应被清空。
	InputReset bool            `json:"inputReset"`
	Messages   []model.Message `json:"messages"`
}

// ChatOptions 控制提交流程。
type ChatOptions struct {
	Mode             string
	SimulatedDelay   time.Duration
	MaxMessageLength int
}

// ChatOptionsFromConfig 从配置构造 ChatOptions。
func ChatOptionsFromConfig(cfg config.ChatConfig) ChatOptions {
	return ChatOptions{
		Mode:             cfg.Mode,
		SimulatedDelay:   cfg.SimulatedDelay(),
		MaxMessageLength: cfg.MaxMessageLength,
	}
}

// ChatService 定义了聊天面板的提交操作。
type ChatService interface {
	Submit(ctx context.Context, sess *session.Session, input string) (*SubmitResult, error)
}

type chatService struct {
	opts      ChatOptions
	ai        Completer
	notifier  Notifier
	publisher events.Publisher
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(opts ChatOptions, ai Completer, notifier Notifier, publisher events.Publisher) ChatService {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = validation.DefaultMaxMessageLength
	}
	if opts.Mode == "" {
		opts.Mode = config.ChatModeSimulate
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &chatService{opts: opts, ai: ai, notifier: notifier, publisher: publisher}
}

// Submit 处理一次聊天输入：校验、检查闸门、追加用户消息，然后得到助手回复或错误消息。
func (s *chatService) Submit(ctx context.Context, sess *session.Session, input string) (*SubmitResult, error) {
	// 1. 校验，失败时不修改任何状态
	text, ferr := validation.ValidateMessageMax(input, s.opts.MaxMessageLength)
	if ferr != nil {
		return nil, &ValidationError{Fields: validation.FieldErrors{ferr}}
	}

	// 2. 已有请求在进行中，直接拒绝
	state, err := sess.Gate.State(ctx)
	if err != nil {
		return nil, err
	}
	if state == gate.Pending {
		return busyResult(), nil
	}

	// 3. 持有闸门完成整个回合；回合一旦开始不随请求取消而中断
	result := &SubmitResult{}
	err = gate.Do(context.WithoutCancel(ctx), sess.Gate, func(ctx context.Context) error {
		userMsg := model.NewMessage(model.RoleUser, text)
		s.append(ctx, sess, userMsg)
		result.InputReset = true
		result.Messages = append(result.Messages, userMsg)

		reply := s.respond(ctx, sess, text)
		s.append(ctx, sess, reply)
		result.Messages = append(result.Messages, reply)
		return nil
	})
	if errors.Is(err, gate.ErrBusy) {
		return busyResult(), nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// respond 生成本回合的第二条消息。
func (s *chatService) respond(ctx context.Context, sess *session.Session, prompt string) model.Message {
	if s.opts.Mode == config.ChatModeLive && s.ai != nil {
		text, ok := s.ai.Complete(ctx, prompt)
		if ok {
			return model.NewMessage(model.RoleAssistant, text)
		}
		s.notifier.Notify(sess.ID, model.NotificationError, ChatFailureToast)
		return model.NewMessage(model.RoleError, text)
	}

	// simulate: 等待后必定失败
	_ = sleepCtx(ctx, s.opts.SimulatedDelay)
	log.Warnw("AI 回复不可用，记录错误消息", "sessionId", sess.ID, "mode", s.opts.Mode)
	s.notifier.Notify(sess.ID, model.NotificationError, ChatFailureToast)
	return model.NewMessage(model.RoleError, ChatFailureMessage)
}

func (s *chatService) append(ctx context.Context, sess *session.Session, msg model.Message) {
	sess.Conversation.Append(msg)
	s.notifier.ScrollTo(sess.ID, msg.ID)
	publish(ctx, s.publisher, events.ChatEvent{
		Type:      events.MessageAppended,
		SessionID: sess.ID,
		MessageID: msg.ID,
		Role:      string(msg.Role),
		Timestamp: msg.Timestamp,
	})
}

func busyResult() *SubmitResult {
	return &SubmitResult{Busy: true, BusyMessage: gate.BusyMessage, Messages: []model.Message{}}
}
