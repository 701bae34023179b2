package llm

import (
	"context"
	"errors"

	"chat-panel-go/pkg/gate"
	"chat-panel-go/pkg/log"
)

// FallbackMessage 是任何调用失败时返回给用户的固定文案，具体原因只写日志。
const FallbackMessage = "AI is unavailable. Try again in a minute or check the key."

// Adapter 把 prompt 转换为一次远端补全请求，并把结果收敛为一个普通字符串。
// 不重试、不退避，也不区分限流与其他错误。
type Adapter struct {
	client Client
}

// NewAdapter 创建一个新的 Adapter。
func NewAdapter(client Client) *Adapter {
	return &Adapter{client: client}
}

// Complete 调用远端接口；失败时记录原因并返回 FallbackMessage。
// ok 表示是否拿到了真实的补全文本。
func (a *Adapter) Complete(ctx context.Context, prompt string) (text string, ok bool) {
	text, err := a.client.Complete(ctx, prompt)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			log.Errorw("AI 接口返回错误状态", "status", statusErr.StatusCode, "error", err)
		} else {
			log.Error("AI 接口调用失败", err)
		}
		return FallbackMessage, false
	}
	return text, true
}

// Ask 在闸门保护下调用 Complete。闸门为 pending 时立即返回 gate.BusyMessage，不会发起请求。
func (a *Adapter) Ask(ctx context.Context, g gate.Gate, prompt string) string {
	var answer string
	err := gate.Do(ctx, g, func(ctx context.Context) error {
		answer, _ = a.Complete(ctx, prompt)
		return nil
	})
	if errors.Is(err, gate.ErrBusy) {
		return gate.BusyMessage
	}
	if err != nil {
		log.Error("AI 请求闸门异常", err)
		if answer == "" {
			return FallbackMessage
		}
	}
	return answer
}
