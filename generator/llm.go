package generator

import (
	"context"
	"errors"
)

// ErrInputTooLarge 表示模型服务拒绝了过长的输入（token/请求体超限）。
// Agent 收到该错误时会改用精简提示词重试一次。
var ErrInputTooLarge = errors.New("llm: input too large")

// ErrEmptyResponse is returned when the model produced no text at all.
var ErrEmptyResponse = errors.New("llm: empty response")

// LLMClient 抽象大模型客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int64
}
