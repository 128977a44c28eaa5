// Package llm 把各家文本生成 SDK 收敛到同一个 Provider 接口。
// 提示、讲解和会话练习用纯文本，翻译判题要求返回符合 schema 的 JSON。
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

type Provider interface {
	// Generate 发送一次请求；设置了 Schema 时返回内容已通过校验
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema Name 同时是编译结果的缓存 key
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
}

func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Content))
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// UserPrompt 单轮请求
func UserPrompt(prompt string, maxTokens int, temperature float64) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
