// Package ai 封装生成式文本服务：Gemini 与 OpenAI 两种实现、过载重试策略，
// 以及面向简历描述生成的文本服务。
package ai

import (
	"context"
	"errors"
)

// ErrOverloaded 表示服务暂时过载，可以重试。
var ErrOverloaded = errors.New("ai service overloaded")

// ErrEmptyResponse 表示服务没有返回任何文本。
var ErrEmptyResponse = errors.New("ai service returned no text")

// Generator 接收提示词并返回生成的文本。
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc 允许普通函数实现 Generator。
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type settings struct {
	jsonOutput        bool
	systemInstruction string
}

// Option 调整单个生成器的请求参数。
type Option func(*settings)

// WithJSONOutput 要求服务直接返回 JSON 文本。
func WithJSONOutput() Option {
	return func(s *settings) { s.jsonOutput = true }
}

// WithSystemInstruction 设置系统提示。
func WithSystemInstruction(text string) Option {
	return func(s *settings) { s.systemInstruction = text }
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
