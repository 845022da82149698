package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 调用 Google Generative AI。
type Gemini struct {
	client   *genai.Client
	model    string
	settings settings
}

// NewGemini 创建客户端，调用方负责 Close。
func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, settings: applyOptions(opts)}, nil
}

// Derive 复用同一连接，使用另一个模型与参数。
func (g *Gemini) Derive(model string, opts ...Option) *Gemini {
	return &Gemini{client: g.client, model: model, settings: applyOptions(opts)}
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if g.settings.systemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(g.settings.systemInstruction)},
		}
	}
	if g.settings.jsonOutput {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
