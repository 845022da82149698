package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI 通过 Chat Completions 接口生成文本。
type OpenAI struct {
	client   *openai.Client
	model    string
	settings settings
}

func NewOpenAI(apiKey, model string, opts ...Option) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey), model: model, settings: applyOptions(opts)}
}

// Derive 复用同一客户端，使用另一组参数。
func (o *OpenAI) Derive(model string, opts ...Option) *OpenAI {
	return &OpenAI{client: o.client, model: model, settings: applyOptions(opts)}
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if o.settings.systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: o.settings.systemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{Model: o.model, Messages: messages}
	if o.settings.jsonOutput {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
