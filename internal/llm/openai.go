package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// chatBackend speaks the OpenAI chat completions API, which OpenRouter and
// most gateways also serve.
type chatBackend struct {
	client *openai.Client
	id     string
}

func openOpenAI(_ context.Context, ep Endpoint) (backend, error) {
	conf := openai.DefaultConfig(ep.APIKey)
	if ep.BaseURL != "" {
		conf.BaseURL = ep.BaseURL
	}
	return &chatBackend{client: openai.NewClientWithConfig(conf), id: ep.Model}, nil
}

func openOpenRouter(ctx context.Context, ep Endpoint) (backend, error) {
	if ep.BaseURL == "" {
		ep.BaseURL = openRouterURL
	}
	return openOpenAI(ctx, ep)
}

func (b *chatBackend) model() string { return b.id }

func (b *chatBackend) complete(ctx context.Context, req Request) (reply, error) {
	chat := openai.ChatCompletionRequest{
		Model:               b.id,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return reply{}, fmt.Errorf("encode schema %q: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return reply{}, classifyStatus(apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return reply{}, classifyStatus(reqErr.HTTPStatusCode, err)
		}
		return reply{}, classifyStatus(0, err)
	}
	if len(resp.Choices) == 0 {
		return reply{}, &ErrInvalidResponse{Err: errors.New("reply has no choices")}
	}

	choice := resp.Choices[0]
	return reply{
		text:      choice.Message.Content,
		model:     resp.Model,
		truncated: choice.FinishReason == openai.FinishReasonLength,
		usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}
