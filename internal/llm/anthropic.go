package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicBackend struct {
	client anthropic.Client
	id     string
}

func openAnthropic(_ context.Context, ep Endpoint) (backend, error) {
	opts := []option.RequestOption{option.WithAPIKey(ep.APIKey)}
	if ep.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(ep.BaseURL))
	}
	// Retries are ours.
	opts = append(opts, option.WithMaxRetries(0))
	return &anthropicBackend{client: anthropic.NewClient(opts...), id: ep.Model}, nil
}

func (b *anthropicBackend) model() string { return b.id }

func (b *anthropicBackend) complete(ctx context.Context, req Request) (reply, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.id),
		MaxTokens: int64(req.MaxTokens),
	}
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return reply{}, classifyStatus(apiErr.StatusCode, err)
		}
		return reply{}, classifyStatus(0, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return reply{
		text:      text.String(),
		model:     string(msg.Model),
		truncated: msg.StopReason == anthropic.StopReasonMaxTokens,
		usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}
