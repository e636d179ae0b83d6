package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client *genai.Client
	id     string
}

func openGemini(ctx context.Context, ep Endpoint) (backend, error) {
	conf := &genai.ClientConfig{APIKey: ep.APIKey, Backend: genai.BackendGeminiAPI}
	if ep.BaseURL != "" {
		conf.HTTPOptions.BaseURL = ep.BaseURL
	}
	client, err := genai.NewClient(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiBackend{client: client, id: ep.Model}, nil
}

func (b *geminiBackend) model() string { return b.id }

func (b *geminiBackend) complete(ctx context.Context, req Request) (reply, error) {
	conf := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		conf.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		conf.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		conf.ResponseMIMEType = "application/json"
		conf.ResponseSchema = geminiSchema(req.Schema.Definition)
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	res, err := b.client.Models.GenerateContent(ctx, b.id, contents, conf)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return reply{}, classifyStatus(apiErr.Code, err)
		}
		return reply{}, classifyStatus(0, err)
	}

	r := reply{text: res.Text(), model: b.id}
	if len(res.Candidates) > 0 {
		r.truncated = res.Candidates[0].FinishReason == genai.FinishReasonMaxTokens
	}
	if u := res.UsageMetadata; u != nil {
		r.usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return r, nil
}

// geminiSchema translates the JSON Schema subset the judge uses. Gemini has
// no type unions, so ["boolean","null"] becomes a nullable boolean.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}
	names, nullable := typeNames(def)
	if len(names) > 0 {
		s.Type = genai.Type(strings.ToUpper(names[0]))
	}
	if nullable {
		s.Nullable = genai.Ptr(true)
	}
	s.Description, _ = def["description"].(string)

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pd, ok := p.(map[string]any); ok {
				s.Properties[name] = geminiSchema(pd)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	s.Required = stringList(def["required"])
	s.Enum = stringList(def["enum"])
	return s
}

func stringList(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
