package llm

import (
	"context"
	"encoding/json"
)

// Provider answers a prompt with JSON. It is what the judge talks to.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, is passed to the vendor's structured output mode
	// and the reply is decoded with DecodeReply before it is returned.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // zero leaves the vendor default
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

// Schema is a named JSON Schema. Name doubles as the compile cache key, so
// one name must always map to one definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a decoded reply.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// reply is what a backend hands back before decoding.
type reply struct {
	text      string
	model     string
	truncated bool
	usage     Usage
}

// backend is one vendor SDK. It only moves text; schema handling and error
// shaping live in vendorProvider so every vendor behaves the same.
type backend interface {
	complete(ctx context.Context, req Request) (reply, error)
	model() string
}

// vendorProvider adapts a backend to Provider.
type vendorProvider struct {
	vendor string
	b      backend
}

func (p *vendorProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	r, err := p.b.complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if r.truncated {
		return nil, &ErrMaxTokensExceeded{Content: json.RawMessage(r.text)}
	}

	content := json.RawMessage(r.text)
	if req.Schema != nil {
		if content, err = DecodeReply(req.Schema, r.text); err != nil {
			return nil, err
		}
	} else {
		content = json.RawMessage(stripFence(r.text))
	}

	model := r.model
	if model == "" {
		model = p.b.model()
	}
	return &Response{Content: content, Usage: r.usage, Model: model, StopReason: "end"}, nil
}

func (p *vendorProvider) ModelID() string { return p.b.model() }

// Vendor names the configured vendor, e.g. "openrouter".
func (p *vendorProvider) Vendor() string { return p.vendor }
