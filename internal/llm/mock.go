package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MockResponse is one scripted reply. Err, when set, is returned instead.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
	Delay   time.Duration // waits this long or until ctx is done
}

// MockProvider plays back scripted replies in order and keeps every
// request it saw. An exhausted script answers ErrProviderUnavailable.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, r)
	m.mu.Unlock()
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Vendor() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	next, ok := m.pop(req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	if next.Delay > 0 {
		t := time.NewTimer(next.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) pop(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		return MockResponse{}, false
	}
	next := m.script[0]
	m.script = m.script[1:]
	return next, true
}
