package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/adaptiq/internal/store"
)

// LoggingProvider stores one llm_request event per call. A failure to
// store never fails the call.
type LoggingProvider struct {
	inner  Provider
	events store.EventRepo
}

func WithLogging(p Provider, events store.EventRepo) Provider {
	return &LoggingProvider{inner: p, events: events}
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	began := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    vendorOf(l.inner),
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(began).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	// ctx may already be past its deadline.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if serr := l.events.AppendLLMRequest(saveCtx, ev); serr != nil {
		slog.Warn("could not store LLM request event", "purpose", ev.Purpose, "error", serr)
	}
	slog.Debug("LLM request", "vendor", ev.Provider, "model", ev.Model, "purpose", ev.Purpose, "latency_ms", ev.LatencyMs, "ok", ev.Success)
	return resp, err
}

func vendorOf(p Provider) string {
	if v, ok := p.(interface{ Vendor() string }); ok {
		return v.Vendor()
	}
	return p.ModelID()
}

// transcript renders req as the plain text stored with the event.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
