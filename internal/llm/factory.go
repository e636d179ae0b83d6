package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/adaptiq/internal/store"
)

// NewProvider opens the configured vendor. Calls go through retry first,
// then event logging when events is non-nil, so every attempt is recorded.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, _ := lookupVendor(cfg.Provider)

	ep := cfg.Endpoints[v.name]
	ep.Model = v.resolve(ep.Model)
	b, err := v.open(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", v.name, err)
	}

	var p Provider = &vendorProvider{vendor: v.name, b: b}
	if events != nil {
		p = WithLogging(p, events)
	}
	return WithRetry(p, cfg.Retry), nil
}

// NewProviderFromEnv is ResolveConfig followed by NewProvider.
func NewProviderFromEnv(ctx context.Context, events store.EventRepo) (Provider, Config, error) {
	cfg, err := ResolveConfig()
	if err != nil {
		return nil, cfg, err
	}
	p, err := NewProvider(ctx, cfg, events)
	return p, cfg, err
}
