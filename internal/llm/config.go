package llm

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config selects and tunes the judge's model vendor.
type Config struct {
	// Provider is a vendor name from Vendors, or "mock".
	Provider string

	// Endpoints holds credentials and model per vendor name.
	Endpoints map[string]Endpoint

	Retry     RetryConfig
	Timeout   time.Duration // whole request, retries included
	MaxTokens int
}

// Endpoint is how to reach one vendor.
type Endpoint struct {
	APIKey  string
	Model   string
	BaseURL string // empty means the vendor's public API
}

// RetryConfig bounds retries of transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// vendor describes one supported API.
type vendor struct {
	name   string
	keyEnv string // the vendor's own variable, used for discovery
	model  string // default model
	alias  map[string]string
	open   func(ctx context.Context, ep Endpoint) (backend, error)
}

// vendors is in discovery order.
var vendors = []vendor{
	{
		name: "anthropic", keyEnv: "ANTHROPIC_API_KEY", model: "claude-haiku",
		alias: map[string]string{
			"claude-haiku":  "claude-haiku-4-5-20251001",
			"claude-sonnet": "claude-sonnet-4-5-20250929",
		},
		open: openAnthropic,
	},
	{
		name: "openai", keyEnv: "OPENAI_API_KEY", model: "gpt-4o-mini",
		open: openOpenAI,
	},
	{
		name: "gemini", keyEnv: "GEMINI_API_KEY", model: "gemini-flash",
		alias: map[string]string{
			"gemini-flash": "gemini-2.5-flash",
			"gemini-pro":   "gemini-2.5-pro",
		},
		open: openGemini,
	},
	{
		// OpenAI-compatible; model IDs are "vendor/model" and never aliased.
		name: "openrouter", keyEnv: "OPENROUTER_API_KEY", model: "anthropic/claude-haiku-4.5",
		open: openOpenRouter,
	},
}

// Vendors lists the vendor names NewProvider accepts besides "mock".
func Vendors() []string {
	names := make([]string, len(vendors))
	for i, v := range vendors {
		names[i] = v.name
	}
	return names
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// resolve maps a friendly model name to the vendor's ID; unknown names are
// used as given.
func (v vendor) resolve(model string) string {
	if model == "" {
		model = v.model
	}
	if id, ok := v.alias[model]; ok {
		return id
	}
	return model
}

// DefaultConfig is Anthropic with every vendor's default model.
func DefaultConfig() Config {
	cfg := Config{
		Provider:  vendors[0].name,
		Endpoints: make(map[string]Endpoint, len(vendors)),
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2,
		},
		Timeout:   20 * time.Second,
		MaxTokens: 500,
	}
	for _, v := range vendors {
		cfg.Endpoints[v.name] = Endpoint{Model: v.model}
	}
	return cfg
}

// ConfigFromEnv reads ADAPTIQ_LLM_* and ADAPTIQ_<VENDOR>_{API_KEY,MODEL,BASE_URL}
// over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("ADAPTIQ_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	for _, v := range vendors {
		prefix := "ADAPTIQ_" + strings.ToUpper(v.name) + "_"
		ep := cfg.Endpoints[v.name]
		setString(&ep.APIKey, prefix+"API_KEY")
		setString(&ep.Model, prefix+"MODEL")
		setString(&ep.BaseURL, prefix+"BASE_URL")
		cfg.Endpoints[v.name] = ep
	}
	if d, err := time.ParseDuration(os.Getenv("ADAPTIQ_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("ADAPTIQ_LLM_MAX_TOKENS")); err == nil && n > 0 {
		cfg.MaxTokens = n
	}
	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig picks the first vendor whose own API key variable is set.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()
	for _, v := range vendors {
		key := os.Getenv(v.keyEnv)
		if key == "" {
			continue
		}
		ep := cfg.Endpoints[v.name]
		ep.APIKey = key
		cfg.Endpoints[v.name] = ep
		cfg.Provider = v.name
		return cfg, true
	}
	return Config{}, false
}

// ResolveConfig prefers a usable ADAPTIQ_* configuration and falls back to
// discovery.
func ResolveConfig() (Config, error) {
	cfg := ConfigFromEnv()
	if cfg.Validate() == nil {
		return cfg, nil
	}
	if found, ok := DiscoverConfig(); ok {
		return found, nil
	}
	return cfg, cfg.Validate()
}

// Validate checks that the selected vendor exists and has a key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider %q (want one of %s or mock)", c.Provider, strings.Join(Vendors(), ", "))
	}
	if c.Endpoints[v.name].APIKey == "" {
		return fmt.Errorf("ADAPTIQ_%s_API_KEY is required for the %s provider", strings.ToUpper(v.name), v.name)
	}
	return nil
}
