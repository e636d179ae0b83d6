package llm

import "strings"

// Price is USD per million tokens.
type Price struct {
	In, Out float64
}

// USD is the cost of one call or a sum of calls.
func (p Price) USD(in, out int) float64 {
	return (float64(in)*p.In + float64(out)*p.Out) / 1e6
}

// PriceOf looks up model, trying the part after the last '/' for
// OpenRouter style IDs.
func PriceOf(model string) (Price, bool) {
	if p, ok := prices[model]; ok {
		return p, true
	}
	if _, short, ok := strings.Cut(model, "/"); ok {
		return PriceOf(short)
	}
	return Price{}, false
}

// prices lists the models the judge is usually pointed at (models.dev,
// 2026-09-30).
var prices = map[string]Price{
	"claude-3-5-haiku-20241022":  {0.8, 4},
	"claude-3-5-haiku-latest":    {0.8, 4},
	"claude-haiku-4-5":           {1, 5},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-haiku-4.5":           {1, 5},
	"claude-sonnet-4-5":          {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
