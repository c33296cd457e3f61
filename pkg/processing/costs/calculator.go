package costs

import (
	"strings"
	"sync"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// ModelRates holds per-1000-token prices in USD for one model or model
// family.
type ModelRates struct {
	// Prompt is the cost per 1000 prompt tokens
	Prompt float64 `yaml:"prompt"`

	// Completion is the cost per 1000 completion tokens
	Completion float64 `yaml:"completion"`
}

// PricingTable maps provider name to model name (or prefix) to rates.
// The reserved model key "default" is the provider's fallback.
type PricingTable map[string]map[string]ModelRates

// Calculator turns token usage into estimated USD cost. It is safe for
// concurrent use and supports pricing hot-reload.
type Calculator struct {
	mu      sync.RWMutex
	pricing PricingTable
}

// defaultPricing carries rough launch rates so usage records always get
// a cost figure even before an operator supplies a pricing table.
var defaultPricing = PricingTable{
	providers.ProviderOpenAI: {
		"gpt-4o-mini": {Prompt: 0.00015, Completion: 0.0006},
		"gpt-4o":      {Prompt: 0.0025, Completion: 0.01},
		"gpt-4":       {Prompt: 0.03, Completion: 0.06},
		"gpt-3.5":     {Prompt: 0.0005, Completion: 0.0015},
		"o1-":         {Prompt: 0.015, Completion: 0.06},
		"default":     {Prompt: 0.0025, Completion: 0.01},
	},
	providers.ProviderAnthropic: {
		"claude-3-5-haiku":  {Prompt: 0.0008, Completion: 0.004},
		"claude-3-5-sonnet": {Prompt: 0.003, Completion: 0.015},
		"claude-3-opus":     {Prompt: 0.015, Completion: 0.075},
		"default":           {Prompt: 0.003, Completion: 0.015},
	},
	providers.ProviderGoogle: {
		"gemini-1.5-flash": {Prompt: 0.000075, Completion: 0.0003},
		"gemini-1.5-pro":   {Prompt: 0.00125, Completion: 0.005},
		"default":          {Prompt: 0.00125, Completion: 0.005},
	},
	providers.ProviderQwen: {
		"qwen-turbo": {Prompt: 0.00005, Completion: 0.0002},
		"qwen-plus":  {Prompt: 0.0004, Completion: 0.0012},
		"qwen-max":   {Prompt: 0.0024, Completion: 0.0096},
		"default":    {Prompt: 0.0004, Completion: 0.0012},
	},
}

// NewCalculator creates a calculator with the built-in pricing table.
func NewCalculator() *Calculator {
	return &Calculator{pricing: defaultPricing}
}

// NewCalculatorWithPricing creates a calculator with an explicit table.
func NewCalculatorWithPricing(pricing PricingTable) *Calculator {
	if pricing == nil {
		pricing = defaultPricing
	}
	return &Calculator{pricing: pricing}
}

// Cost returns the USD cost for the given usage. Resolution order is
// exact model match, longest model-prefix match, the provider's
// "default" entry, then zero when the provider is unknown.
func (c *Calculator) Cost(provider, model string, usage providers.TokenUsage) float64 {
	rates, ok := c.ratesFor(provider, model)
	if !ok {
		return 0
	}
	return tokenCost(usage.PromptTokens, rates.Prompt) +
		tokenCost(usage.CompletionTokens, rates.Completion)
}

// ratesFor resolves the pricing entry for a provider and model.
func (c *Calculator) ratesFor(provider, model string) (ModelRates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	models, ok := c.pricing[provider]
	if !ok {
		return ModelRates{}, false
	}

	if rates, ok := models[model]; ok {
		return rates, true
	}

	var best ModelRates
	bestLen := -1
	for prefix, rates := range models {
		if prefix == "default" {
			continue
		}
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best = rates
			bestLen = len(prefix)
		}
	}
	if bestLen >= 0 {
		return best, true
	}

	if rates, ok := models["default"]; ok {
		return rates, true
	}
	return ModelRates{}, false
}

// UpdatePricing swaps the pricing table. Safe while the calculator is in
// use.
func (c *Calculator) UpdatePricing(pricing PricingTable) {
	if pricing == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pricing = pricing
}

func tokenCost(tokens int, per1K float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return float64(tokens) / 1000.0 * per1K
}
