package tokens

import (
	"strings"
	"sync"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

const (
	// defaultCharsPerToken is the fallback ratio for unknown models.
	// English prose averages close to four characters per token across
	// the supported model families.
	defaultCharsPerToken = 4.0

	// perMessageOverhead approximates the role marker and message
	// boundary tokens each chat message carries on the wire.
	perMessageOverhead = 4

	// conversationOverhead approximates the fixed framing tokens of a
	// chat completion prompt.
	conversationOverhead = 3
)

// Estimator approximates token counts from character length. Estimates
// are used only when a provider response omits usage figures; records
// built from them are marked as estimated.
type Estimator struct {
	mu sync.RWMutex

	// ratios maps a model name or prefix to its characters-per-token
	// ratio. Longest matching prefix wins.
	ratios map[string]float64
}

// NewEstimator creates an estimator with built-in per-family ratios.
func NewEstimator() *Estimator {
	return &Estimator{
		ratios: map[string]float64{
			"gpt-":    4.0,
			"o1-":     4.0,
			"claude-": 3.8,
			"gemini-": 4.0,
			"qwen":    3.5,
		},
	}
}

// SetRatio overrides the characters-per-token ratio for a model prefix.
func (e *Estimator) SetRatio(modelPrefix string, charsPerToken float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if charsPerToken > 0 {
		e.ratios[modelPrefix] = charsPerToken
	}
}

// EstimateText estimates tokens for a single text string. Non-empty text
// always counts at least one token.
func (e *Estimator) EstimateText(text, model string) int {
	if text == "" {
		return 0
	}

	ratio := e.charsPerToken(model)
	estimated := int(float64(len(text))/ratio + 0.5)
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

// EstimateMessages estimates prompt tokens for a chat message list,
// including per-message and conversation framing overhead.
func (e *Estimator) EstimateMessages(messages []providers.Message, model string) int {
	if len(messages) == 0 {
		return 0
	}

	total := conversationOverhead
	for _, msg := range messages {
		total += perMessageOverhead
		total += e.EstimateText(msg.Content, model)
	}
	return total
}

// EstimateUsage builds a full usage figure for a request and the
// completion text it produced. It serves the non-streaming path when the
// provider omitted usage and the streaming path where usage may never
// arrive at all.
func (e *Estimator) EstimateUsage(messages []providers.Message, completion, model string) providers.TokenUsage {
	prompt := e.EstimateMessages(messages, model)
	done := e.EstimateText(completion, model)
	return providers.TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: done,
		TotalTokens:      prompt + done,
	}
}

// charsPerToken resolves the ratio for a model by longest prefix match.
func (e *Estimator) charsPerToken(model string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	best := defaultCharsPerToken
	bestLen := 0
	for prefix, ratio := range e.ratios {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best = ratio
			bestLen = len(prefix)
		}
	}
	return best
}
