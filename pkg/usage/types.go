package usage

import (
	"context"
	"time"
)

// Record is an append-only fact describing one proxied attempt. Records
// are written once by the recorder and never mutated or deleted by the
// gateway; the analytics and billing collaborators read them downstream.
type Record struct {
	// ID is the unique record identifier (UUID).
	ID string `json:"id"`

	// AccountID is the account that issued the request.
	AccountID string `json:"account_id"`

	// Provider is the upstream provider that served the attempt.
	Provider string `json:"provider"`

	// Model is the requested model name.
	Model string `json:"model"`

	// PromptTokens is the prompt token count.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the completion token count.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is prompt plus completion.
	TotalTokens int `json:"total_tokens"`

	// TokensEstimated is true when the provider omitted usage and the
	// counts were approximated from text length.
	TokensEstimated bool `json:"tokens_estimated"`

	// LatencyMS is the end-to-end upstream latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// EstimatedCost is the USD cost derived from token counts.
	EstimatedCost float64 `json:"estimated_cost"`

	// StatusCode is the upstream HTTP status (0 when the attempt never
	// produced one, e.g. a transform failure).
	StatusCode int `json:"status_code"`

	// ErrorMessage is the failure text for unsuccessful attempts.
	ErrorMessage string `json:"error_message,omitempty"`

	// Timestamp is when the attempt completed.
	Timestamp time.Time `json:"timestamp"`
}

// Query filters usage records for reads.
type Query struct {
	// AccountID filters by account (empty matches all).
	AccountID string

	// Provider filters by provider (empty matches all).
	Provider string

	// Since excludes records before this time when non-zero.
	Since time.Time

	// Until excludes records at or after this time when non-zero.
	Until time.Time

	// Limit caps the number of returned records (0 means no cap).
	Limit int
}

// Storage persists usage records.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filter, newest first.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes records older than the cutoff and returns
	// how many were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}
