package domain

import "time"

// UsageRecord is written once per completed upstream call.
type UsageRecord struct {
	UsageID          string      `json:"usage_id"`
	UserID           string      `json:"user_id"`
	OrgID            string      `json:"org_id"`
	Provider         string      `json:"provider"`
	Model            string      `json:"model"`
	RequestType      RequestType `json:"request_type"`
	PromptTokens     int64       `json:"prompt_tokens"`
	CompletionTokens int64       `json:"completion_tokens"`
	TotalTokens      int64       `json:"total_tokens"`
	Cost             float64     `json:"cost"`
	CreatedAt        time.Time   `json:"created_at"`
}

// UsageScope selects how usage is aggregated.
type UsageScope string

const (
	UsageScopeUser UsageScope = "user"
	UsageScopeOrg  UsageScope = "org"
)

// ModelUsage is one row of a usage breakdown.
type ModelUsage struct {
	Provider         string  `json:"provider" yaml:"provider"`
	Model            string  `json:"model" yaml:"model"`
	Requests         int64   `json:"requests" yaml:"requests"`
	PromptTokens     int64   `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens" yaml:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens" yaml:"total_tokens"`
	Cost             float64 `json:"cost" yaml:"cost"`
}

// UsageSummary aggregates usage for one user or organization.
type UsageSummary struct {
	Scope            UsageScope   `json:"scope" yaml:"scope"`
	ID               string       `json:"id" yaml:"id"`
	Requests         int64        `json:"requests" yaml:"requests"`
	PromptTokens     int64        `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int64        `json:"completion_tokens" yaml:"completion_tokens"`
	TotalTokens      int64        `json:"total_tokens" yaml:"total_tokens"`
	Cost             float64      `json:"cost" yaml:"cost"`
	ByModel          []ModelUsage `json:"by_model" yaml:"by_model"`
}

// RequestCounter tracks per-user upstream requests against a plan limit.
type RequestCounter struct {
	UserID        string    `json:"user_id"`
	Tier          Tier      `json:"tier"`
	RequestsUsed  int64     `json:"requests_used"`
	RequestsLimit int64     `json:"requests_limit"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultRequestsLimit applies to counters created on first use.
const DefaultRequestsLimit = 10
