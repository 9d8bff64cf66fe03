// Package llm provides provider-neutral access to upstream LLM APIs.
package llm

import (
	"context"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// ChatMessage is one entry of an assembled prompt.
type ChatMessage struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// ChatCompletionRequest is a non-streaming completion request. System
// entries may appear anywhere; providers without a system role lift them out.
type ChatCompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// ChatCompletionResponse is the provider's reply.
type ChatCompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Client defines the interface every upstream provider implements.
// Errors returned by CreateChatCompletion are *UpstreamError.
type Client interface {
	// Provider names the upstream, e.g. "openai".
	Provider() string

	// CreateChatCompletion sends a chat completion request (non-streaming).
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// splitSystem separates system entries from the conversation.
func splitSystem(messages []ChatMessage) (string, []ChatMessage) {
	var system string
	rest := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
