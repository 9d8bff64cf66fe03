package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// MockClient is an in-process Client used in mock upstream mode and tests.
// SetError makes it fail instead of replying.
type MockClient struct {
	provider string

	mu       sync.Mutex
	err      error
	reply    string
	requests []ChatCompletionRequest
}

// NewMockClient creates a mock client reporting itself as provider.
func NewMockClient(provider string) *MockClient {
	return &MockClient{provider: provider}
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Provider() string { return m.provider }

// CreateChatCompletion records the request and returns a canned reply.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, *req)

	if err := ctx.Err(); err != nil {
		return nil, classify(m.provider, 0, err)
	}
	if m.err != nil {
		return nil, m.err
	}

	content := m.reply
	if content == "" {
		content = m.generateMockResponse(req)
	}
	prompt := m.estimateTokens(req)
	completion := int64(len(content) / 4)
	return &ChatCompletionResponse{
		Content: content,
		Model:   req.Model,
		Usage: Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}, nil
}

// Requests returns a copy of every request seen so far.
func (m *MockClient) Requests() []ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatCompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// SetError makes subsequent calls fail with err.
func (m *MockClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetReply fixes the reply content.
func (m *MockClient) SetReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = reply
}

// generateMockResponse echoes the last user message.
func (m *MockClient) generateMockResponse(req *ChatCompletionRequest) string {
	var lastUserMessage string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == domain.RoleUser {
			lastUserMessage = req.Messages[i].Content
			break
		}
	}
	if lastUserMessage == "" {
		return "[MOCK] This is a mock response from the LLM client."
	}
	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(lastUserMessage, 100))
}

// estimateTokens provides a rough token count estimate.
func (m *MockClient) estimateTokens(req *ChatCompletionRequest) int64 {
	var total int64
	for _, msg := range req.Messages {
		total += int64(len(msg.Content) / 4)
	}
	return total
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
