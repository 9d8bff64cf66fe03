package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

func newJSONServer(t *testing.T, status int, body string, pathSuffix string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, pathSuffix) {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func simpleRequest(model string) *ChatCompletionRequest {
	return &ChatCompletionRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: domain.RoleSystem, Content: "be brief"},
			{Role: domain.RoleUser, Content: "hello"},
		},
		MaxTokens: 16,
	}
}

func TestOpenAIClient(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := newJSONServer(t, http.StatusOK,
			`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"usage":{"prompt_tokens":7,"completion_tokens":2,"total_tokens":9}}`,
			"/chat/completions")
		client := NewOpenAIClient("sk-test", server.URL+"/", time.Second)

		resp, err := client.CreateChatCompletion(context.Background(), simpleRequest("gpt-4-turbo"))
		require.NoError(t, err)
		assert.Equal(t, "hi", resp.Content)
		assert.Equal(t, int64(7), resp.Usage.PromptTokens)
		assert.Equal(t, int64(2), resp.Usage.CompletionTokens)
	})

	t.Run("throttled", func(t *testing.T) {
		server := newJSONServer(t, http.StatusTooManyRequests,
			`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`,
			"/chat/completions")
		client := NewOpenAIClient("sk-test", server.URL+"/", time.Second)

		_, err := client.CreateChatCompletion(context.Background(), simpleRequest("gpt-4-turbo"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUpstreamThrottled)
	})

	t.Run("missing key", func(t *testing.T) {
		client := NewOpenAIClient("", "", time.Second)
		_, err := client.CreateChatCompletion(context.Background(), simpleRequest("gpt-4-turbo"))
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})
}

func TestAnthropicClient(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := newJSONServer(t, http.StatusOK,
			`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest","content":[{"type":"text","text":"hi"}],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":3}}`,
			"/v1/messages")
		client := NewAnthropicClient("sk-ant", server.URL, time.Second)

		resp, err := client.CreateChatCompletion(context.Background(), simpleRequest("claude-3-5-haiku-latest"))
		require.NoError(t, err)
		assert.Equal(t, "hi", resp.Content)
		assert.Equal(t, int64(8), resp.Usage.TotalTokens)
	})

	t.Run("overloaded", func(t *testing.T) {
		server := newJSONServer(t, http.StatusServiceUnavailable,
			`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			"/v1/messages")
		client := NewAnthropicClient("sk-ant", server.URL, time.Second)

		_, err := client.CreateChatCompletion(context.Background(), simpleRequest("claude-3-5-haiku-latest"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.NotErrorIs(t, err, domain.ErrUpstreamThrottled)
	})
}

func TestGeminiClientThrottled(t *testing.T) {
	server := newJSONServer(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`,
		":generateContent")
	client := NewGeminiClient("gm-test", server.URL, time.Second)

	_, err := client.CreateChatCompletion(context.Background(), simpleRequest("gemini-2.0-flash"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamThrottled)
}
