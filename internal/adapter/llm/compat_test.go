package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

func TestCompatClientCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		var body compatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages: %+v", body.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","model":"gpt","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`)
	}))
	defer server.Close()

	client := NewCompatClient(server.URL+"/", "sk-test", time.Second)
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model: "gpt",
		Messages: []ChatMessage{
			{Role: domain.RoleSystem, Content: "be brief"},
			{Role: domain.RoleUser, Content: "hello"},
		},
		Temperature: 0.5,
		MaxTokens:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Content)
	assert.Equal(t, "gpt", resp.Model)
	assert.Equal(t, Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}, resp.Usage)
}

func TestCompatClientClassifiesStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		throttled bool
	}{
		{name: "too many requests", status: http.StatusTooManyRequests, throttled: true},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "bad request", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error":{"message":"nope","type":"upstream_error"}}`)
			}))
			defer server.Close()

			client := NewCompatClient(server.URL, "", time.Second)
			_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
				Model:    "gpt",
				Messages: []ChatMessage{{Role: domain.RoleUser, Content: "hello"}},
			})
			require.Error(t, err)

			var ue *UpstreamError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.status, ue.StatusCode)
			assert.Equal(t, "compat", ue.Provider)
			assert.Equal(t, tt.throttled, errors.Is(err, domain.ErrUpstreamThrottled))
			assert.Equal(t, !tt.throttled, errors.Is(err, domain.ErrUpstreamUnavailable))
		})
	}
}

func TestCompatClientTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewCompatClient(server.URL, "", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model:    "gpt",
		Messages: []ChatMessage{{Role: domain.RoleUser, Content: "hello"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
