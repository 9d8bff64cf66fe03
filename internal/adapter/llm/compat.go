package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CompatClient talks to any OpenAI-compatible /v1/chat/completions endpoint
// (LiteLLM, vLLM, a local gateway).
type CompatClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCompatClient creates a client for an OpenAI-compatible gateway.
func NewCompatClient(baseURL, apiKey string, timeout time.Duration) *CompatClient {
	return &CompatClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ Client = (*CompatClient)(nil)

type compatRequest struct {
	Model       string          `json:"model"`
	Messages    []compatMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
	Stream      bool            `json:"stream"`
}

type compatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type compatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      compatMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
}

type compatErrorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *CompatClient) Provider() string { return "compat" }

// CreateChatCompletion sends a chat completion request (non-streaming).
func (c *CompatClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	payload := compatRequest{Model: req.Model}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, compatMessage{Role: string(m.Role), Content: m.Content})
	}
	if req.Temperature > 0 {
		t := req.Temperature
		payload.Temperature = &t
	}
	if req.MaxTokens > 0 {
		n := req.MaxTokens
		payload.MaxTokens = &n
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classify(c.Provider(), 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(c.Provider(), 0, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var errResp compatErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, classify(c.Provider(), resp.StatusCode, fmt.Errorf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type))
		}
		return nil, classify(c.Provider(), resp.StatusCode, errors.New(string(respBody)))
	}

	var result compatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, classify(c.Provider(), resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if len(result.Choices) == 0 {
		return nil, classify(c.Provider(), resp.StatusCode, errors.New("no choices returned"))
	}

	out := &ChatCompletionResponse{
		Content: result.Choices[0].Message.Content,
		Model:   result.Model,
	}
	if result.Usage != nil {
		out.Usage = *result.Usage
	}
	if out.Model == "" {
		out.Model = req.Model
	}
	return out, nil
}

// setHeaders sets common request headers.
func (c *CompatClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
