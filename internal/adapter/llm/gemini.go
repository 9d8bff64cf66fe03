package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiClient creates a Gemini client. baseURL may be empty.
func NewGeminiClient(apiKey, baseURL string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, baseURL: baseURL, timeout: timeout}
}

var _ Client = (*GeminiClient)(nil)

func (c *GeminiClient) Provider() string { return "gemini" }

func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	if c.apiKey == "" {
		return nil, errors.New("gemini API key not configured")
	}

	cfg := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions.BaseURL = c.baseURL
	}
	if c.timeout > 0 {
		timeout := c.timeout
		cfg.HTTPOptions.Timeout = &timeout
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.client = client
	logger.Debug("Gemini client initialized", "provider", c.Provider())
	return client, nil
}

func (c *GeminiClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	client, err := c.initializeClientIfNeeded(ctx)
	if err != nil {
		return nil, classify(c.Provider(), 0, err)
	}

	system, conversation := splitSystem(req.Messages)
	contents := make([]*genai.Content, 0, len(conversation))
	for _, m := range conversation {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = genai.Role(genai.RoleModel)
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		config.Temperature = &t
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, classify(c.Provider(), apiErr.Code, err)
		}
		return nil, classify(c.Provider(), 0, err)
	}

	out := &ChatCompletionResponse{
		Content: resp.Text(),
		Model:   req.Model,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
		out.Usage.TotalTokens = out.Usage.PromptTokens + out.Usage.CompletionTokens
	}
	return out, nil
}
