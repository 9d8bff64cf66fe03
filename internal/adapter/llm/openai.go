package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
)

// OpenAIClient calls the OpenAI chat completions API. The SDK client is
// created on first use.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration

	once   sync.Once
	client openai.Client
}

// NewOpenAIClient creates an OpenAI client. baseURL may be empty.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, baseURL: baseURL, timeout: timeout}
}

var _ Client = (*OpenAIClient)(nil)

func (c *OpenAIClient) Provider() string { return "openai" }

func (c *OpenAIClient) init() {
	c.once.Do(func() {
		opts := []option.RequestOption{
			option.WithAPIKey(c.apiKey),
			// Throttling is reported to the caller as-is; no hidden retries.
			option.WithMaxRetries(0),
		}
		if c.baseURL != "" {
			opts = append(opts, option.WithBaseURL(c.baseURL))
		}
		if c.timeout > 0 {
			opts = append(opts, option.WithRequestTimeout(c.timeout))
		}
		c.client = openai.NewClient(opts...)
		logger.Debug("OpenAI client initialized", "provider", c.Provider())
	})
}

func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if c.apiKey == "" {
		return nil, classify(c.Provider(), 0, errors.New("openai API key not configured"))
	}
	c.init()

	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, classify(c.Provider(), apiErr.StatusCode, err)
		}
		return nil, classify(c.Provider(), 0, err)
	}
	if len(completion.Choices) == 0 {
		return nil, classify(c.Provider(), 0, fmt.Errorf("no choices returned for model %s", req.Model))
	}

	return &ChatCompletionResponse{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
		Usage: Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}, nil
}
