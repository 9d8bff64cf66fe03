package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
)

// defaultAnthropicMaxTokens is used when the mode does not set max_tokens;
// the Messages API requires one.
const defaultAnthropicMaxTokens = 1024

// AnthropicClient calls Anthropic's Messages API.
type AnthropicClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration

	once   sync.Once
	client anthropic.Client
}

// NewAnthropicClient creates an Anthropic client with lazy initialization.
func NewAnthropicClient(apiKey, baseURL string, timeout time.Duration) *AnthropicClient {
	return &AnthropicClient{apiKey: apiKey, baseURL: baseURL, timeout: timeout}
}

var _ Client = (*AnthropicClient)(nil)

func (c *AnthropicClient) Provider() string { return "anthropic" }

func (c *AnthropicClient) init() {
	c.once.Do(func() {
		opts := []option.RequestOption{
			option.WithAPIKey(c.apiKey),
			option.WithMaxRetries(0),
		}
		if c.baseURL != "" {
			opts = append(opts, option.WithBaseURL(c.baseURL))
		}
		if c.timeout > 0 {
			opts = append(opts, option.WithRequestTimeout(c.timeout))
		}
		c.client = anthropic.NewClient(opts...)
		logger.Debug("Anthropic client initialized", "provider", c.Provider())
	})
}

func (c *AnthropicClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if c.apiKey == "" {
		return nil, classify(c.Provider(), 0, errors.New("anthropic API key not configured"))
	}
	c.init()

	system, conversation := splitSystem(req.Messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: defaultAnthropicMaxTokens,
		Messages:  make([]anthropic.MessageParam, 0, len(conversation)),
	}
	for _, m := range conversation {
		if m.Role == domain.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, classify(c.Provider(), apiErr.StatusCode, err)
		}
		return nil, classify(c.Provider(), 0, err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		content.WriteString(block.Text)
	}
	return &ChatCompletionResponse{
		Content: content.String(),
		Model:   string(message.Model),
		Usage: Usage{
			PromptTokens:     message.Usage.InputTokens,
			CompletionTokens: message.Usage.OutputTokens,
			TotalTokens:      message.Usage.InputTokens + message.Usage.OutputTokens,
		},
	}, nil
}
