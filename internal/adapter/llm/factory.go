package llm

import (
	"fmt"
	"time"

	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/logger"
)

// Accounts is the primary/secondary client pair for one provider.
// Secondary is nil when no secondary key is configured.
type Accounts struct {
	Primary   Client
	Secondary Client
}

// NewClient creates a client for provider using apiKey.
func NewClient(provider string, pc config.ProviderConfig, apiKey string, timeout time.Duration) (Client, error) {
	switch provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(apiKey, pc.BaseURL, timeout), nil
	case config.ProviderGemini:
		return NewGeminiClient(apiKey, pc.BaseURL, timeout), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(apiKey, pc.BaseURL, timeout), nil
	case config.ProviderCompat:
		return NewCompatClient(pc.BaseURL, apiKey, timeout), nil
	}
	return nil, fmt.Errorf("unsupported provider %q", provider)
}

// NewAccounts builds the account pair for provider. In mock upstream mode
// both slots are mock clients.
func NewAccounts(cfg *config.Config, provider string) (Accounts, error) {
	if cfg.MockUpstream() {
		logger.Info("Upstream mode is mock, using mock LLM client", "provider", provider)
		return Accounts{Primary: NewMockClient(provider), Secondary: NewMockClient(provider)}, nil
	}

	pc, ok := cfg.Providers.Get(provider)
	if !ok {
		return Accounts{}, fmt.Errorf("unsupported provider %q", provider)
	}
	primary, err := NewClient(provider, pc, pc.APIKey, cfg.Upstream.Timeout)
	if err != nil {
		return Accounts{}, err
	}
	accounts := Accounts{Primary: primary}
	if pc.SecondaryAPIKey != "" {
		accounts.Secondary, err = NewClient(provider, pc, pc.SecondaryAPIKey, cfg.Upstream.Timeout)
		if err != nil {
			return Accounts{}, err
		}
	}
	return accounts, nil
}
