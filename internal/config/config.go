// Package config provides configuration for the governor service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appName = "governor"

// Provider names accepted by mode configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderCompat    = "compat"
)

// UpstreamModeMock replaces every provider with the in-process mock client.
const UpstreamModeMock = "mock"

// Config holds the governor configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Modes     ModesConfig     `mapstructure:"modes"`
	Session   SessionConfig   `mapstructure:"session"`
	Sweep     SweepConfig     `mapstructure:"sweep"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Policy    PolicyConfig    `mapstructure:"policy"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	// HTTPPort serves the caller-facing /v1 API.
	HTTPPort int `mapstructure:"http_port"`
	// InternalPort serves /metrics, /internal/* and health for operators.
	InternalPort    int           `mapstructure:"internal_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

// UpstreamConfig applies to every provider call.
type UpstreamConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Mode    string        `mapstructure:"mode"`
}

// ProviderConfig describes one upstream account pair.
type ProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
	// SecondaryAPIKey is handed to privileged callers on alternate calls.
	// Empty means the primary key is used for both slots.
	SecondaryAPIKey string `mapstructure:"secondary_api_key"`
	BaseURL         string `mapstructure:"base_url"`
}

type ProvidersConfig struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Compat    ProviderConfig `mapstructure:"compat"`
}

// Get returns the provider block for name.
func (p ProvidersConfig) Get(name string) (ProviderConfig, bool) {
	switch name {
	case ProviderOpenAI:
		return p.OpenAI, true
	case ProviderGemini:
		return p.Gemini, true
	case ProviderAnthropic:
		return p.Anthropic, true
	case ProviderCompat:
		return p.Compat, true
	}
	return ProviderConfig{}, false
}

// ModeConfig selects the upstream model used by a chat mode.
type ModeConfig struct {
	Provider     string  `mapstructure:"provider"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	SystemPrompt string  `mapstructure:"system_prompt"`

	// DowngradeModel replaces Model when the quota policy says "downgrade".
	DowngradeModel string `mapstructure:"downgrade_model"`
}

type ModesConfig struct {
	Developer ModeConfig `mapstructure:"developer"`
	General   ModeConfig `mapstructure:"general"`
}

// SessionConfig holds retention and prompt sizing.
type SessionConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	ContextTTL time.Duration `mapstructure:"context_ttl"`
	// HistorySize is how many recent messages enter an assembled prompt.
	HistorySize int `mapstructure:"history_size"`
	// TokenBudget trims history from the oldest message when > 0.
	TokenBudget int `mapstructure:"token_budget"`
}

type SweepConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BatchSize int           `mapstructure:"batch_size"`
}

// RateLimitConfig mirrors the limiter's timing rules.
type RateLimitConfig struct {
	Window         time.Duration `mapstructure:"window"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
	BurstInterval  time.Duration `mapstructure:"burst_interval"`
	BurstThreshold int           `mapstructure:"burst_threshold"`
}

type PricingConfig struct {
	// File optionally overrides the built-in pricing table (YAML).
	File string `mapstructure:"file"`
}

type PolicyConfig struct {
	// File optionally overrides the built-in rego model policy.
	File string `mapstructure:"file"`
}

// Load reads .env, the optional config file and GOVERNOR_* environment variables.
// configFile may be empty, in which case governor.yaml is searched for.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	configureViper(v, configFile)
	setDefaults(v)
	bindLegacyEnv(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configureViper(v *viper.Viper, configFile string) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	}
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.internal_port", 8081)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "file:governor.db?cache=shared&mode=rwc")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)

	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.mode", "live")

	for _, p := range []string{ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderCompat} {
		v.SetDefault("providers."+p+".api_key", "")
		v.SetDefault("providers."+p+".secondary_api_key", "")
		v.SetDefault("providers."+p+".base_url", "")
	}
	v.SetDefault("providers.compat.base_url", "http://localhost:4000")

	v.SetDefault("modes.developer.provider", ProviderOpenAI)
	v.SetDefault("modes.developer.model", "gpt-4-turbo")
	v.SetDefault("modes.developer.temperature", 0.8)
	v.SetDefault("modes.developer.max_tokens", 1500)
	v.SetDefault("modes.developer.system_prompt", "")
	v.SetDefault("modes.developer.downgrade_model", "gpt-3.5-turbo")
	v.SetDefault("modes.general.provider", ProviderGemini)
	v.SetDefault("modes.general.model", "gemini-2.0-flash")
	v.SetDefault("modes.general.temperature", 0.7)
	v.SetDefault("modes.general.max_tokens", 1024)
	v.SetDefault("modes.general.system_prompt", "")
	v.SetDefault("modes.general.downgrade_model", "gemini-2.0-flash")

	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.context_ttl", 24*time.Hour)
	v.SetDefault("session.history_size", 10)
	v.SetDefault("session.token_budget", 0)

	v.SetDefault("sweep.interval", 5*time.Minute)
	v.SetDefault("sweep.timeout", 10*time.Second)
	v.SetDefault("sweep.batch_size", 500)

	v.SetDefault("ratelimit.window", time.Hour)
	v.SetDefault("ratelimit.cooldown", 5*time.Minute)
	v.SetDefault("ratelimit.burst_interval", 6*time.Second)
	v.SetDefault("ratelimit.burst_threshold", 10)

	v.SetDefault("pricing.file", "")
	v.SetDefault("policy.file", "")
}

// bindLegacyEnv accepts the provider variables most deployments already export.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("providers.openai.api_key", "GOVERNOR_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.openai.secondary_api_key", "GOVERNOR_PROVIDERS_OPENAI_SECONDARY_API_KEY", "OPENAI_API_KEY_LEGACY")
	_ = v.BindEnv("providers.gemini.api_key", "GOVERNOR_PROVIDERS_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("providers.anthropic.api_key", "GOVERNOR_PROVIDERS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.HTTPPort <= 0 || c.Server.InternalPort <= 0 {
		errs = append(errs, errors.New("server ports must be positive"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be positive"))
	}
	if c.Session.TTL <= 0 || c.Session.ContextTTL <= 0 {
		errs = append(errs, errors.New("session ttl values must be positive"))
	}
	if c.Session.HistorySize <= 0 {
		errs = append(errs, errors.New("session.history_size must be positive"))
	}
	if c.Sweep.Interval <= 0 || c.Sweep.BatchSize <= 0 {
		errs = append(errs, errors.New("sweep interval and batch size must be positive"))
	}
	if c.RateLimit.Window <= 0 || c.RateLimit.Cooldown <= 0 || c.RateLimit.BurstInterval <= 0 {
		errs = append(errs, errors.New("ratelimit durations must be positive"))
	}
	for name, m := range map[string]ModeConfig{"developer": c.Modes.Developer, "general": c.Modes.General} {
		if _, ok := c.Providers.Get(m.Provider); !ok {
			errs = append(errs, fmt.Errorf("modes.%s.provider %q is not supported", name, m.Provider))
		}
		if m.Model == "" {
			errs = append(errs, fmt.Errorf("modes.%s.model is required", name))
		}
	}
	return errors.Join(errs...)
}

// MockUpstream reports whether providers are replaced by the mock client.
func (c *Config) MockUpstream() bool {
	return strings.EqualFold(c.Upstream.Mode, UpstreamModeMock)
}

// Default returns the built-in defaults without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not unmarshal: %v", err))
	}
	return cfg
}
