package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned when a required secret is not set.
var ErrMissingCredentials = errors.New("missing credentials")

// Providers.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// providerDefaults holds the priority list and fallback model per provider.
var providerDefaults = map[string]struct {
	models       []string
	defaultModel string
}{
	ProviderGemini: {[]string{"gemini-1.5-flash", "gemini-1.5-flash-latest", "gemini-pro"}, "gemini-1.5-flash"},
	ProviderOllama: {[]string{"llama3.2-vision", "llava", "llama3.2"}, "llama3.2:latest"},
	ProviderOpenAI: {[]string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"}, "gpt-4o-mini"},
	ProviderMock:   {[]string{"mock-triage"}, "mock-triage"},
}

// Config holds the environment driven configuration.
type Config struct {
	// Service
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`

	// Inference
	Provider         string        `env:"PULSEPOINT_PROVIDER" envDefault:"gemini"`
	Models           []string      `env:"PULSEPOINT_MODELS" envSeparator:","`
	DefaultModel     string        `env:"PULSEPOINT_DEFAULT_MODEL"`
	StructuredOutput bool          `env:"STRUCTURED_OUTPUT" envDefault:"true"`
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"60s"`
	GeminiKey        string        `env:"GEMINI_KEY"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`

	// Alerting
	SMSEnabled  bool          `env:"SMS_ENABLED" envDefault:"true"`
	SMSAPIKey   string        `env:"SMS_API_KEY"`
	SMSEndpoint string        `env:"SMS_ENDPOINT" envDefault:"https://www.fast2sms.com/dev/bulkV2"`
	SMSRoute    string        `env:"SMS_ROUTE" envDefault:"q"`
	SMSMessage  string        `env:"SMS_MESSAGE" envDefault:"EMERGENCY: Level 1/2 Triage."`
	SMSTimeout  time.Duration `env:"SMS_TIMEOUT" envDefault:"10s"`
	MapsBaseURL string        `env:"MAPS_BASE_URL" envDefault:"https://www.google.com/maps"`
	MapZoom     int           `env:"MAP_ZOOM" envDefault:"14"`

	// Form defaults
	DefaultContact string `env:"DEFAULT_CONTACT" envDefault:"9876543210"`
	DefaultAge     int    `env:"DEFAULT_AGE" envDefault:"25"`
}

// Load reads envFile when it exists, then parses the environment into Config.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	cfg.GeminiKey = strings.TrimSpace(cfg.GeminiKey)
	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)
	cfg.SMSAPIKey = strings.TrimSpace(cfg.SMSAPIKey)
	cfg.DefaultModel = strings.TrimSpace(cfg.DefaultModel)

	var models []string
	for _, m := range cfg.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	cfg.Models = models

	defaults, ok := providerDefaults[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported PULSEPOINT_PROVIDER %q", cfg.Provider)
	}
	if len(cfg.Models) == 0 {
		cfg.Models = defaults.models
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.defaultModel
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 * 1024 * 1024
	}
	if cfg.DefaultAge < 1 || cfg.DefaultAge > 100 {
		cfg.DefaultAge = 25
	}
	return cfg, nil
}

// Validate reports the first missing secret the configuration needs.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiKey == "" {
			return fmt.Errorf("%w: GEMINI_KEY is required for the gemini provider", ErrMissingCredentials)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for the openai provider", ErrMissingCredentials)
		}
	}
	if c.SMSEnabled && c.SMSAPIKey == "" {
		return fmt.Errorf("%w: SMS_API_KEY is required when SMS_ENABLED is true", ErrMissingCredentials)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}
