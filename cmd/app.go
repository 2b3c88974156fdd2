package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/sebrandon1/pulsepoint/internal/alert"
	"github.com/sebrandon1/pulsepoint/internal/config"
	"github.com/sebrandon1/pulsepoint/internal/logger"
	"github.com/sebrandon1/pulsepoint/internal/provider"
	"github.com/sebrandon1/pulsepoint/internal/resolver"
	"github.com/sebrandon1/pulsepoint/internal/triage"
)

// app holds the wired components shared by every command.
type app struct {
	cfg        *config.Config
	log        zerolog.Logger
	provider   provider.LLMProvider
	resolver   *resolver.Resolver
	triage     *triage.Orchestrator
	dispatcher *alert.Dispatcher
}

// loadConfig reads configuration and builds the logger. Missing credentials
// are a configuration error.
func loadConfig(logOut io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("%w: %w", triage.ErrConfiguration, err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := logger.NewWithWriter(logOut, cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("configuration error")
		return nil, log, fmt.Errorf("%w: %w", triage.ErrConfiguration, err)
	}
	return cfg, log, nil
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	p, err := provider.New(ctx, provider.Settings{
		Kind:          cfg.Provider,
		GeminiAPIKey:  cfg.GeminiKey,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Structured:    cfg.StructuredOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", triage.ErrConfiguration, err)
	}

	var sender alert.SMSSender
	if cfg.SMSEnabled {
		sender = alert.NewFast2SMS(alert.SMSConfig{
			Endpoint: cfg.SMSEndpoint,
			APIKey:   cfg.SMSAPIKey,
			Route:    cfg.SMSRoute,
			Timeout:  cfg.SMSTimeout,
		}, log)
	}
	dispatcher := alert.NewDispatcher(sender, cfg.SMSMessage, cfg.SMSTimeout, log)

	return &app{
		cfg:      cfg,
		log:      log,
		provider: p,
		resolver: resolver.New(p, cfg.Models, cfg.DefaultModel, log),
		triage: triage.New(triage.Options{
			Maps:             alert.MapLink{BaseURL: cfg.MapsBaseURL, Zoom: cfg.MapZoom},
			Alerter:          dispatcher,
			InferenceTimeout: cfg.InferenceTimeout,
		}, log),
		dispatcher: dispatcher,
	}, nil
}

// Close waits for pending alerts and releases the provider.
func (a *app) Close() error {
	a.dispatcher.Wait()
	if c, ok := a.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
