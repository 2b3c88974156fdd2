package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

// Fast2SMS gateway defaults.
const (
	DefaultSMSEndpoint = "https://www.fast2sms.com/dev/bulkV2"
	DefaultSMSRoute    = "q"
	DefaultSMSMessage  = "EMERGENCY: Level 1/2 Triage."
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, number, message string) error
}

// SMSConfig configures the gateway client.
type SMSConfig struct {
	Endpoint string
	APIKey   string
	Route    string
	Timeout  time.Duration
}

// Fast2SMS posts form-encoded messages to a Fast2SMS-compatible bulk endpoint.
// The response body is not interpreted; any non-2xx status is a failure.
type Fast2SMS struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	route    string
}

// NewFast2SMS creates a gateway client.
func NewFast2SMS(cfg SMSConfig, log zerolog.Logger) *Fast2SMS {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultSMSEndpoint
	}
	if cfg.Route == "" {
		cfg.Route = DefaultSMSRoute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().SetTimeout(cfg.Timeout)
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		log.Debug().
			Str("client", "sms").
			Int("status", r.StatusCode()).
			Str("url", r.Request.URL).
			Msg("HTTP client request")
		return nil
	})

	return &Fast2SMS{
		client:   client,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		route:    cfg.Route,
	}
}

// Send implements SMSSender.
func (s *Fast2SMS) Send(ctx context.Context, number, message string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("authorization", s.apiKey).
		SetFormData(map[string]string{
			"message": message,
			"route":   s.route,
			"numbers": number,
		}).
		Post(s.endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAlertDelivery, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: gateway returned status %d", ErrAlertDelivery, resp.StatusCode())
	}
	return nil
}
