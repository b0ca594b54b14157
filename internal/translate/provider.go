package translate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cuesync/internal/config"
	"cuesync/internal/logging"
	"cuesync/internal/page"
	"cuesync/internal/services"
)

const (
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryAttempts  = 5
)

// Request is one translation job.
type Request struct {
	Text       string
	TargetLang string
	Context    page.Context
}

// Provider translates a subtitle document.
type Provider interface {
	Name() string
	Translate(ctx context.Context, req Request) (string, error)
}

// Option customizes provider construction.
type Option func(*transport)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *transport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(t *transport) {
		t.baseDelay = baseDelay
		t.maxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(t *transport) {
		t.sleeper = sleeper
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(t *transport) {
		if timeout > 0 && t.httpClient != nil {
			t.httpClient.Timeout = timeout
		}
	}
}

// WithMaxAttempts sets how many times a request is tried.
func WithMaxAttempts(attempts int) Option {
	return func(t *transport) {
		if attempts > 0 {
			t.attempts = attempts
		}
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *transport) {
		t.logger = logger
	}
}

// New builds the provider selected by cfg.Translation.Provider.
func New(cfg *config.Config, opts ...Option) (Provider, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "new provider", "config required", nil)
	}
	if err := cfg.RequireCredential(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "new provider", "missing credential", err)
	}
	settings := cfg.ActiveProvider()
	name := strings.ToLower(strings.TrimSpace(cfg.Translation.Provider))
	opts = append([]Option{
		WithTimeout(time.Duration(cfg.Translation.TimeoutSeconds) * time.Second),
		WithMaxAttempts(cfg.Translation.MaxAttempts),
	}, opts...)
	switch name {
	case config.ProviderOpenAI:
		return NewOpenAI(settings, opts...), nil
	case config.ProviderGemini:
		return NewGemini(settings, opts...), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "translate", "new provider",
			fmt.Sprintf("unknown provider %q", cfg.Translation.Provider), nil)
	}
}

func newTransport(provider string, opts ...Option) *transport {
	t := &transport{
		provider:   provider,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		attempts:   defaultRetryAttempts,
		baseDelay:  defaultRetryBaseDelay,
		maxDelay:   defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.NewComponentLogger(t.logger, "translate")
	return t
}

func validateRequest(provider string, req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return services.Wrap(services.ErrValidation, provider, "translate", "subtitle text required", nil)
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		return services.Wrap(services.ErrValidation, provider, "translate", "target language required", nil)
	}
	return nil
}

// cleanOutput trims the model reply and removes a wrapping code fence.
func cleanOutput(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	if newline := strings.IndexAny(body, "\r\n"); newline >= 0 {
		// Drop an info string such as ```vtt.
		if !strings.Contains(body[:newline], "-->") {
			body = body[newline:]
		}
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
