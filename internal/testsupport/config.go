package testsupport

import (
	"path/filepath"
	"testing"

	"cuesync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The OpenAI provider is selected with a dummy key.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.SQLitePath = filepath.Join(cfgVal.Paths.DataDir, "cuesync.db")
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.Translation.OpenAI.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithProvider selects a translation provider and points it at baseURL.
func WithProvider(name, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.Provider = name
		switch name {
		case config.ProviderGemini:
			b.cfg.Translation.Gemini.APIKey = "test"
			b.cfg.Translation.Gemini.BaseURL = baseURL
		default:
			b.cfg.Translation.OpenAI.BaseURL = baseURL
		}
	}
}

// WithAPIToken sets the daemon bearer token.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Token = token
	}
}

// WithSpeech enables speech at the given rate.
func WithSpeech(rate float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Speech.Enabled = true
		b.cfg.Speech.Rate = rate
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
