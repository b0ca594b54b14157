package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cuesync/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "cuesync")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Store.SQLitePath != filepath.Join(wantData, "cuesync.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.Store.SQLitePath)
	}
	if cfg.API.Bind != "127.0.0.1:7491" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.Translation.Provider != config.ProviderOpenAI {
		t.Fatalf("unexpected provider: %q", cfg.Translation.Provider)
	}
	if cfg.Translation.OpenAI.Model != "gpt-4o" {
		t.Fatalf("unexpected openai model: %q", cfg.Translation.OpenAI.Model)
	}
	if cfg.Translation.Gemini.Model != "gemini-1.5-pro" {
		t.Fatalf("unexpected gemini model: %q", cfg.Translation.Gemini.Model)
	}
	if cfg.Translation.OpenAI.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", cfg.Translation.OpenAI.Temperature)
	}
	if !cfg.Parse.LogDropped {
		t.Fatal("expected dropped cue logging enabled by default")
	}
	if cfg.Host.NavigationPollMillis != 1000 {
		t.Fatalf("unexpected poll interval: %d", cfg.Host.NavigationPollMillis)
	}
	if cfg.Speech.Enabled {
		t.Fatal("expected speech disabled by default")
	}
	if cfg.Speech.Rate != 1.0 {
		t.Fatalf("unexpected speech rate: %v", cfg.Speech.Rate)
	}
	if cfg.LockPath() != filepath.Join(wantData, "cuesync.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cuesync.toml")
	t.Setenv("GEMINI_API_KEY", "")

	type payload struct {
		Translation struct {
			Provider       string `toml:"provider"`
			TargetLanguage string `toml:"target_language"`
			Gemini         struct {
				APIKey string `toml:"api_key"`
				Model  string `toml:"model"`
			} `toml:"gemini"`
		} `toml:"translation"`
		Store struct {
			Backend     string `toml:"backend"`
			RedisPrefix string `toml:"redis_prefix"`
		} `toml:"store"`
		Speech struct {
			Rate float64 `toml:"rate"`
		} `toml:"speech"`
	}
	custom := payload{}
	custom.Translation.Provider = " Gemini "
	custom.Translation.TargetLanguage = "ja"
	custom.Translation.Gemini.APIKey = "file-gemini"
	custom.Translation.Gemini.Model = "gemini-2.0-flash"
	custom.Store.Backend = "redis"
	custom.Store.RedisPrefix = "course:"
	custom.Speech.Rate = 1.5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Translation.Provider != config.ProviderGemini {
		t.Fatalf("expected provider normalized to gemini, got %q", cfg.Translation.Provider)
	}
	active := cfg.ActiveProvider()
	if active.APIKey != "file-gemini" || active.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected active provider settings: %+v", active)
	}
	if cfg.Translation.TargetLanguage != "ja" {
		t.Fatalf("unexpected target language: %q", cfg.Translation.TargetLanguage)
	}
	if cfg.Speech.PreferredLanguage != "zh-CN" {
		t.Fatalf("expected speech language default to survive, got %q", cfg.Speech.PreferredLanguage)
	}
	if cfg.Store.Backend != config.StoreRedis {
		t.Fatalf("unexpected backend: %q", cfg.Store.Backend)
	}
	if cfg.Store.RedisPrefix != "course" {
		t.Fatalf("expected trailing colon trimmed from prefix, got %q", cfg.Store.RedisPrefix)
	}
	if cfg.Speech.Rate != 1.5 {
		t.Fatalf("unexpected rate: %v", cfg.Speech.Rate)
	}
	if err := cfg.RequireCredential(); err != nil {
		t.Fatalf("RequireCredential: %v", err)
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "cuesync.toml")

	type payload struct {
		API struct {
			Token string `toml:"token"`
		} `toml:"api"`
		Translation struct {
			OpenAI struct {
				APIKey string `toml:"api_key"`
			} `toml:"openai"`
			Gemini struct {
				APIKey string `toml:"api_key"`
			} `toml:"gemini"`
		} `toml:"translation"`
	}
	custom := payload{}
	custom.API.Token = "file-token"
	custom.Translation.OpenAI.APIKey = "file-openai"
	custom.Translation.Gemini.APIKey = "file-gemini"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("CUESYNC_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Translation.OpenAI.APIKey != "env-openai" {
		t.Errorf("expected OpenAI key from env, got %q", cfg.Translation.OpenAI.APIKey)
	}
	if cfg.Translation.Gemini.APIKey != "env-gemini" {
		t.Errorf("expected Gemini key from env, got %q", cfg.Translation.Gemini.APIKey)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("expected API token from env, got %q", cfg.API.Token)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_openai_api_key_here") {
		t.Fatalf("sample config missing placeholder OpenAI key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "cuesync") {
		t.Fatalf("expected data dir to contain cuesync, got %q", cfg.Paths.DataDir)
	}
	if cfg.Store.Backend != config.StoreSQLite {
		t.Fatalf("unexpected sample backend: %q", cfg.Store.Backend)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown provider", func(c *config.Config) { c.Translation.Provider = "deepl" }},
		{"bad target language", func(c *config.Config) { c.Translation.TargetLanguage = "not a tag!" }},
		{"rate too low", func(c *config.Config) { c.Speech.Rate = 0.1 }},
		{"rate too high", func(c *config.Config) { c.Speech.Rate = 3 }},
		{"unknown backend", func(c *config.Config) { c.Store.Backend = "cassandra" }},
		{"redis without addr", func(c *config.Config) {
			c.Store.Backend = config.StoreRedis
			c.Store.RedisAddr = ""
		}},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"temperature out of range", func(c *config.Config) { c.Translation.OpenAI.Temperature = 5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.SQLitePath = "/tmp/cuesync.db"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	cfg.Store.SQLitePath = "/tmp/cuesync.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestRequireCredentialNamesEnvVar(t *testing.T) {
	cfg := config.Default()
	cfg.Translation.Provider = config.ProviderGemini
	err := cfg.RequireCredential()
	if err == nil {
		t.Fatal("expected missing credential error")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected env var hint, got %v", err)
	}
}
