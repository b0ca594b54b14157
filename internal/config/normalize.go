package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeTranslation()
	c.normalizeSpeech()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeHost()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if value, ok := os.LookupEnv("CUESYNC_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.API.Token = strings.TrimSpace(value)
	}
}

func (c *Config) normalizeTranslation() {
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	if c.Translation.Provider == "" {
		c.Translation.Provider = ProviderOpenAI
	}
	c.Translation.TargetLanguage = strings.TrimSpace(c.Translation.TargetLanguage)
	if c.Translation.TargetLanguage == "" {
		c.Translation.TargetLanguage = defaultTargetLanguage
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslationTimeout
	}
	if c.Translation.MaxAttempts <= 0 {
		c.Translation.MaxAttempts = defaultTranslationAttempts
	}
	normalizeProvider(&c.Translation.OpenAI, "OPENAI_API_KEY", defaultOpenAIBaseURL, defaultOpenAIModel)
	normalizeProvider(&c.Translation.Gemini, "GEMINI_API_KEY", defaultGeminiBaseURL, defaultGeminiModel)
}

// Environment credentials win over file values.
func normalizeProvider(p *ProviderSettings, envKey, baseURL, model string) {
	p.APIKey = strings.TrimSpace(p.APIKey)
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		p.APIKey = strings.TrimSpace(value)
	}
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	p.Model = strings.TrimSpace(p.Model)
	if p.Model == "" {
		p.Model = model
	}
	if p.Temperature == 0 {
		p.Temperature = defaultTemperature
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.Voice = strings.TrimSpace(c.Speech.Voice)
	c.Speech.PreferredLanguage = strings.TrimSpace(c.Speech.PreferredLanguage)
	if c.Speech.PreferredLanguage == "" {
		c.Speech.PreferredLanguage = c.Translation.TargetLanguage
	}
	if c.Speech.Rate == 0 {
		c.Speech.Rate = defaultSpeechRate
	}
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.Store.SQLitePath = strings.TrimSpace(c.Store.SQLitePath)
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = filepath.Join(c.Paths.DataDir, "cuesync.db")
	}
	var err error
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	c.Store.RedisAddr = strings.TrimSpace(c.Store.RedisAddr)
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = defaultRedisAddr
	}
	c.Store.RedisPrefix = strings.Trim(strings.TrimSpace(c.Store.RedisPrefix), ":")
	if c.Store.RedisPrefix == "" {
		c.Store.RedisPrefix = defaultRedisPrefix
	}
	return nil
}

func (c *Config) normalizeHost() {
	if c.Host.NavigationPollMillis <= 0 {
		c.Host.NavigationPollMillis = defaultNavigationPollMillis
	}
	if c.Host.FetchTimeoutSeconds <= 0 {
		c.Host.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
