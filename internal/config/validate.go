package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranslation() error {
	switch c.Translation.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("translation.provider %q is not supported (use %q or %q)", c.Translation.Provider, ProviderOpenAI, ProviderGemini)
	}
	if _, err := language.Parse(c.Translation.TargetLanguage); err != nil {
		return fmt.Errorf("translation.target_language %q is not a valid language tag: %w", c.Translation.TargetLanguage, err)
	}
	for name, p := range map[string]ProviderSettings{
		"translation.openai": c.Translation.OpenAI,
		"translation.gemini": c.Translation.Gemini,
	} {
		if p.Temperature < 0 || p.Temperature > 2 {
			return fmt.Errorf("%s.temperature must be between 0 and 2", name)
		}
	}
	return nil
}

// RequireCredential reports a configuration error when the active provider has no API key.
func (c *Config) RequireCredential() error {
	if c.ActiveProvider().APIKey != "" {
		return nil
	}
	envKey := "OPENAI_API_KEY"
	if c.Translation.Provider == ProviderGemini {
		envKey = "GEMINI_API_KEY"
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("translation.%s.api_key is required. Set %s env var or edit %s (create with 'cuesync config init')", c.Translation.Provider, envKey, defaultPath)
}

func (c *Config) validateSpeech() error {
	if c.Speech.Rate < MinSpeechRate || c.Speech.Rate > MaxSpeechRate {
		return fmt.Errorf("speech.rate must be between %.1f and %.1f", MinSpeechRate, MaxSpeechRate)
	}
	if _, err := language.Parse(c.Speech.PreferredLanguage); err != nil {
		return fmt.Errorf("speech.preferred_language %q is not a valid language tag: %w", c.Speech.PreferredLanguage, err)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("store.sqlite_path must be set when store.backend is sqlite")
		}
	case StoreRedis:
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			return errors.New("store.redis_addr must be set when store.backend is redis")
		}
	default:
		return fmt.Errorf("store.backend %q is not supported (use %q or %q)", c.Store.Backend, StoreSQLite, StoreRedis)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
