package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// API contains the companion daemon's listener settings.
type API struct {
	Bind  string `toml:"bind"`
	Token string `toml:"token"`
}

// ProviderSettings holds the connection details for one translation backend.
type ProviderSettings struct {
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
}

// Translation selects the translation backend and target language.
type Translation struct {
	Provider       string           `toml:"provider"`
	TargetLanguage string           `toml:"target_language"`
	TimeoutSeconds int              `toml:"timeout_seconds"`
	MaxAttempts    int              `toml:"max_attempts"`
	OpenAI         ProviderSettings `toml:"openai"`
	Gemini         ProviderSettings `toml:"gemini"`
}

// Speech contains text-to-speech playback defaults.
type Speech struct {
	Enabled           bool    `toml:"enabled"`
	Voice             string  `toml:"voice"`
	Rate              float64 `toml:"rate"`
	PreferredLanguage string  `toml:"preferred_language"`
}

// Store selects where per-video subtitle text and settings are persisted.
type Store struct {
	Backend     string `toml:"backend"`
	SQLitePath  string `toml:"sqlite_path"`
	RedisAddr   string `toml:"redis_addr"`
	RedisPrefix string `toml:"redis_prefix"`
}

// Parse controls how malformed cue blocks are reported.
type Parse struct {
	LogDropped bool `toml:"log_dropped"`
}

// Host controls the in-memory page model used by the daemon.
type Host struct {
	NavigationPollMillis int `toml:"navigation_poll_millis"`
	FetchTimeoutSeconds  int `toml:"fetch_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cuesync.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - API: daemon bind address and bearer token
//   - Translation: provider selection, credentials, target language
//   - Speech: speech synthesis defaults
//   - Store: persistence backend (sqlite or redis)
//   - Parse: malformed cue reporting
//   - Host: navigation polling and subtitle fetch timeout
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	API         API         `toml:"api"`
	Translation Translation `toml:"translation"`
	Speech      Speech      `toml:"speech"`
	Store       Store       `toml:"store"`
	Parse       Parse       `toml:"parse"`
	Host        Host        `toml:"host"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cuesync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the daemon's single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "cuesync.lock")
}

// ActiveProvider returns the settings for the configured translation provider.
func (c *Config) ActiveProvider() ProviderSettings {
	switch c.Translation.Provider {
	case ProviderGemini:
		return c.Translation.Gemini
	default:
		return c.Translation.OpenAI
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
