package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cuesync/internal/config"
	"cuesync/internal/services"
)

// Entry summarizes one saved subtitle document.
type Entry struct {
	VideoID   string    `json:"video_id"`
	Bytes     int       `json:"bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings are the user preferences that survive restarts. Zero values mean
// "not set"; callers fall back to configuration.
type Settings struct {
	Provider       string  `json:"provider,omitempty"`
	APIKey         string  `json:"api_key,omitempty"`
	TargetLanguage string  `json:"target_language,omitempty"`
	SpeechRate     float64 `json:"speech_rate,omitempty"`
	Voice          string  `json:"voice,omitempty"`
	SpeechEnabled  bool    `json:"speech_enabled"`
}

// Store is the persisted key/value state.
type Store interface {
	GetSubtitle(ctx context.Context, videoID string) (string, bool, error)
	PutSubtitle(ctx context.Context, videoID, text string) error
	ListSubtitles(ctx context.Context) ([]Entry, error)
	DeleteSubtitle(ctx context.Context, videoID string) error
	GetSettings(ctx context.Context) (Settings, error)
	PutSettings(ctx context.Context, settings Settings) error
	Close() error
}

var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Redis)(nil)
)

// Open returns the backend selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		return OpenRedis(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPrefix)
	case config.StoreSQLite, "":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Paths.DataDir, "cuesync.db")
		}
		return OpenSQLite(ctx, path)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "store", "open",
			fmt.Sprintf("unknown backend %q", cfg.Store.Backend), nil)
	}
}

func validateVideoID(operation, videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return services.Wrap(services.ErrValidation, "store", operation, "video id required", nil)
	}
	return nil
}

const (
	keyProvider       = "provider"
	keyAPIKey         = "api_key"
	keyTargetLanguage = "target_language"
	keySpeechRate     = "speech_rate"
	keyVoice          = "voice"
	keySpeechEnabled  = "speech_enabled"
)

func (s Settings) fields() map[string]string {
	out := map[string]string{
		keyProvider:       s.Provider,
		keyAPIKey:         s.APIKey,
		keyTargetLanguage: s.TargetLanguage,
		keyVoice:          s.Voice,
		keySpeechEnabled:  strconv.FormatBool(s.SpeechEnabled),
		keySpeechRate:     "",
	}
	if s.SpeechRate != 0 {
		out[keySpeechRate] = strconv.FormatFloat(s.SpeechRate, 'f', -1, 64)
	}
	return out
}

func settingsFromFields(fields map[string]string) (Settings, error) {
	s := Settings{
		Provider:       fields[keyProvider],
		APIKey:         fields[keyAPIKey],
		TargetLanguage: fields[keyTargetLanguage],
		Voice:          fields[keyVoice],
	}
	if raw := fields[keySpeechRate]; raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Settings{}, fmt.Errorf("decode %s: %w", keySpeechRate, err)
		}
		s.SpeechRate = rate
	}
	if raw := fields[keySpeechEnabled]; raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("decode %s: %w", keySpeechEnabled, err)
		}
		s.SpeechEnabled = enabled
	}
	return s, nil
}
