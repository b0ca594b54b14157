package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"cuesync/internal/services"
)

const (
	redisFieldText    = "text"
	redisFieldUpdated = "updated_at"
)

// Redis stores state in a shared Redis server.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open redis", "address required", nil)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, services.Wrap(services.ErrExternal, "store", "open redis", "connect to "+addr, err)
	}
	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "cuesync"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) subtitleKey(videoID string) string {
	return r.prefix + ":vtt:" + videoID
}

func (r *Redis) settingsKey() string {
	return r.prefix + ":settings"
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// GetSubtitle returns the saved text for videoID.
func (r *Redis) GetSubtitle(ctx context.Context, videoID string) (string, bool, error) {
	if err := validateVideoID("get subtitle", videoID); err != nil {
		return "", false, err
	}
	text, err := r.client.HGet(ctx, r.subtitleKey(videoID), redisFieldText).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get subtitle %s: %w", videoID, err)
	}
	return text, true, nil
}

// PutSubtitle saves text for videoID.
func (r *Redis) PutSubtitle(ctx context.Context, videoID, text string) error {
	if err := validateVideoID("put subtitle", videoID); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := r.client.HSet(ctx, r.subtitleKey(videoID), redisFieldText, text, redisFieldUpdated, now).Err(); err != nil {
		return fmt.Errorf("put subtitle %s: %w", videoID, err)
	}
	return nil
}

// ListSubtitles scans the subtitle keys, most recently updated first.
func (r *Redis) ListSubtitles(ctx context.Context) ([]Entry, error) {
	pattern := r.subtitleKey("*")
	var entries []Entry
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		values, err := r.client.HMGet(ctx, key, redisFieldText, redisFieldUpdated).Result()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		entry := Entry{VideoID: strings.TrimPrefix(key, r.subtitleKey(""))}
		if text, ok := values[0].(string); ok {
			entry.Bytes = len(text)
		}
		if updated, ok := values[1].(string); ok {
			if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
				entry.UpdatedAt = ts
			}
		}
		entries = append(entries, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan subtitles: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		}
		return entries[i].VideoID < entries[j].VideoID
	})
	return entries, nil
}

// DeleteSubtitle removes the saved text for videoID.
func (r *Redis) DeleteSubtitle(ctx context.Context, videoID string) error {
	if err := validateVideoID("delete subtitle", videoID); err != nil {
		return err
	}
	removed, err := r.client.Del(ctx, r.subtitleKey(videoID)).Result()
	if err != nil {
		return fmt.Errorf("delete subtitle %s: %w", videoID, err)
	}
	if removed == 0 {
		return services.Wrap(services.ErrNotFound, "store", "delete subtitle", "no saved subtitles for "+videoID, nil)
	}
	return nil
}

// GetSettings loads the settings hash.
func (r *Redis) GetSettings(ctx context.Context) (Settings, error) {
	fields, err := r.client.HGetAll(ctx, r.settingsKey()).Result()
	if err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return settingsFromFields(fields)
}

// PutSettings replaces the settings hash.
func (r *Redis) PutSettings(ctx context.Context, settings Settings) error {
	fields := settings.fields()
	values := make([]any, 0, len(fields)*2)
	for key, value := range fields {
		values = append(values, key, value)
	}
	if err := r.client.HSet(ctx, r.settingsKey(), values...).Err(); err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
