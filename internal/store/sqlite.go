package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cuesync/internal/services"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// Fixed-width so updated_at sorts lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLite stores state in a local database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open sqlite", "database path required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &SQLite{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *SQLite) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLite) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// GetSubtitle returns the saved text for videoID.
func (s *SQLite) GetSubtitle(ctx context.Context, videoID string) (string, bool, error) {
	if err := validateVideoID("get subtitle", videoID); err != nil {
		return "", false, err
	}
	var text string
	err := s.db.QueryRowContext(ctx, "SELECT text FROM subtitles WHERE video_id = ?", videoID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get subtitle %s: %w", videoID, err)
	}
	return text, true, nil
}

// PutSubtitle saves text for videoID, replacing earlier text.
func (s *SQLite) PutSubtitle(ctx context.Context, videoID, text string) error {
	if err := validateVideoID("put subtitle", videoID); err != nil {
		return err
	}
	now := time.Now().UTC().Format(timestampLayout)
	err := s.exec(ctx, `INSERT INTO subtitles (video_id, text, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
		videoID, text, now)
	if err != nil {
		return fmt.Errorf("put subtitle %s: %w", videoID, err)
	}
	return nil
}

// ListSubtitles returns saved documents, most recently updated first.
func (s *SQLite) ListSubtitles(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT video_id, length(CAST(text AS BLOB)), updated_at FROM subtitles ORDER BY updated_at DESC, video_id")
	if err != nil {
		return nil, fmt.Errorf("list subtitles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			updated string
		)
		if err := rows.Scan(&entry.VideoID, &entry.Bytes, &updated); err != nil {
			return nil, fmt.Errorf("scan subtitle row: %w", err)
		}
		if ts, err := time.Parse(timestampLayout, updated); err == nil {
			entry.UpdatedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtitles: %w", err)
	}
	return entries, nil
}

// DeleteSubtitle removes the saved text for videoID. Missing ids are a
// not-found error.
func (s *SQLite) DeleteSubtitle(ctx context.Context, videoID string) error {
	if err := validateVideoID("delete subtitle", videoID); err != nil {
		return err
	}
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM subtitles WHERE video_id = ?", videoID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete subtitle %s: %w", videoID, err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "store", "delete subtitle", "no saved subtitles for "+videoID, nil)
	}
	return nil
}

// GetSettings loads saved settings. An empty table yields zero Settings.
func (s *SQLite) GetSettings(ctx context.Context) (Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, fmt.Errorf("scan settings row: %w", err)
		}
		fields[key] = value
	}
	if err := rows.Err(); err != nil {
		return Settings{}, fmt.Errorf("iterate settings: %w", err)
	}
	return settingsFromFields(fields)
}

// PutSettings replaces the saved settings.
func (s *SQLite) PutSettings(ctx context.Context, settings Settings) error {
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		for key, value := range settings.fields() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO settings (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
