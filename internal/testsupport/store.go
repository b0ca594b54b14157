package testsupport

import (
	"context"
	"testing"

	"cuesync/internal/config"
	"cuesync/internal/store"
)

// MustOpenStore opens the configured store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// SaveSubtitle stores text for videoID.
func SaveSubtitle(t testing.TB, s store.Store, videoID, text string) {
	t.Helper()

	if err := s.PutSubtitle(context.Background(), videoID, text); err != nil {
		t.Fatalf("store.PutSubtitle: %v", err)
	}
}
