package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleVTT is a small well-formed subtitle document with two sentences
// across three cues.
const SampleVTT = "WEBVTT\n\n" +
	"00:00:01.000 --> 00:00:03.000\nWelcome to the course\n\n" +
	"00:00:03.200 --> 00:00:05.000\non machine learning.\n\n" +
	"00:00:08.000 --> 00:00:10.500\nLet's begin.\n"

// TranslatedVTT pairs with SampleVTT cue for cue, with drifted timings.
const TranslatedVTT = "WEBVTT\n\n" +
	"00:00:01.100 --> 00:00:03.100\nChào mừng đến với khóa học\n\n" +
	"00:00:03.300 --> 00:00:05.100\nvề học máy.\n\n" +
	"00:00:08.100 --> 00:00:10.600\nBắt đầu nào.\n"

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
