package main

import (
	"encoding/json"
	"strings"
	"testing"

	"cuesync/internal/store"
	"cuesync/internal/testsupport"
)

func TestStoreCommandsRoundTrip(t *testing.T) {
	env := setupCLITestEnv(t)
	lecture := "https://www.coursera.org/learn/ml/lecture/abc/intro"

	out, _, err := runCLI(t, []string{"store", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("store list: %v", err)
	}
	requireContains(t, out, "No saved subtitles")

	out, _, err = runCLI(t, []string{"store", "put", lecture, "-"}, env.configPath, testsupport.TranslatedVTT)
	if err != nil {
		t.Fatalf("store put: %v", err)
	}
	requireContains(t, out, "for ml_intro")

	out, _, err = runCLI(t, []string{"store", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("store list: %v", err)
	}
	requireContains(t, out, "ml_intro")

	out, _, err = runCLI(t, []string{"store", "list", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("store list --json: %v", err)
	}
	var entries []store.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Bytes != len(testsupport.TranslatedVTT) {
		t.Fatalf("unexpected entries %+v", entries)
	}

	out, _, err = runCLI(t, []string{"store", "get", "ml_intro"}, env.configPath, "")
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if out != testsupport.TranslatedVTT {
		t.Fatalf("store get = %q", out)
	}

	out, _, err = runCLI(t, []string{"store", "delete", lecture}, env.configPath, "")
	if err != nil {
		t.Fatalf("store delete: %v", err)
	}
	requireContains(t, out, "Deleted ml_intro")

	out, _, err = runCLI(t, []string{"store", "delete", "ml_intro"}, env.configPath, "")
	if err != nil {
		t.Fatalf("store delete again: %v", err)
	}
	requireContains(t, out, "Nothing saved")

	_, _, err = runCLI(t, []string{"store", "get", "ml_intro"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "nothing saved") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
