package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"cuesync/internal/config"
	"cuesync/internal/subtitles"
	"cuesync/internal/testsupport"
)

func newChatServer(t *testing.T, reply string, prompts *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if prompts != nil && len(req.Messages) > 1 {
			prompts.Store(req.Messages[1].Content)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": reply}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranslateCommandAlignsTimings(t *testing.T) {
	var prompt atomic.Value
	srv := newChatServer(t, "```vtt\n"+testsupport.TranslatedVTT+"```", &prompt)
	env := setupCLITestEnv(t, testsupport.WithProvider(config.ProviderOpenAI, srv.URL))
	in := testsupport.WriteFile(t, filepath.Join(env.baseDir, "in.vtt"), testsupport.SampleVTT)

	out, _, err := runCLI(t, []string{
		"translate", in,
		"--to", "vi",
		"--url", "https://www.coursera.org/learn/machine-learning/lecture/abc/intro",
	}, env.configPath, "")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	got := subtitles.Parse(out)
	want := subtitles.Parse(testsupport.SampleVTT)
	if len(got) != len(want) {
		t.Fatalf("expected %d cues, got %d\n%s", len(want), len(got), out)
	}
	if got[0].Start != 1 || got[0].End != 3 || got[0].Text != "Chào mừng đến với khóa học" {
		t.Fatalf("unexpected first cue %+v", got[0])
	}

	sent, _ := prompt.Load().(string)
	requireContains(t, sent, "Vietnamese")
	requireContains(t, sent, "Machine Learning")
}

func TestTranslateCommandNoAlignKeepsProviderTimings(t *testing.T) {
	srv := newChatServer(t, testsupport.TranslatedVTT, nil)
	env := setupCLITestEnv(t, testsupport.WithProvider(config.ProviderOpenAI, srv.URL))

	out, _, err := runCLI(t, []string{"translate", "--no-align", "-"}, env.configPath, testsupport.SampleVTT)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	requireContains(t, out, "00:00:01.100 --> 00:00:03.100")
}

func TestTranslateCommandRequiresCredential(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Translation.OpenAI.APIKey = ""
	env.rewrite(t)

	_, _, err := runCLI(t, []string{"translate", "-"}, env.configPath, testsupport.SampleVTT)
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("expected credential error, got %v", err)
	}
}

func TestTranslateCommandRejectsBadLanguage(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"translate", "--to", "not a tag", "-"}, env.configPath, testsupport.SampleVTT)
	if err == nil {
		t.Fatal("expected error for invalid target language")
	}
}

func TestPromptCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{
		"prompt", "-",
		"--to", "fr",
		"--title", "Deep Learning",
		"--breadcrumb", "Data Science",
		"--breadcrumb", "Machine Learning",
	}, env.configPath, testsupport.SampleVTT)
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	requireContains(t, out, "French")
	requireContains(t, out, "Course: Deep Learning")
	requireContains(t, out, "Category: Data Science > Machine Learning")
	requireContains(t, out, "Welcome to the course")
}

func TestPromptCommandRequiresText(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"prompt", "-"}, env.configPath, "  \n"); err == nil {
		t.Fatal("expected error for empty input")
	}
}
