package main

import (
	"strings"
	"testing"

	"cuesync/internal/testsupport"
)

func TestPlayCommandShowsAndHides(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"play", "--step", "0.5", "-"}, env.configPath, testsupport.SampleVTT)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	requireContains(t, out, "[00:00:01.000] show  Welcome to the course")
	requireContains(t, out, "show  on machine learning.")
	requireContains(t, out, "[00:00:05.500] hide")
	requireContains(t, out, "[00:00:08.000] show  Let's begin.")
	if strings.Contains(out, "speak") {
		t.Fatalf("speech should be off by default:\n%s", out)
	}
}

func TestPlayCommandSpeaks(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"play", "--speech", "--step", "0.5", "-"}, env.configPath, testsupport.SampleVTT)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	requireContains(t, out, "speak Welcome to the course")
}

func TestPlayCommandRejectsEmptyInput(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"play", "-"}, env.configPath, "WEBVTT\n"); err == nil {
		t.Fatal("expected error for input without cues")
	}
	if _, _, err := runCLI(t, []string{"play", "--step", "0", "-"}, env.configPath, testsupport.SampleVTT); err == nil {
		t.Fatal("expected error for zero step")
	}
}
