package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"cuesync/internal/api"
	"cuesync/internal/commands"
	"cuesync/internal/daemon"
	"cuesync/internal/host"
	"cuesync/internal/logging"
	"cuesync/internal/preflight"
	"cuesync/internal/session"
	"cuesync/internal/testsupport"
)

func TestFormatRowNoColor(t *testing.T) {
	got := formatRow(statusRow{Label: "Daemon", Level: levelFail, Detail: "not running"}, false)
	want := fmt.Sprintf("  %-*s %s  %s", rowLabelWidth, "Daemon", "fail", "not running")
	if got != want {
		t.Fatalf("formatRow mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := formatRow(statusRow{Label: "Page"}, false); got != fmt.Sprintf("  %-*s info", rowLabelWidth, "Page") {
		t.Fatalf("row without detail = %q", got)
	}
}

func TestFormatRowColorsOnlyTag(t *testing.T) {
	got := formatRow(statusRow{Label: "Daemon", Level: levelOK, Detail: "running"}, true)
	if !strings.Contains(got, ansiGreen+"ok  "+ansiReset) {
		t.Fatalf("expected green tag, got %q", got)
	}
	if !strings.HasSuffix(got, "running") {
		t.Fatalf("detail should stay uncoloured, got %q", got)
	}
}

func TestCheckRow(t *testing.T) {
	failed := checkRow(preflight.Result{Name: "Store", Detail: "locked"}, levelFail)
	if failed.Level != levelFail || failed.Label != "Store" || failed.Detail != "locked" {
		t.Fatalf("unexpected row %+v", failed)
	}
	if passed := checkRow(preflight.Result{Name: "Store", Passed: true}, levelFail); passed.Level != levelOK {
		t.Fatalf("passed check should be ok, got %+v", passed)
	}
}

func TestStatusReportSections(t *testing.T) {
	var buf bytes.Buffer
	report := newStatusReport(&buf)
	report.section("Readiness", []statusRow{{Label: "Store", Level: levelOK}})
	report.section("Session", nil)
	want := "Readiness\n" + formatRow(statusRow{Label: "Store", Level: levelOK}, false) + "\n\nSession\n"
	if buf.String() != want {
		t.Fatalf("report = %q, want %q", buf.String(), want)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestSessionRows(t *testing.T) {
	resp := &api.StatusResponse{Status: commands.Status{
		URL:            "https://www.coursera.org/learn/ml/lecture/abc/intro",
		PlayerAttached: true,
		Provider:       "openai",
		TargetLanguage: "vi",
		Session: session.Snapshot{
			State:          "active",
			VideoID:        "ml_intro",
			Cues:           3,
			OverlayVisible: true,
			OverlayText:    "line one\nline two",
		},
	}}
	rows := sessionRows(resp)
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = formatRow(row, false)
	}
	joined := strings.Join(lines, "\n")
	requireContains(t, joined, "ok    attached")
	requireContains(t, joined, "active (3 cues, 0 segments, video ml_intro)")
	requireContains(t, joined, "line one / line two")
	requireContains(t, joined, "openai -> vi")
	requireContains(t, joined, "Store:")
}

func TestStatusWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath, "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Readiness")
	requireContains(t, out, "Data directory")
	requireContains(t, out, "not running")
	if strings.Contains(out, "\nSession\n") {
		t.Fatalf("session section should be absent:\n%s", out)
	}
}

func TestStatusWithRunningDaemon(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAPIToken("secret"))
	cfg := env.cfg

	pg := host.NewPage("https://www.coursera.org/learn/ml/lecture/abc/intro")
	pg.AttachPlayer(host.NewPlayer("video-1", nil, nil))
	mgr := session.NewManager(pg, nil, logging.NewNop(), session.Options{})
	svc := commands.NewService(commands.Deps{Config: cfg, Page: pg, Manager: mgr, Logger: logging.NewNop()})
	d, err := daemon.New(cfg, svc, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon start: %v", err)
	}
	if err := svc.LoadText(context.Background(), testsupport.SampleVTT); err != nil {
		t.Fatalf("LoadText: %v", err)
	}

	cfg.API.Bind = d.Address()
	env.rewrite(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath, "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "running (pid")
	requireContains(t, out, "\nSession\n")
	requireContains(t, out, "ok    attached")
	requireContains(t, out, "active (3 cues, 2 segments, video ml_intro)")
}
