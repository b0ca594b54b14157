package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cuesync/internal/api"
	"cuesync/internal/daemonrun"
	"cuesync/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		startURL string
		logLevel string
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the page-session daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: verbose,
				StartURL:    startURL,
			})
		},
	}
	cmd.Flags().StringVar(&startURL, "url", "", "Initial page URL")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Include source locations in log output")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show readiness checks and the daemon's session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checks := preflight.RunAll(cmd.Context(), cfg)
			daemonCheck := preflight.CheckDaemon(cmd.Context(), cfg)
			var remote *api.StatusResponse
			if daemonCheck.Passed {
				remote, err = ctx.client().Status(cmd.Context())
				if err != nil {
					daemonCheck = preflight.Result{Name: daemonCheck.Name, Detail: err.Error()}
				}
			}

			if jsonOutput {
				payload := map[string]any{"checks": append(checks, daemonCheck)}
				if remote != nil {
					payload["daemon"] = remote
				}
				return writeJSON(cmd, payload)
			}

			rows := make([]statusRow, 0, len(checks)+1)
			for _, check := range checks {
				rows = append(rows, checkRow(check, levelFail))
			}
			rows = append(rows, checkRow(daemonCheck, levelInfo))

			report := newStatusReport(cmd.OutOrStdout())
			report.section("Readiness", rows)
			if remote != nil {
				report.section("Session", sessionRows(remote))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	return cmd
}

func sessionRows(resp *api.StatusResponse) []statusRow {
	st := resp.Status
	sess := st.Session
	player := statusRow{Label: "Player", Level: levelOK, Detail: "attached"}
	if !st.PlayerAttached {
		player = statusRow{Label: "Player", Level: levelWarn, Detail: "no video player found"}
	}
	subtitlesLevel := levelInfo
	if sess.State == "active" {
		subtitlesLevel = levelOK
	}
	return []statusRow{
		{Label: "Page", Detail: emptyAs(st.URL, "none")},
		{Label: "Course", Detail: emptyAs(st.Course.Title, "unknown")},
		player,
		{Label: "Subtitles", Level: subtitlesLevel, Detail: fmt.Sprintf("%s (%d cues, %d segments, video %s)",
			sess.State, sess.Cues, sess.Segments, emptyAs(sess.VideoID, "unknown"))},
		{Label: "Overlay", Detail: overlayDetail(sess.OverlayVisible, sess.OverlayText)},
		{Label: "Speech", Detail: fmt.Sprintf("enabled=%s speaking=%s voice=%s rate=%.2f",
			yesNo(sess.SpeechEnabled), yesNo(sess.Speaking), emptyAs(sess.Voice, "default"), sess.Rate)},
		{Label: "Translation", Detail: fmt.Sprintf("%s -> %s", st.Provider, st.TargetLanguage)},
		{Label: "Store", Detail: emptyAs(st.StoreBackend, "none")},
	}
}

func overlayDetail(visible bool, text string) string {
	if !visible || text == "" {
		return "hidden"
	}
	return strings.ReplaceAll(text, "\n", " / ")
}

func emptyAs(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
