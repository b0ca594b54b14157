package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cuesync/internal/logging"
	"cuesync/internal/subtitles"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a subtitle document and list its cues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			cues, report := subtitles.ParseWithReport(raw)
			if report.Dropped > 0 {
				logger := ctx.logger(cmd)
				logging.WarnWithContext(cmd.Context(), logger, "dropped malformed cue blocks", "parse_failure",
					logging.Int("dropped", report.Dropped),
					logging.Any("lines", report.DroppedLines),
					logging.String(logging.FieldImpact, "those cues are missing from the listing"),
					logging.String(logging.FieldErrorHint, "check the timing lines in the subtitle text"),
				)
			}
			if jsonOutput {
				return writeJSON(cmd, cues)
			}
			out := cmd.OutOrStdout()
			if len(cues) == 0 {
				fmt.Fprintln(out, "No cues found")
				return nil
			}
			rows := make([][]string, 0, len(cues))
			for i, cue := range cues {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					subtitles.FormatTime(cue.Start),
					subtitles.FormatTime(cue.End),
					cue.Text,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Start", "End", "Text"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft}))
			fmt.Fprintf(out, "%d cues (%d blocks, %d dropped)\n", len(cues), report.Blocks, report.Dropped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output cues as JSON")
	return cmd
}

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "segments <file|->",
		Short: "Group cues into sentence-level speech segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			segments := subtitles.SegmentCues(subtitles.Parse(raw))
			if jsonOutput {
				return writeJSON(cmd, segments)
			}
			out := cmd.OutOrStdout()
			if len(segments) == 0 {
				fmt.Fprintln(out, "No segments found")
				return nil
			}
			rows := make([][]string, 0, len(segments))
			for i, seg := range segments {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					subtitles.FormatTime(seg.Start),
					subtitles.FormatTime(seg.End),
					strconv.Itoa(seg.CueCount()),
					seg.Text,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Start", "End", "Cues", "Text"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output segments as JSON")
	return cmd
}

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "reconcile <original> <translated>",
		Short: "Copy the original timings onto a translated document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			translated, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			out, result := subtitles.Reconcile(original, translated)
			if !result.Matched {
				logging.WarnWithContext(cmd.Context(), ctx.logger(cmd), "cue counts differ; keeping translated timings", "cue_count_mismatch",
					logging.Int("original_cues", result.OriginalCues),
					logging.Int("translated_cues", result.TranslatedCues),
					logging.String(logging.FieldImpact, "speech may drift from the video"),
					logging.String(logging.FieldErrorHint, "retranslate or fix the cue count by hand"),
				)
			}
			return writeOutput(cmd, outputPath, out)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result to a file instead of stdout")
	return cmd
}
