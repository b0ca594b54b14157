package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cuesync/internal/daemonrun"
	"cuesync/internal/host"
	"cuesync/internal/speech"
	"cuesync/internal/subtitles"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var (
		pageURL  string
		step     float64
		speechOn bool
		voice    string
		rate     float64
	)
	cmd := &cobra.Command{
		Use:   "play <file|->",
		Short: "Simulate playback and print what the overlay shows and speaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if step <= 0 {
				return fmt.Errorf("--step must be positive")
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			cues := subtitles.Parse(raw)
			if len(cues) == 0 {
				return fmt.Errorf("no cues in %s", args[0])
			}

			logger := ctx.logger(cmd)
			rt, err := daemonrun.Build(cmd.Context(), cfg, logger, pageURL, &speech.LogEngine{Logger: logger})
			if err != nil {
				return err
			}
			defer rt.Close()

			if speechOn {
				if err := rt.Manager.SetSpeechEnabled(true); err != nil {
					return err
				}
			}
			if voice != "" || rate != 0 {
				v, r := rt.Speaker.Voice(), rt.Speaker.Rate()
				if voice != "" {
					v = voice
				}
				if rate != 0 {
					r = rate
				}
				rt.Speaker.Configure(v, r)
			}

			player := host.NewPlayer("cli-player", nil, nil)
			rt.Page.AttachPlayer(player)
			if err := rt.Service.LoadText(cmd.Context(), raw); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			end := cues[len(cues)-1].End
			for _, cue := range cues {
				if cue.End > end {
					end = cue.End
				}
			}

			var shown, spoken string
			for i := 0; ; i++ {
				t := float64(i) * step
				if t > end+step {
					break
				}
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				player.Advance(t)
				snap := rt.Manager.Snapshot()
				current := ""
				if snap.OverlayVisible {
					current = snap.OverlayText
				}
				if current != shown {
					if current == "" {
						fmt.Fprintf(out, "[%s] hide\n", subtitles.FormatTime(t))
					} else {
						fmt.Fprintf(out, "[%s] show  %s\n", subtitles.FormatTime(t), strings.ReplaceAll(current, "\n", " / "))
					}
					shown = current
				}
				if snap.LastSpoken != "" && snap.LastSpoken != spoken {
					fmt.Fprintf(out, "[%s] speak %s\n", subtitles.FormatTime(t), strings.ReplaceAll(snap.LastSpoken, "\n", " "))
					spoken = snap.LastSpoken
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "Page URL the simulated player lives on")
	cmd.Flags().Float64Var(&step, "step", 0.25, "Clock step in seconds")
	cmd.Flags().BoolVar(&speechOn, "speech", false, "Enable speech output")
	cmd.Flags().StringVar(&voice, "voice", "", "Speech voice name")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Speech rate (0.5 to 2.0)")
	return cmd
}
