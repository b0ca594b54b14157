package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"cuesync/internal/config"
	"cuesync/internal/logging"
	"cuesync/internal/page"
	"cuesync/internal/subtitles"
	"cuesync/internal/translate"
)

type courseFlags struct {
	url         string
	title       string
	breadcrumbs []string
}

func (f *courseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "Lecture URL used to derive the course context")
	cmd.Flags().StringVar(&f.title, "title", "", "Course title (overrides the URL slug)")
	cmd.Flags().StringSliceVar(&f.breadcrumbs, "breadcrumb", nil, "Breadcrumb entry; repeat for a trail")
}

func (f *courseFlags) context() page.Context {
	return page.CourseContext(f.url, f.title, f.breadcrumbs)
}

func targetLanguage(cfg *config.Config, override string) (string, error) {
	target := strings.TrimSpace(override)
	if target == "" {
		return cfg.Translation.TargetLanguage, nil
	}
	if _, err := language.Parse(target); err != nil {
		return "", fmt.Errorf("target language %q is not a language tag: %w", target, err)
	}
	return target, nil
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var (
		course     courseFlags
		target     string
		provider   string
		outputPath string
		noAlign    bool
	)
	cmd := &cobra.Command{
		Use:   "translate <file|->",
		Short: "Translate a subtitle document with the configured provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			lang, err := targetLanguage(cfg, target)
			if err != nil {
				return err
			}
			effective := *cfg
			if p := strings.ToLower(strings.TrimSpace(provider)); p != "" {
				effective.Translation.Provider = p
			}

			logger := ctx.logger(cmd)
			client, err := translate.New(&effective, translate.WithLogger(logger))
			if err != nil {
				return err
			}
			translated, err := client.Translate(cmd.Context(), translate.Request{
				Text:       raw,
				TargetLang: lang,
				Context:    course.context(),
			})
			if err != nil {
				return err
			}
			if !noAlign {
				aligned, result := subtitles.Reconcile(raw, translated)
				if !result.Matched {
					logging.WarnWithContext(cmd.Context(), logger, "cue counts differ; keeping translated timings", "cue_count_mismatch",
						logging.Int("original_cues", result.OriginalCues),
						logging.Int("translated_cues", result.TranslatedCues),
						logging.String(logging.FieldImpact, "speech may drift from the video"),
						logging.String(logging.FieldErrorHint, "retranslate or fix the cue count by hand"),
					)
				}
				translated = aligned
			}
			return writeOutput(cmd, outputPath, translated)
		},
	}
	course.register(cmd)
	cmd.Flags().StringVarP(&target, "to", "t", "", "Target language tag (defaults to translation.target_language)")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider override (openai or gemini)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&noAlign, "no-align", false, "Keep the provider's timings instead of the original ones")
	return cmd
}

func newPromptCommand(ctx *commandContext) *cobra.Command {
	var (
		course courseFlags
		target string
	)
	cmd := &cobra.Command{
		Use:   "prompt <file|->",
		Short: "Print a ready-to-paste translation prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(raw) == "" {
				return fmt.Errorf("no subtitle text in %s", args[0])
			}
			lang, err := targetLanguage(cfg, target)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), translate.BuildPrompt(raw, lang, course.context()))
			return nil
		},
	}
	course.register(cmd)
	cmd.Flags().StringVarP(&target, "to", "t", "", "Target language tag (defaults to translation.target_language)")
	return cmd
}
