package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cuesync/internal/page"
	"cuesync/internal/services"
	"cuesync/internal/store"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect saved per-video subtitles",
	}
	storeCmd.AddCommand(newStoreListCommand(ctx))
	storeCmd.AddCommand(newStoreGetCommand(ctx))
	storeCmd.AddCommand(newStorePutCommand(ctx))
	storeCmd.AddCommand(newStoreDeleteCommand(ctx))
	return storeCmd
}

func withStore(cmd *cobra.Command, ctx *commandContext, fn func(store.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// resolveVideoID accepts either a video id or a lecture URL.
func resolveVideoID(arg string) string {
	if id, ok := page.VideoID(arg); ok {
		return id
	}
	return arg
}

func newStoreListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved subtitles, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, ctx, func(st store.Store) error {
				entries, err := st.ListSubtitles(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No saved subtitles")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.VideoID, strconv.Itoa(e.Bytes), e.UpdatedAt.Local().Format(time.DateTime)})
				}
				fmt.Fprintln(out, renderTable([]string{"Video", "Bytes", "Updated"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output entries as JSON")
	return cmd
}

func newStoreGetCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "get <video-id|url>",
		Short: "Print the saved subtitle text for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := resolveVideoID(args[0])
			return withStore(cmd, ctx, func(st store.Store) error {
				text, ok, err := st.GetSubtitle(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					return services.Wrap(services.ErrNotFound, "store", "get", "nothing saved for "+id, nil)
				}
				return writeOutput(cmd, outputPath, text)
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the text to a file instead of stdout")
	return cmd
}

func newStorePutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "put <video-id|url> <file|->",
		Short: "Save subtitle text for a video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := resolveVideoID(args[0])
			text, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			return withStore(cmd, ctx, func(st store.Store) error {
				if err := st.PutSubtitle(cmd.Context(), id, text); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes for %s\n", len(text), id)
				return nil
			})
		},
	}
}

func newStoreDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <video-id|url>",
		Short: "Delete the saved subtitle text for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := resolveVideoID(args[0])
			return withStore(cmd, ctx, func(st store.Store) error {
				err := st.DeleteSubtitle(cmd.Context(), id)
				if errors.Is(err, services.ErrNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing saved for %s\n", id)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
				return nil
			})
		},
	}
}
