package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List reviewed files with their active comment counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := newStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			files, err := store.AllReviewedFiles(ctx)
			if err != nil {
				return err
			}
			counts, err := store.ActiveCommentCounts(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, file := range files {
				fmt.Fprintf(out, "%s (%d active)\n", file, counts[file])
			}
			return nil
		},
	}
}
