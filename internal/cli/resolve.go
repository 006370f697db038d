package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

func newResolveCmd() *cobra.Command {
	var (
		flagFile string
		flagID   string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Mark a comment resolved",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := newStore()
			if err != nil {
				return err
			}

			resolved := true
			c, err := store.Update(cmd.Context(), flagFile, flagID, driven.CommentUpdate{Resolved: &resolved})
			if err != nil {
				return err
			}
			if c == nil {
				return notFound(cmd, flagID, flagFile)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Resolved comment #%s in %s\n", flagID, flagFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Reviewed file path")
	cmd.Flags().StringVar(&flagID, "id", "", "Comment id")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
