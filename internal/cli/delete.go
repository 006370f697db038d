package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var (
		flagFile string
		flagID   string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a comment entirely",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := newStore()
			if err != nil {
				return err
			}

			removed, err := store.Remove(cmd.Context(), flagFile, flagID)
			if err != nil {
				return err
			}
			if !removed {
				return notFound(cmd, flagID, flagFile)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment #%s from %s\n", flagID, flagFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Reviewed file path")
	cmd.Flags().StringVar(&flagID, "id", "", "Comment id")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
