package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/localreview/internal/adapter/driven/memview"
	"github.com/ericfisherdev/localreview/internal/application"
)

func newRecheckCmd() *cobra.Command {
	var flagFile string

	cmd := &cobra.Command{
		Use:   "recheck",
		Short: "Re-run outdated detection and persist drifted anchors",
		Long:  "Compares each comment's line-content snapshot against the live source and persists the outdated flag for anchors that drifted. Flags already set stay set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := newStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			// The recheck never touches threads, so a headless view is
			// all the service needs here.
			svc := application.NewCommentService(store, memview.New(), nil)

			files := []string{flagFile}
			if flagFile == "" {
				files, err = store.AllReviewedFiles(ctx)
				if err != nil {
					return err
				}
			}

			for _, file := range files {
				if err := svc.CheckOutdatedForFile(ctx, file); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rechecked %d file(s)\n", len(files))
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Limit to one reviewed file")

	return cmd
}
