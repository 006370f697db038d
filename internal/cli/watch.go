package cli

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/localreview/internal/adapter/driven/termview"
	"github.com/ericfisherdev/localreview/internal/application"
	"github.com/ericfisherdev/localreview/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var flagIncludeOutdated bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render active comment threads live as storage changes",
		Long:  "Displays the active comment threads for the workspace and reconciles them whenever another process rewrites a collection, until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := newStore()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			view := termview.New(cmd.OutOrStdout())
			svc := application.NewCommentService(store, view, slog.Default())

			watcher, err := watch.New(store.Dir(), store, cfg.Debounce, slog.Default())
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := watcher.Close(); closeErr != nil {
					slog.Error("error closing watcher", "error", closeErr)
				}
			}()

			if err := svc.LoadAllActiveComments(ctx, flagIncludeOutdated); err != nil {
				return err
			}
			view.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", store.Dir())

			go watcher.Start(ctx)
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-watcher.Events():
					if err := svc.LoadFileComments(ctx, ev.File, flagIncludeOutdated); err != nil {
						slog.Error("reconcile failed", "file", ev.File, "error", err)
						continue
					}
					view.Render()
				}
			}
		},
	}

	cmd.Flags().BoolVar(&flagIncludeOutdated, "include-outdated", false, "Keep outdated comments visible")

	return cmd
}
