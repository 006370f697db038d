// Package cli implements the localreview command tree. The CLI talks to the
// comment store directly; it is the standalone-process mutator that may run
// concurrently with an open editor surface, synchronized only through the
// shared on-disk format.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/localreview/internal/adapter/driven/filestore"
	"github.com/ericfisherdev/localreview/internal/config"
)

const version = "0.3.0"

// Exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// errReported marks failures whose message was already printed by the
// command (e.g. comment-not-found); Run maps them to exit 1 without
// reprinting.
var errReported = errors.New("reported")

// NewRootCmd builds a fresh command tree. A constructor instead of package
// globals keeps flag state isolated between test invocations.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "localreview",
		Short:         "File-based, offline code-review comments",
		Long:          "localreview attaches review comments to source lines and stores them under .review/, shared with editor tooling through the same on-disk format.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAddCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newReplyCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newRecheckCmd())
	root.AddCommand(newFilesCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Run executes the root command and returns a process exit code.
func Run() int {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, errReported) {
			return ExitFailure
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitUsage
	}
	return ExitSuccess
}

// newStore loads configuration and opens the comment store.
func newStore() (*filestore.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return filestore.NewStore(cfg.Workspace, cfg.SaveCooldown, nil), cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print localreview version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "localreview version %s\n", version)
		},
	}
}

// notFound prints the canonical not-found diagnostic and returns the
// already-reported sentinel.
func notFound(cmd *cobra.Command, id, file string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Comment #%s not found in %s\n", id, file)
	return errReported
}
