package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/localreview/internal/domain/model"
	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

func newAddCmd() *cobra.Command {
	var (
		flagFile     string
		flagLine     int
		flagMessage  string
		flagSeverity string
		flagTitle    string
		flagEndLine  int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Attach a comment to a source line",
		RunE: func(cmd *cobra.Command, args []string) error {
			severity := model.SeverityInfo
			if flagSeverity != "" {
				parsed, err := model.ParseSeverity(flagSeverity)
				if err != nil {
					return err
				}
				severity = parsed
			}

			store, cfg, err := newStore()
			if err != nil {
				return err
			}

			c, err := store.Create(cmd.Context(), flagFile, driven.NewComment{
				Line:        flagLine,
				EndLine:     flagEndLine,
				Message:     flagMessage,
				Severity:    severity,
				Title:       flagTitle,
				Author:      cfg.Author,
				LineContent: store.LineContent(flagFile, flagLine),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created comment #%s on %s:%d\n", c.ID, flagFile, flagLine)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Reviewed file path (workspace-relative)")
	cmd.Flags().IntVar(&flagLine, "line", 0, "1-indexed line the comment anchors to")
	cmd.Flags().StringVar(&flagMessage, "message", "", "Comment body")
	cmd.Flags().StringVar(&flagSeverity, "severity", "", "Severity: error, warning, or info (default info)")
	cmd.Flags().StringVar(&flagTitle, "title", "", "Optional short label")
	cmd.Flags().IntVar(&flagEndLine, "end-line", 0, "Last line of a multi-line span")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("line")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
