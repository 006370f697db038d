package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/localreview/internal/domain/model"
)

func newListCmd() *cobra.Command {
	var (
		flagFile   string
		flagActive bool
		flagFormat string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List comments, across all reviewed files or one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagFormat != "json" && flagFormat != "text" {
				return fmt.Errorf("invalid format %q: must be one of json, text", flagFormat)
			}

			store, _, err := newStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			files := []string{flagFile}
			if flagFile == "" {
				files, err = store.AllReviewedFiles(ctx)
				if err != nil {
					return err
				}
			}

			byFile := make(map[string][]model.Comment)
			for _, file := range files {
				comments, err := store.Load(ctx, file)
				if err != nil {
					return err
				}
				if flagActive {
					kept := comments[:0]
					for _, c := range comments {
						if c.IsActive() {
							kept = append(kept, c)
						}
					}
					comments = kept
				}
				byFile[file] = comments
			}

			out := cmd.OutOrStdout()
			if flagFormat == "json" {
				return writeJSON(out, flagFile, byFile)
			}
			for _, file := range files {
				writeFileListing(out, file, byFile[file])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Limit to one reviewed file")
	cmd.Flags().BoolVar(&flagActive, "active", false, "Only non-resolved, non-outdated comments")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: json or text")

	return cmd
}

func writeJSON(w io.Writer, file string, byFile map[string][]model.Comment) error {
	var payload any
	if file != "" {
		comments := byFile[file]
		if comments == nil {
			comments = []model.Comment{}
		}
		payload = comments
	} else {
		payload = byFile
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeFileListing renders one file's comments: id, severity icon, line
// range, status tags, title, first message line, reply count.
func writeFileListing(w io.Writer, file string, comments []model.Comment) {
	if len(comments) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", file)
	for _, c := range comments {
		var b strings.Builder
		fmt.Fprintf(&b, "  #%s %s %s", c.ID, c.Severity.Icon(), lineRange(c))
		if c.Resolved {
			b.WriteString(" [resolved]")
		}
		if c.Outdated {
			b.WriteString(" [outdated]")
		}
		if c.Title != "" {
			fmt.Fprintf(&b, " %s:", c.Title)
		}
		first, _, _ := strings.Cut(c.Message, "\n")
		fmt.Fprintf(&b, " %s", first)
		if n := len(c.Replies); n == 1 {
			b.WriteString(" (1 reply)")
		} else if n > 1 {
			fmt.Fprintf(&b, " (%d replies)", n)
		}
		fmt.Fprintln(w, b.String())
	}
}

func lineRange(c model.Comment) string {
	if c.EndLine > 0 && c.EndLine != c.Line {
		return fmt.Sprintf("L%d-%d", c.Line, c.EndLine)
	}
	return fmt.Sprintf("L%d", c.Line)
}
