package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/localreview/internal/domain/model"
)

func newReplyCmd() *cobra.Command {
	var (
		flagFile    string
		flagID      string
		flagMessage string
		flagAuthor  string
	)

	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Append a reply to a comment's thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := newStore()
			if err != nil {
				return err
			}

			author := cfg.Author
			if flagAuthor != "" {
				parsed, err := model.ParseAuthor(flagAuthor)
				if err != nil {
					return err
				}
				author = parsed
			}

			ok, err := store.AddReply(cmd.Context(), flagFile, flagID, string(author), flagMessage)
			if err != nil {
				return err
			}
			if !ok {
				return notFound(cmd, flagID, flagFile)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added reply to comment #%s in %s\n", flagID, flagFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Reviewed file path")
	cmd.Flags().StringVar(&flagID, "id", "", "Comment id")
	cmd.Flags().StringVar(&flagMessage, "message", "", "Reply body")
	cmd.Flags().StringVar(&flagAuthor, "author", "", "Reply author: claude or user")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
