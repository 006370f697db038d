package driven

import (
	"context"

	"github.com/ericfisherdev/localreview/internal/domain/model"
)

// NewComment carries the caller-supplied fields for a comment about to be
// created. The store assigns the ID and creation timestamp.
type NewComment struct {
	Line        int
	EndLine     int // zero means single-line
	Message     string
	Severity    model.Severity
	Title       string
	Author      model.Author
	LineContent string
}

// CommentUpdate is a shallow partial update: only non-nil fields are applied.
type CommentUpdate struct {
	Message     *string
	Title       *string
	Severity    *model.Severity
	Line        *int
	EndLine     *int
	LineContent *string
	Resolved    *bool
	Outdated    *bool
}

// CommentStore defines the driven port for persisting per-file comment
// collections. It is the single writer of the on-disk representation and the
// sole source of truth; callers hold no comment state between calls.
//
// Read-side corruption (missing file, bad compression, malformed records)
// degrades to an empty collection rather than an error: review data is
// best-effort, never a reason to block the rest of the system.
type CommentStore interface {
	// Load returns every comment recorded for file, in insertion order.
	Load(ctx context.Context, file string) ([]model.Comment, error)
	// LoadActive returns Load filtered to comments that are neither
	// resolved nor outdated.
	LoadActive(ctx context.Context, file string) ([]model.Comment, error)
	// Create appends a new comment with the next sequential ID and
	// persists the collection.
	Create(ctx context.Context, file string, draft NewComment) (model.Comment, error)
	// Update applies a shallow partial update to the comment with the
	// given id. Returns nil (and no error) when no such comment exists.
	Update(ctx context.Context, file, id string, upd CommentUpdate) (*model.Comment, error)
	// Remove deletes the comment with the given id, reporting whether a
	// removal occurred.
	Remove(ctx context.Context, file, id string) (bool, error)
	// AddReply appends a reply to the comment's thread, touching no other
	// field of the comment. Reports whether the comment was found.
	AddReply(ctx context.Context, file, id string, author, message string) (bool, error)
	// IsOutdated checks the comment's line-content snapshot against the
	// live source file.
	IsOutdated(comment model.Comment) bool
	// AllReviewedFiles lists every source path that has a persisted
	// comment collection.
	AllReviewedFiles(ctx context.Context) ([]string, error)
	// ActiveCommentCounts maps each reviewed file to its number of active
	// comments, omitting files with none.
	ActiveCommentCounts(ctx context.Context) (map[string]int, error)
	// LineContent reads the 1-indexed line from the live source file, or
	// "" when the file or line is inaccessible.
	LineContent(file string, line int) string
	// Saving reports whether a persist completed within the configured
	// cool-down window. Watchers use it to skip self-triggered events.
	Saving() bool
}
