// Package application contains the services that translate editor and CLI
// intents into store operations and minimal thread-view updates. Services
// depend only on port interfaces.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/localreview/internal/domain/model"
	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

// titleMaxLen is the rune budget for titles derived from message text.
const titleMaxLen = 50

// defaultTitle is used when a caller supplies no title of its own.
const defaultTitle = "User Comment"

// AddOptions carries the optional fields of AddComment.
type AddOptions struct {
	EndLine  int
	Severity model.Severity // defaults to info
	Title    string         // defaults to "User Comment"
	Author   model.Author   // defaults to claude
	// SuppressThread skips thread creation for callers that already hold
	// a placeholder thread they intend to populate in place.
	SuppressThread bool
}

// CommentInput is the payload of the unified comment/reply box: a reply when
// ExistingCommentID is set, a brand-new root comment otherwise.
type CommentInput struct {
	File              string
	Line              int
	Text              string
	ExistingCommentID string
}

// CommentResult reports what HandleCommentOrReply did.
type CommentResult struct {
	Type    string // "comment" or "reply"
	Success bool
	Comment *model.Comment
}

// CommentService orchestrates comment mutations: every operation re-reads
// from the store (the sole source of truth), applies the change, and drives
// the smallest possible update into the thread view.
type CommentService struct {
	store  driven.CommentStore
	view   driven.ThreadView
	logger *slog.Logger
}

// NewCommentService creates a CommentService over the given ports.
func NewCommentService(store driven.CommentStore, view driven.ThreadView, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{store: store, view: view, logger: logger}
}

// AddComment creates a comment at file:line, snapshotting the current line
// content as the outdated-detection anchor, and materializes a thread unless
// the caller suppressed it.
func (s *CommentService) AddComment(ctx context.Context, file string, line int, message string, opts AddOptions) (model.Comment, error) {
	severity := opts.Severity
	if severity == "" {
		severity = model.SeverityInfo
	}
	title := opts.Title
	if title == "" {
		title = defaultTitle
	}
	author := opts.Author
	if author == "" {
		author = model.AuthorClaude
	}

	c, err := s.store.Create(ctx, file, driven.NewComment{
		Line:        line,
		EndLine:     opts.EndLine,
		Message:     message,
		Severity:    severity,
		Title:       title,
		Author:      author,
		LineContent: s.store.LineContent(file, line),
	})
	if err != nil {
		s.logger.Error("add comment failed", "file", file, "line", line, "error", err)
		s.view.ShowError(fmt.Sprintf("Failed to add comment: %v", err))
		return model.Comment{}, err
	}

	if !opts.SuppressThread {
		s.view.CreateThread(c)
	}
	return c, nil
}

// RemoveComment deletes the comment and disposes its thread. Returns false,
// with no view side effect, when the store reports no match.
func (s *CommentService) RemoveComment(ctx context.Context, file, id string) (bool, error) {
	removed, err := s.store.Remove(ctx, file, id)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}
	s.view.DisposeThread(model.ThreadKey(file, id))
	return true, nil
}

// ResolveComment marks the comment resolved and removes its thread from the
// active view. Resolving an already-resolved comment succeeds harmlessly.
func (s *CommentService) ResolveComment(ctx context.Context, file, id string) (bool, error) {
	resolved := true
	c, err := s.store.Update(ctx, file, id, driven.CommentUpdate{Resolved: &resolved})
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	s.view.DisposeThread(model.ThreadKey(file, id))
	return true, nil
}

// AddReply appends a reply to the comment and to its thread representation
// in place, so view-only state like expansion survives. Returns false when
// the comment id does not exist.
func (s *CommentService) AddReply(ctx context.Context, file, id string, author model.Author, message string) (bool, error) {
	ok, err := s.store.AddReply(ctx, file, id, string(author), message)
	if err != nil || !ok {
		return false, err
	}

	// Fetch the reply the store actually persisted (its timestamp is
	// authoritative) and append just that to the thread.
	comments, err := s.store.Load(ctx, file)
	if err != nil {
		return true, err
	}
	for _, c := range comments {
		if c.ID == id && len(c.Replies) > 0 {
			s.view.AddReplyToThread(c.ThreadKey(), c.Replies[len(c.Replies)-1])
			break
		}
	}
	return true, nil
}

// HandleCommentOrReply is the single entry point behind the unified
// comment/reply box. An input carrying an existing comment id is a reply
// authored by the user; anything else becomes a new user-authored root
// comment with a title derived from the message and thread creation
// suppressed, because the caller already holds a placeholder to populate.
func (s *CommentService) HandleCommentOrReply(ctx context.Context, input CommentInput) CommentResult {
	if input.ExistingCommentID != "" {
		ok, err := s.AddReply(ctx, input.File, input.ExistingCommentID, model.AuthorUser, input.Text)
		if err != nil {
			s.view.ShowError(fmt.Sprintf("Failed to add reply: %v", err))
			return CommentResult{Type: "reply"}
		}
		if !ok {
			s.view.ShowError(fmt.Sprintf("Comment #%s not found in %s", input.ExistingCommentID, input.File))
		}
		return CommentResult{Type: "reply", Success: ok}
	}

	c, err := s.AddComment(ctx, input.File, input.Line, input.Text, AddOptions{
		Title:          deriveTitle(input.Text),
		Author:         model.AuthorUser,
		SuppressThread: true,
	})
	if err != nil {
		return CommentResult{Type: "comment"}
	}
	s.view.PopulateThread(c.ThreadKey(), c)
	return CommentResult{Type: "comment", Success: true, Comment: &c}
}

// LoadFileComments reconciles the visible threads for one file against the
// stored collection by diffing: comments passing the filter update their
// existing thread in place or gain a new one, and threads whose comment is
// gone or filtered out are disposed. Diffing instead of clear-and-recreate
// is what preserves view-only state across externally triggered reloads.
func (s *CommentService) LoadFileComments(ctx context.Context, file string, includeOutdated bool) error {
	comments, err := s.store.Load(ctx, file)
	if err != nil {
		return err
	}

	stale := make(map[string]bool)
	for _, key := range s.view.ThreadKeysForFile(file) {
		stale[key] = true
	}

	for _, c := range comments {
		if c.Resolved || (c.Outdated && !includeOutdated) {
			continue
		}
		key := c.ThreadKey()
		if stale[key] {
			s.view.UpdateThreadWithComment(key, c)
			delete(stale, key)
		} else {
			s.view.CreateThread(c)
		}
	}

	for key := range stale {
		s.view.DisposeThread(key)
	}
	s.logger.Debug("file comments reconciled", "file", file, "comments", len(comments))
	return nil
}

// LoadAllActiveComments is the full-reset variant used for initial load and
// explicit refresh: every thread is disposed, then recreated from each
// reviewed file's filtered collection.
func (s *CommentService) LoadAllActiveComments(ctx context.Context, includeOutdated bool) error {
	s.view.DisposeAllThreads()

	files, err := s.store.AllReviewedFiles(ctx)
	if err != nil {
		return err
	}
	for _, file := range files {
		comments, err := s.store.Load(ctx, file)
		if err != nil {
			return err
		}
		for _, c := range comments {
			if c.Resolved || (c.Outdated && !includeOutdated) {
				continue
			}
			s.view.CreateThread(c)
		}
	}
	return nil
}

// CheckOutdatedForFile persists the outdated flag for every comment whose
// anchor has drifted. It deliberately leaves threads alone so a background
// recheck never collapses a thread the user has open. Outdated is monotonic:
// flags already set are never cleared here, even if the line reverted.
func (s *CommentService) CheckOutdatedForFile(ctx context.Context, file string) error {
	comments, err := s.store.Load(ctx, file)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if c.Outdated || !s.store.IsOutdated(c) {
			continue
		}
		outdated := true
		if _, err := s.store.Update(ctx, file, c.ID, driven.CommentUpdate{Outdated: &outdated}); err != nil {
			return err
		}
		s.logger.Debug("comment marked outdated", "file", file, "id", c.ID, "line", c.Line)
	}
	return nil
}

// deriveTitle builds a short label from message text: the first line,
// trimmed, truncated to titleMaxLen runes with a trailing ellipsis marker.
func deriveTitle(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)
	runes := []rune(first)
	if len(runes) <= titleMaxLen {
		return first
	}
	return string(runes[:titleMaxLen]) + "..."
}
