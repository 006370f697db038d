package application

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/localreview/internal/adapter/driven/filestore"
	"github.com/ericfisherdev/localreview/internal/adapter/driven/memview"
	"github.com/ericfisherdev/localreview/internal/domain/model"
	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

// newFixture wires a service over a real filestore in a temp workspace and
// the in-memory view double, mirroring the production composition minus the
// terminal surface.
func newFixture(t *testing.T) (*CommentService, *filestore.Store, *memview.View, string) {
	t.Helper()
	ws := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := filestore.NewStore(ws, 0, logger)
	view := memview.New()
	return NewCommentService(store, view, logger), store, view, ws
}

func writeSource(t *testing.T, ws, file, content string) {
	t.Helper()
	path := filepath.Join(ws, file)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAddCommentAppliesDefaults(t *testing.T) {
	svc, _, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\nbeta\ngamma\n")

	c, err := svc.AddComment(context.Background(), "a.go", 2, "tighten this up", AddOptions{})
	require.NoError(t, err)

	assert.Equal(t, "1", c.ID)
	assert.Equal(t, model.SeverityInfo, c.Severity)
	assert.Equal(t, "User Comment", c.Title)
	assert.Equal(t, model.AuthorClaude, c.Author)
	assert.Equal(t, "beta", c.LineContent)
	assert.False(t, c.Resolved)
	assert.False(t, c.Outdated)

	_, ok := view.Thread("a.go:1")
	assert.True(t, ok)
}

func TestAddCommentSuppressesThreadCreation(t *testing.T) {
	svc, _, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")

	_, err := svc.AddComment(context.Background(), "a.go", 1, "note", AddOptions{SuppressThread: true})
	require.NoError(t, err)
	assert.Zero(t, view.Len())
}

func TestRemoveCommentDisposesThread(t *testing.T) {
	svc, _, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "note", AddOptions{})
	require.NoError(t, err)

	ok, err := svc.RemoveComment(ctx, "a.go", "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, view.Len())
}

func TestRemoveCommentNotFoundLeavesViewAlone(t *testing.T) {
	svc, _, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "note", AddOptions{})
	require.NoError(t, err)

	ok, err := svc.RemoveComment(ctx, "a.go", "42")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, view.Len())
}

func TestResolveCommentDisposesThreadAndIsIdempotent(t *testing.T) {
	svc, store, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "note", AddOptions{})
	require.NoError(t, err)

	ok, err := svc.ResolveComment(ctx, "a.go", "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, view.Len())

	// Resolving again succeeds harmlessly.
	ok, err = svc.ResolveComment(ctx, "a.go", "1")
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := store.Load(ctx, "a.go")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Resolved)
}

func TestResolveCommentNotFound(t *testing.T) {
	svc, _, _, _ := newFixture(t)

	ok, err := svc.ResolveComment(context.Background(), "a.go", "9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddReplyAppendsWithoutRebuildingThread(t *testing.T) {
	svc, _, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "note", AddOptions{})
	require.NoError(t, err)
	require.True(t, view.SetExpanded("a.go:1", true))

	ok, err := svc.AddReply(ctx, "a.go", "1", model.AuthorUser, "done")
	require.NoError(t, err)
	assert.True(t, ok)

	thread, found := view.Thread("a.go:1")
	require.True(t, found)
	assert.True(t, thread.Expanded, "reply must not reset view state")
	assert.Zero(t, thread.UpdateCount, "reply must not rebuild the thread")
	require.Len(t, thread.Comment.Replies, 1)
	assert.Equal(t, "done", thread.Comment.Replies[0].Message)
	assert.Equal(t, "user", thread.Comment.Replies[0].Author)
}

func TestAddReplyNotFound(t *testing.T) {
	svc, _, _, _ := newFixture(t)

	ok, err := svc.AddReply(context.Background(), "a.go", "3", model.AuthorUser, "done")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleCommentOrReplyCreatesUserComment(t *testing.T) {
	svc, store, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\nbeta\n")
	ctx := context.Background()

	res := svc.HandleCommentOrReply(ctx, CommentInput{File: "a.go", Line: 2, Text: "needs a nil check\nsecond paragraph"})

	assert.Equal(t, "comment", res.Type)
	assert.True(t, res.Success)
	require.NotNil(t, res.Comment)
	assert.Equal(t, model.AuthorUser, res.Comment.Author)
	assert.Equal(t, "needs a nil check", res.Comment.Title)

	// The caller holds a placeholder, so the thread is populated, not created anew.
	thread, ok := view.Thread("a.go:1")
	require.True(t, ok)
	assert.True(t, thread.Populated)

	loaded, err := store.Load(ctx, "a.go")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "needs a nil check\nsecond paragraph", loaded[0].Message)
}

func TestHandleCommentOrReplyTruncatesDerivedTitle(t *testing.T) {
	svc, _, _, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")

	long := strings.Repeat("x", 60)
	res := svc.HandleCommentOrReply(context.Background(), CommentInput{File: "a.go", Line: 1, Text: long})

	require.True(t, res.Success)
	assert.Equal(t, strings.Repeat("x", 50)+"...", res.Comment.Title)
}

func TestHandleCommentOrReplyRoutesReplies(t *testing.T) {
	svc, store, _, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "fix", AddOptions{})
	require.NoError(t, err)

	res := svc.HandleCommentOrReply(ctx, CommentInput{File: "a.go", ExistingCommentID: "1", Text: "done"})
	assert.Equal(t, "reply", res.Type)
	assert.True(t, res.Success)

	loaded, err := store.Load(ctx, "a.go")
	require.NoError(t, err)
	require.Len(t, loaded[0].Replies, 1)
	assert.Equal(t, "user", loaded[0].Replies[0].Author)
	assert.Equal(t, "fix", loaded[0].Message, "root message must be untouched")
}

func TestHandleCommentOrReplyReportsMissingComment(t *testing.T) {
	svc, _, view, _ := newFixture(t)

	res := svc.HandleCommentOrReply(context.Background(), CommentInput{File: "a.go", ExistingCommentID: "7", Text: "done"})
	assert.Equal(t, "reply", res.Type)
	assert.False(t, res.Success)
	assert.Contains(t, view.Notifications(), "Comment #7 not found in a.go")
}

func TestLoadFileCommentsReconcilesByDiff(t *testing.T) {
	svc, store, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\nbeta\ngamma\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "one", AddOptions{})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "a.go", 2, "two", AddOptions{})
	require.NoError(t, err)
	require.True(t, view.SetExpanded("a.go:2", true))

	// Simulate a concurrent CLI session: resolve #1 and add #3 directly in
	// the store, bypassing the view.
	resolved := true
	_, err = store.Update(ctx, "a.go", "1", driven.CommentUpdate{Resolved: &resolved})
	require.NoError(t, err)
	_, err = store.Create(ctx, "a.go", driven.NewComment{Line: 3, Message: "three", Severity: model.SeverityInfo, Author: model.AuthorClaude})
	require.NoError(t, err)

	require.NoError(t, svc.LoadFileComments(ctx, "a.go", false))

	_, ok := view.Thread("a.go:1")
	assert.False(t, ok, "resolved comment's thread must be disposed")

	thread, ok := view.Thread("a.go:2")
	require.True(t, ok)
	assert.True(t, thread.Expanded, "surviving thread keeps its view state")
	assert.Equal(t, 1, thread.UpdateCount, "surviving thread is updated in place")

	_, ok = view.Thread("a.go:3")
	assert.True(t, ok, "new comment gains a thread")
}

func TestLoadFileCommentsHonorsOutdatedFilter(t *testing.T) {
	svc, store, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "note", AddOptions{})
	require.NoError(t, err)
	outdated := true
	_, err = store.Update(ctx, "a.go", "1", driven.CommentUpdate{Outdated: &outdated})
	require.NoError(t, err)

	require.NoError(t, svc.LoadFileComments(ctx, "a.go", false))
	assert.Zero(t, view.Len())

	require.NoError(t, svc.LoadFileComments(ctx, "a.go", true))
	assert.Equal(t, 1, view.Len())
}

func TestLoadAllActiveCommentsResetsEverything(t *testing.T) {
	svc, _, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\n")
	writeSource(t, ws, "b.go", "beta\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "one", AddOptions{})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "b.go", 1, "two", AddOptions{})
	require.NoError(t, err)
	require.True(t, view.SetExpanded("a.go:1", true))

	require.NoError(t, svc.LoadAllActiveComments(ctx, false))

	assert.Equal(t, 2, view.Len())
	thread, ok := view.Thread("a.go:1")
	require.True(t, ok)
	assert.False(t, thread.Expanded, "full reset recreates threads from scratch")
}

func TestCheckOutdatedForFilePersistsMonotonicFlags(t *testing.T) {
	svc, store, view, ws := newFixture(t)
	writeSource(t, ws, "a.go", "alpha\nbeta\n")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "a.go", 1, "one", AddOptions{})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "a.go", 2, "two", AddOptions{})
	require.NoError(t, err)

	// Drift line 1, leave line 2 intact.
	writeSource(t, ws, "a.go", "ALPHA\nbeta\n")
	require.NoError(t, svc.CheckOutdatedForFile(ctx, "a.go"))

	loaded, err := store.Load(ctx, "a.go")
	require.NoError(t, err)
	assert.True(t, loaded[0].Outdated)
	assert.False(t, loaded[1].Outdated)

	// Threads are deliberately left alone by the background recheck.
	assert.Equal(t, 2, view.Len())

	// Reverting the line does not clear the flag: outdated is one-way.
	writeSource(t, ws, "a.go", "alpha\nbeta\n")
	require.NoError(t, svc.CheckOutdatedForFile(ctx, "a.go"))
	loaded, err = store.Load(ctx, "a.go")
	require.NoError(t, err)
	assert.True(t, loaded[0].Outdated)
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short single line", "fix this", "fix this"},
		{"first line only", "headline\nbody text", "headline"},
		{"surrounding space trimmed", "  padded  \nrest", "padded"},
		{"exactly fifty runes", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"truncated with ellipsis", strings.Repeat("b", 51), strings.Repeat("b", 50) + "..."},
		{"multi-byte runes counted once", strings.Repeat("é", 51), strings.Repeat("é", 50) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveTitle(tt.text))
		})
	}
}
