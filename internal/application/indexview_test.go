package application

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/localreview/internal/adapter/driven/filestore"
	"github.com/ericfisherdev/localreview/internal/domain/model"
	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

func newIndexFixture(t *testing.T) (*UnresolvedIndex, *filestore.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := filestore.NewStore(t.TempDir(), 0, logger)
	return NewUnresolvedIndex(store), store
}

func seed(t *testing.T, store *filestore.Store, file string, line int, resolved, outdated bool) model.Comment {
	t.Helper()
	ctx := context.Background()
	c, err := store.Create(ctx, file, driven.NewComment{
		Line: line, Message: "m", Severity: model.SeverityWarning, Title: "t", Author: model.AuthorClaude,
	})
	require.NoError(t, err)
	if resolved || outdated {
		_, err = store.Update(ctx, file, c.ID, driven.CommentUpdate{Resolved: &resolved, Outdated: &outdated})
		require.NoError(t, err)
	}
	return c
}

func TestRefreshGroupsByFileAndFiltersResolved(t *testing.T) {
	ix, store := newIndexFixture(t)
	ctx := context.Background()

	seed(t, store, "b.go", 1, false, false)
	seed(t, store, "a.go", 3, false, false)
	seed(t, store, "a.go", 9, true, false) // resolved, always hidden

	groups, err := ix.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "a.go", groups[0].File)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, 3, groups[0].Items[0].Line)
	assert.Equal(t, "1", groups[0].Items[0].CommentID)
	assert.Equal(t, model.SeverityWarning, groups[0].Items[0].Severity)

	assert.Equal(t, "b.go", groups[1].File)
}

func TestRefreshOutdatedToggle(t *testing.T) {
	ix, store := newIndexFixture(t)
	ctx := context.Background()

	seed(t, store, "a.go", 1, false, true)

	groups, err := ix.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups, "outdated hidden by default")

	assert.True(t, ix.ToggleOutdated())
	groups, err = ix.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Items[0].Outdated)

	assert.False(t, ix.ToggleOutdated())
}

func TestCountsOmitFilesWithNoMatches(t *testing.T) {
	ix, store := newIndexFixture(t)
	ctx := context.Background()

	seed(t, store, "a.go", 1, false, false)
	seed(t, store, "a.go", 2, false, false)
	seed(t, store, "b.go", 1, true, false)

	counts, err := ix.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a.go": 2}, counts)
}

func TestRefreshReportsReplyCounts(t *testing.T) {
	ix, store := newIndexFixture(t)
	ctx := context.Background()

	c := seed(t, store, "a.go", 1, false, false)
	ok, err := store.AddReply(ctx, "a.go", c.ID, "user", "ping")
	require.NoError(t, err)
	require.True(t, ok)

	groups, err := ix.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Items[0].ReplyCount)
}
