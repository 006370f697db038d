package application

import (
	"context"
	"sort"

	"github.com/ericfisherdev/localreview/internal/domain/model"
	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

// IndexItem is one unresolved comment in the index, carrying everything a
// caller needs to navigate to it and expand its thread.
type IndexItem struct {
	File       string
	CommentID  string
	Line       int
	Title      string
	Severity   model.Severity
	Outdated   bool
	ReplyCount int
}

// FileGroup is the index's per-file grouping.
type FileGroup struct {
	File  string
	Items []IndexItem
}

// UnresolvedIndex is a read-only projection over the store: unresolved
// comments grouped by file, with outdated ones filtered per a toggle. It is
// rebuilt from the store on every Refresh and holds no persisted state
// besides the toggle.
type UnresolvedIndex struct {
	store        driven.CommentStore
	showOutdated bool
}

// NewUnresolvedIndex creates an index that hides outdated comments until
// toggled.
func NewUnresolvedIndex(store driven.CommentStore) *UnresolvedIndex {
	return &UnresolvedIndex{store: store}
}

// ShowOutdated reports whether outdated comments are currently included.
func (ix *UnresolvedIndex) ShowOutdated() bool {
	return ix.showOutdated
}

// ToggleOutdated flips the outdated filter and returns the new setting.
func (ix *UnresolvedIndex) ToggleOutdated() bool {
	ix.showOutdated = !ix.showOutdated
	return ix.showOutdated
}

// Refresh rebuilds the projection from the store. Files with no matching
// comments are omitted; groups are ordered by file path and items keep
// their persisted (creation) order.
func (ix *UnresolvedIndex) Refresh(ctx context.Context) ([]FileGroup, error) {
	files, err := ix.store.AllReviewedFiles(ctx)
	if err != nil {
		return nil, err
	}

	var groups []FileGroup
	for _, file := range files {
		comments, err := ix.store.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		var items []IndexItem
		for _, c := range comments {
			if c.Resolved || (c.Outdated && !ix.showOutdated) {
				continue
			}
			items = append(items, IndexItem{
				File:       file,
				CommentID:  c.ID,
				Line:       c.Line,
				Title:      c.Title,
				Severity:   c.Severity,
				Outdated:   c.Outdated,
				ReplyCount: len(c.Replies),
			})
		}
		if len(items) > 0 {
			groups = append(groups, FileGroup{File: file, Items: items})
		}
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].File < groups[j].File })
	return groups, nil
}

// Counts returns the number of indexed comments per file under the current
// toggle, omitting files with none.
func (ix *UnresolvedIndex) Counts(ctx context.Context) (map[string]int, error) {
	groups, err := ix.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.File] = len(g.Items)
	}
	return counts, nil
}
