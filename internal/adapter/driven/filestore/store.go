// Package filestore persists per-file review comment collections as
// gzip-compressed newline-delimited JSON under <workspace>/.review/files/.
package filestore

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/localreview/internal/domain/model"
	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CommentStore = (*Store)(nil)

// Store is the filesystem implementation of the CommentStore port. Every
// mutation loads the full collection, applies the change, and rewrites the
// collection file wholesale through an atomic rename, so concurrent readers
// never observe a torn file. Collections are small (tens of comments), which
// makes the full rewrite an acceptable simplicity/safety tradeoff.
type Store struct {
	workspace string
	dir       string
	cooldown  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	lastSave time.Time
}

// NewStore creates a Store rooted at the given workspace. cooldown is the
// window after each persist during which Saving reports true; watchers use
// it to suppress reactions to the store's own writes.
func NewStore(workspace string, cooldown time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		workspace: workspace,
		dir:       filepath.Join(workspace, reviewDirName, filesDirName),
		cooldown:  cooldown,
		logger:    logger,
	}
}

// Dir returns the storage directory holding the collection files.
func (s *Store) Dir() string {
	return s.dir
}

// Saving reports whether a persist completed within the cool-down window.
// This is a hint, not a lock: a concurrent external write landing inside the
// window is indistinguishable from our own. That residual race is a known
// limit of the design.
func (s *Store) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSave) < s.cooldown
}

// Load returns every comment recorded for file, in persisted order. Missing
// or unreadable storage degrades to an empty collection.
func (s *Store) Load(_ context.Context, file string) ([]model.Comment, error) {
	data, err := os.ReadFile(s.storagePath(file))
	if err != nil {
		return nil, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		s.logger.Debug("discarding corrupt comment collection", "file", file, "error", err)
		return nil, nil
	}
	defer zr.Close()

	var comments []model.Comment
	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var c model.Comment
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			s.logger.Debug("discarding corrupt comment collection", "file", file, "error", err)
			return nil, nil
		}
		comments = append(comments, c)
	}
	if err := sc.Err(); err != nil {
		s.logger.Debug("discarding corrupt comment collection", "file", file, "error", err)
		return nil, nil
	}
	return comments, nil
}

// LoadActive returns the comments for file that are neither resolved nor
// outdated.
func (s *Store) LoadActive(ctx context.Context, file string) ([]model.Comment, error) {
	comments, err := s.Load(ctx, file)
	if err != nil {
		return nil, err
	}
	active := make([]model.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsActive() {
			active = append(active, c)
		}
	}
	return active, nil
}

// Create appends a new comment with the next sequential ID and persists the
// collection. IDs continue from the highest numeric ID present, so deleting
// a comment never causes an ID to be reissued unless the collection empties.
func (s *Store) Create(ctx context.Context, file string, draft driven.NewComment) (model.Comment, error) {
	comments, err := s.Load(ctx, file)
	if err != nil {
		return model.Comment{}, err
	}

	c := model.Comment{
		ID:          strconv.Itoa(nextID(comments)),
		File:        file,
		Line:        draft.Line,
		EndLine:     draft.EndLine,
		LineContent: draft.LineContent,
		Message:     draft.Message,
		Severity:    draft.Severity,
		Title:       draft.Title,
		CreatedAt:   time.Now().UTC(),
		Author:      draft.Author,
	}
	comments = append(comments, c)

	if err := s.persist(file, comments); err != nil {
		return model.Comment{}, err
	}
	s.logger.Debug("comment created", "file", file, "id", c.ID, "line", c.Line)
	return c, nil
}

// Update applies a shallow partial update to the comment with the given id
// and persists. Returns nil when no such comment exists; callers must check
// for absence rather than assume success.
func (s *Store) Update(ctx context.Context, file, id string, upd driven.CommentUpdate) (*model.Comment, error) {
	comments, err := s.Load(ctx, file)
	if err != nil {
		return nil, err
	}
	idx := indexOf(comments, id)
	if idx < 0 {
		return nil, nil
	}

	c := &comments[idx]
	if upd.Message != nil {
		c.Message = *upd.Message
	}
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Severity != nil {
		c.Severity = *upd.Severity
	}
	if upd.Line != nil {
		c.Line = *upd.Line
	}
	if upd.EndLine != nil {
		c.EndLine = *upd.EndLine
	}
	if upd.LineContent != nil {
		c.LineContent = *upd.LineContent
	}
	if upd.Resolved != nil {
		c.Resolved = *upd.Resolved
	}
	if upd.Outdated != nil {
		c.Outdated = *upd.Outdated
	}

	if err := s.persist(file, comments); err != nil {
		return nil, err
	}
	updated := comments[idx]
	return &updated, nil
}

// Remove deletes the comment with the given id, persisting only when the
// collection actually shrank.
func (s *Store) Remove(ctx context.Context, file, id string) (bool, error) {
	comments, err := s.Load(ctx, file)
	if err != nil {
		return false, err
	}
	kept := comments[:0]
	for _, c := range comments {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(comments) {
		return false, nil
	}
	if err := s.persist(file, kept); err != nil {
		return false, err
	}
	s.logger.Debug("comment removed", "file", file, "id", id)
	return true, nil
}

// AddReply appends a reply to the comment's thread. Only the replies
// sequence is touched; every other field of the comment is left exactly as
// loaded, which is what keeps reply operations from corrupting siblings.
func (s *Store) AddReply(ctx context.Context, file, id string, author, message string) (bool, error) {
	comments, err := s.Load(ctx, file)
	if err != nil {
		return false, err
	}
	idx := indexOf(comments, id)
	if idx < 0 {
		return false, nil
	}

	comments[idx].Replies = append(comments[idx].Replies, model.Reply{
		Author:    author,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})

	if err := s.persist(file, comments); err != nil {
		return false, err
	}
	s.logger.Debug("reply added", "file", file, "id", id, "author", author)
	return true, nil
}

// IsOutdated reports whether the comment's anchor has drifted: the source
// file is gone, the line index is out of range, or the trimmed live line no
// longer matches the trimmed snapshot. Comments without a snapshot are never
// auto-marked outdated.
func (s *Store) IsOutdated(comment model.Comment) bool {
	if comment.LineContent == "" {
		return false
	}
	lines, err := s.readSourceLines(comment.File)
	if err != nil {
		return true
	}
	if comment.Line < 1 || comment.Line > len(lines) {
		return true
	}
	return strings.TrimSpace(lines[comment.Line-1]) != strings.TrimSpace(comment.LineContent)
}

// AllReviewedFiles lists every source path with a persisted collection, in
// sorted order. Undecodable directory entries are skipped.
func (s *Store) AllReviewedFiles(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if file, ok := DecodeStorageName(e.Name()); ok {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ActiveCommentCounts maps each reviewed file to its number of active
// comments, omitting files with none.
func (s *Store) ActiveCommentCounts(ctx context.Context) (map[string]int, error) {
	files, err := s.AllReviewedFiles(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, file := range files {
		active, err := s.LoadActive(ctx, file)
		if err != nil {
			return nil, err
		}
		if len(active) > 0 {
			counts[file] = len(active)
		}
	}
	return counts, nil
}

// LineContent reads the 1-indexed line from the live source file, or ""
// when the file or line is inaccessible. Used to snapshot line_content at
// creation time and by the CLI's outdated recheck.
func (s *Store) LineContent(file string, line int) string {
	lines, err := s.readSourceLines(file)
	if err != nil {
		return ""
	}
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// persist rewrites the whole collection file through an atomic rename and
// records the save time for watcher suppression.
func (s *Store) persist(file string, comments []model.Comment) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	for _, c := range comments {
		line, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode comment %s: %w", c.ID, err)
		}
		if _, err := zw.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("compress comment %s: %w", c.ID, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish compression: %w", err)
	}

	if err := atomic.WriteFile(s.storagePath(file), &buf); err != nil {
		return fmt.Errorf("write collection for %s: %w", file, err)
	}

	s.mu.Lock()
	s.lastSave = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *Store) storagePath(file string) string {
	return filepath.Join(s.dir, storageName(file))
}

// readSourceLines reads the reviewed source file relative to the workspace
// root (absolute paths are used as-is) and splits it into lines.
func (s *Store) readSourceLines(file string) ([]string, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.workspace, file)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}

// nextID computes max(existing numeric ids, 0) + 1. Non-numeric IDs are
// ignored; gaps from deletions are never backfilled.
func nextID(comments []model.Comment) int {
	max := 0
	for _, c := range comments {
		if n, err := strconv.Atoi(c.ID); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

func indexOf(comments []model.Comment, id string) int {
	for i, c := range comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}
