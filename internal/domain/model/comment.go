package model

import "time"

// Reply is a single follow-up message appended to a comment's thread.
// Replies are append-only and their order is chronological.
type Reply struct {
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Comment is one line-anchored review annotation on a source file.
//
// The JSON tags define the on-disk record format (one comment per line inside
// a gzip-compressed .jsonl.gz collection) and are shared with the external
// CLI and editor tooling; they must not change.
type Comment struct {
	ID   string `json:"id"`
	File string `json:"file"`
	Line int    `json:"line"`
	// EndLine is set only for multi-line spans; zero means single-line.
	EndLine int `json:"endLine,omitempty"`
	// LineContent is a snapshot of the anchored source line taken at
	// creation time. It is the reference for outdated detection; comments
	// without a snapshot are never auto-marked outdated.
	LineContent string   `json:"line_content,omitempty"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title,omitempty"`
	Resolved    bool     `json:"resolved,omitempty"`
	// Outdated is computed, not user-set. Once true it stays true; no code
	// path clears it even if the anchored line reverts.
	Outdated  bool      `json:"outdated,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Author    Author    `json:"author"`
	Replies   []Reply   `json:"replies,omitempty"`
}

// IsActive reports whether the comment belongs in active views,
// i.e. it is neither resolved nor outdated.
func (c Comment) IsActive() bool {
	return !c.Resolved && !c.Outdated
}

// ThreadKey returns the stable identity of the comment's visual thread.
func (c Comment) ThreadKey() string {
	return ThreadKey(c.File, c.ID)
}

// ThreadKey derives a thread identity purely from data, so view state can be
// reconciled against stored comments without reverse mappings.
func ThreadKey(file, id string) string {
	return file + ":" + id
}
