// Package termview renders comment threads as a live terminal panel. It is
// the editor-surface realization of the ThreadView port, driven by the
// watch command.
package termview

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ericfisherdev/localreview/internal/domain/model"
	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ThreadView = (*View)(nil)

var (
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	replyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).PaddingLeft(2)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	outdatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	severityStyles = map[model.Severity]lipgloss.Style{
		model.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		model.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		model.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
)

type thread struct {
	comment  model.Comment
	expanded bool
}

// View renders the current thread registry to a writer. Notifications are
// written immediately; thread changes accumulate until Render is called.
type View struct {
	mu      sync.Mutex
	w       io.Writer
	threads map[string]*thread
}

// New creates a View writing to w.
func New(w io.Writer) *View {
	return &View{w: w, threads: make(map[string]*thread)}
}

func (v *View) CreateThread(c model.Comment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.threads[c.ThreadKey()] = &thread{comment: c}
}

func (v *View) PopulateThread(key string, c model.Comment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t, ok := v.threads[key]; ok {
		t.comment = c
		return
	}
	v.threads[key] = &thread{comment: c}
}

func (v *View) DisposeThread(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.threads, key)
}

func (v *View) DisposeAllThreads() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.threads = make(map[string]*thread)
}

func (v *View) DisposeThreadsForFile(file string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for key, t := range v.threads {
		if t.comment.File == file {
			delete(v.threads, key)
		}
	}
}

func (v *View) AddReplyToThread(key string, reply model.Reply) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.threads[key]
	if !ok {
		return false
	}
	t.comment.Replies = append(t.comment.Replies, reply)
	return true
}

func (v *View) UpdateThreadWithComment(key string, c model.Comment) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.threads[key]
	if !ok {
		return false
	}
	t.comment = c
	return true
}

func (v *View) ThreadKeysForFile(file string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var keys []string
	for key, t := range v.threads {
		if t.comment.File == file {
			keys = append(keys, key)
		}
	}
	return keys
}

func (v *View) ShowInfo(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.w, infoStyle.Render(msg))
}

func (v *View) ShowError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.w, errorStyle.Render(msg))
}

// SetExpanded flips a thread between collapsed (root comment only) and
// expanded (replies shown). Expansion survives reconciliation because
// updates replace the comment, not the thread.
func (v *View) SetExpanded(key string, expanded bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.threads[key]
	if !ok {
		return false
	}
	t.expanded = expanded
	return true
}

// Render writes the full panel: threads grouped by file, ordered by file
// path then line.
func (v *View) Render() {
	v.mu.Lock()
	defer v.mu.Unlock()

	byFile := make(map[string][]*thread)
	for _, t := range v.threads {
		byFile[t.comment.File] = append(byFile[t.comment.File], t)
	}
	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	var b strings.Builder
	if len(files) == 0 {
		b.WriteString(metaStyle.Render("No active comments.") + "\n")
	}
	for _, file := range files {
		threads := byFile[file]
		sort.Slice(threads, func(i, j int) bool {
			if threads[i].comment.Line != threads[j].comment.Line {
				return threads[i].comment.Line < threads[j].comment.Line
			}
			return threads[i].comment.ID < threads[j].comment.ID
		})

		b.WriteString(fileStyle.Render(file) + "\n")
		for _, t := range threads {
			b.WriteString(renderThread(t))
		}
		b.WriteString("\n")
	}
	fmt.Fprint(v.w, b.String())
}

func renderThread(t *thread) string {
	c := t.comment
	sev := severityStyles[c.Severity]

	var b strings.Builder
	header := fmt.Sprintf("  %s #%s %s", sev.Render(c.Severity.Icon()), c.ID, titleStyle.Render(c.Title))
	b.WriteString(header + "\n")

	meta := fmt.Sprintf("    %s", lineRange(c))
	if c.Outdated {
		meta += " " + outdatedStyle.Render("[outdated]")
	}
	if n := len(c.Replies); n > 0 {
		meta += " " + metaStyle.Render(fmt.Sprintf("(%d replies)", n))
	}
	b.WriteString(meta + "\n")

	first, _, _ := strings.Cut(c.Message, "\n")
	b.WriteString("    " + first + "\n")

	if t.expanded {
		for _, r := range c.Replies {
			b.WriteString(replyStyle.Render(fmt.Sprintf("  ↳ %s: %s", r.Author, r.Message)) + "\n")
		}
	}
	return b.String()
}

func lineRange(c model.Comment) string {
	if c.EndLine > 0 && c.EndLine != c.Line {
		return fmt.Sprintf("L%d-%d", c.Line, c.EndLine)
	}
	return fmt.Sprintf("L%d", c.Line)
}
