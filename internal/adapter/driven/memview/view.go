// Package memview provides a deterministic in-memory ThreadView used by
// tests and headless tooling in place of a live editor surface.
package memview

import (
	"strings"
	"sync"

	"github.com/ericfisherdev/localreview/internal/domain/model"
	"github.com/ericfisherdev/localreview/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ThreadView = (*View)(nil)

// Thread is one materialized comment thread together with its view-only
// state. UpdateCount and Populated exist so tests can distinguish in-place
// updates from dispose-and-recreate cycles.
type Thread struct {
	Comment     model.Comment
	Expanded    bool
	Populated   bool
	UpdateCount int
}

// View is an in-memory realization of the ThreadView capability set.
type View struct {
	mu      sync.Mutex
	threads map[string]*Thread
	infos   []string
	errors  []string
}

// New creates an empty View.
func New() *View {
	return &View{threads: make(map[string]*Thread)}
}

func (v *View) CreateThread(c model.Comment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.threads[c.ThreadKey()] = &Thread{Comment: c}
}

func (v *View) PopulateThread(key string, c model.Comment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t, ok := v.threads[key]; ok {
		t.Comment = c
		t.Populated = true
		return
	}
	v.threads[key] = &Thread{Comment: c, Populated: true}
}

func (v *View) DisposeThread(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.threads, key)
}

func (v *View) DisposeAllThreads() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.threads = make(map[string]*Thread)
}

func (v *View) DisposeThreadsForFile(file string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for key, t := range v.threads {
		if t.Comment.File == file {
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
	t.Comment.Replies = append(t.Comment.Replies, reply)
	return true
}

func (v *View) UpdateThreadWithComment(key string, c model.Comment) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.threads[key]
	if !ok {
		return false
	}
	t.Comment = c
	t.UpdateCount++
	return true
}

func (v *View) ThreadKeysForFile(file string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var keys []string
	for key, t := range v.threads {
		if t.Comment.File == file {
			keys = append(keys, key)
		}
	}
	return keys
}

func (v *View) ShowInfo(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.infos = append(v.infos, msg)
}

func (v *View) ShowError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, msg)
}

// Thread returns a copy of the thread stored under key, for inspection.
func (v *View) Thread(key string) (Thread, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.threads[key]
	if !ok {
		return Thread{}, false
	}
	return *t, true
}

// SetExpanded flips view-only expansion state, simulating a user opening or
// collapsing a thread.
func (v *View) SetExpanded(key string, expanded bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.threads[key]
	if !ok {
		return false
	}
	t.Expanded = expanded
	return true
}

// Len returns the number of threads currently displayed.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.threads)
}

// Infos returns the informational notifications shown so far.
func (v *View) Infos() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.infos...)
}

// Errors returns the error notifications shown so far.
func (v *View) Errors() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.errors...)
}

// Notifications returns all notifications joined for convenient substring
// assertions.
func (v *View) Notifications() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return strings.Join(append(append([]string(nil), v.infos...), v.errors...), "\n")
}
