// Package watch observes the comment storage directory and reports which
// reviewed source file changed, so an open surface can reconcile its threads
// after an external process (the CLI, another editor) rewrites a collection.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ericfisherdev/localreview/internal/adapter/driven/filestore"
)

// SaveStater is the slice of the comment store the watcher needs: whether a
// persist just happened, so self-triggered events can be skipped.
type SaveStater interface {
	Saving() bool
}

// Event reports that the collection for one reviewed source file changed on
// disk underneath us.
type Event struct {
	File string
}

// Watcher debounces filesystem events on the storage directory into
// per-file Events. Events arriving inside the store's save cool-down are
// dropped; a genuinely external write landing in that window is lost until
// the next change, which is the documented residual race of this design.
type Watcher struct {
	dir      string
	store    SaveStater
	debounce time.Duration
	logger   *slog.Logger

	fw     *fsnotify.Watcher
	events chan Event

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over the given storage directory, creating the
// directory if it does not exist yet.
func New(dir string, store SaveStater, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		store:    store,
		debounce: debounce,
		logger:   logger,
		fw:       fw,
		events:   make(chan Event, 16),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Events returns the channel of debounced change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start processes filesystem events until ctx is done. It returns when the
// context is cancelled or the underlying watcher closes.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("storage watcher error", "error", err)
		}
	}
}

// Close stops the underlying watcher and releases pending debounce timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for file, t := range w.timers {
		t.Stop()
		delete(w.timers, file)
	}
	w.mu.Unlock()
	return w.fw.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	file, ok := filestore.DecodeStorageName(filepath.Base(ev.Name))
	if !ok {
		return
	}
	if w.store.Saving() {
		w.logger.Debug("skipping self-triggered storage event", "file", file)
		return
	}
	w.schedule(file)
}

// schedule coalesces rapid successive events for one file into a single
// Event after the debounce delay.
func (w *Watcher) schedule(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[file]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[file] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, file)
		w.mu.Unlock()

		select {
		case w.events <- Event{File: file}:
		default:
			w.logger.Debug("dropping storage event, channel full", "file", file)
		}
	})
}
