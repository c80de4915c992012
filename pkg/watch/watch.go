// Package watch monitors a source directory and reports PNG files to
// convert as they appear or change.
//
// The watcher debounces rapid successive events for the same path (editors
// and downloads write files in bursts) and hands stable paths to a handler
// one at a time, keeping conversions sequential.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/icoforge/icoforge/pkg/errors"
)

// DefaultDebounce is how long a path must stay quiet before it is
// reported. Long enough to cover multi-chunk writes, short enough to feel
// immediate.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called for each settled PNG path, sequentially.
type Handler func(ctx context.Context, path string)

// Watcher monitors one directory for PNG changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *log.Logger

	fsw   *fsnotify.Watcher
	ready chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher for dir. The logger may be nil.
func New(dir string, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create filesystem watcher")
	}
	return &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   logger,
		fsw:      fsw,
		ready:    make(chan string, 64),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Run watches the directory until ctx is cancelled, invoking handler for
// each settled PNG path. Handler calls happen on the Run goroutine, so
// conversions stay sequential.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	if err := w.fsw.Add(w.dir); err != nil {
		w.fsw.Close()
		return errors.Wrap(errors.ErrCodeSourceNotFound, err, "watch %s", w.dir)
	}
	defer w.fsw.Close()

	w.logger.Info("watching for PNG changes", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.observe(ctx, ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)

		case path := <-w.ready:
			handler(ctx, path)
		}
	}
}

// observe filters an fsnotify event and (re)arms the debounce timer for
// its path.
func (w *Watcher) observe(ctx context.Context, ev fsnotify.Event) {
	if !IsCandidate(ev.Name) {
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.timers[ev.Name]; exists {
		timer.Stop()
	}
	path := ev.Name
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
}

// IsCandidate reports whether a path names a convertible source: a PNG by
// extension (case-insensitive) that is not a hidden or temp file.
func IsCandidate(path string) bool {
	base := filepath.Base(path)
	if base == "" || base[0] == '.' {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".png")
}
