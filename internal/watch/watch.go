// Package watch drives the rename pipeline from filesystem events. New or
// modified files are debounced per path until they settle, then run through
// the same resolver, collision, and executor stages as a batch invocation.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fakeyudi/scanstamp/internal/pipeline"
)

// DefaultSettle is how long a path must stay quiet before it is processed.
// Scanners write output in bursts; renaming a file mid-write corrupts the
// scan.
const DefaultSettle = 500 * time.Millisecond

// Watcher owns one watch session over a directory tree.
type Watcher struct {
	Runner    *pipeline.Runner
	Dir       string
	Recursive bool

	// Settle is the per-path quiet period. Zero means DefaultSettle.
	Settle time.Duration

	// Ignore lists exact paths never processed, such as the rename log and
	// the report when they live inside the watched tree.
	Ignore []string
}

// Run watches until ctx is cancelled, then prints one summary over every
// batch processed and returns the accumulated counters.
func (w *Watcher) Run(ctx context.Context) (pipeline.Counters, error) {
	var total pipeline.Counters

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return total, fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTargets(watcher); err != nil {
		return total, err
	}

	settle := w.Settle
	if settle == 0 {
		settle = DefaultSettle
	}

	// Per-path deadlines; the timer always fires at the earliest one.
	pending := make(map[string]time.Time)
	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	rearm := func() {
		var earliest time.Time
		for _, deadline := range pending {
			if earliest.IsZero() || deadline.Before(earliest) {
				earliest = deadline
			}
		}
		if earliest.IsZero() {
			return
		}
		wait := time.Until(earliest)
		if wait < 0 {
			wait = 0
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)
	}

	for {
		select {
		case <-ctx.Done():
			w.Runner.Summarize(total)
			return total, nil

		case event, ok := <-watcher.Events:
			if !ok {
				w.Runner.Summarize(total)
				return total, nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := event.Name
			if info, err := os.Stat(name); err == nil && info.IsDir() {
				// New directories join the watch; they are never renamed.
				if w.Recursive && event.Has(fsnotify.Create) && w.wanted(name) {
					watcher.Add(name)
				}
				continue
			}
			if !w.wanted(name) {
				continue
			}
			pending[name] = time.Now().Add(settle)
			rearm()

		case <-timer.C:
			now := time.Now()
			var due []string
			for path, deadline := range pending {
				if !deadline.After(now) {
					due = append(due, path)
					delete(pending, path)
				}
			}
			if len(due) > 0 {
				sort.Strings(due)
				total.Add(w.Runner.Process(ctx, due))
			}
			rearm()

		case _, ok := <-watcher.Errors:
			if !ok {
				w.Runner.Summarize(total)
				return total, nil
			}
			// Watcher errors are non-fatal; keep watching.
		}
	}
}

// addTargets registers the directory, and with Recursive every visible
// subdirectory, on the watcher.
func (w *Watcher) addTargets(watcher *fsnotify.Watcher) error {
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if !w.Recursive {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		watcher.Add(path)
		return nil
	})
}

// wanted filters event paths: the tool's own files and hidden files are
// never candidates.
func (w *Watcher) wanted(path string) bool {
	clean := filepath.Clean(path)
	for _, ignored := range w.Ignore {
		if clean == filepath.Clean(ignored) {
			return false
		}
	}
	return !strings.HasPrefix(filepath.Base(clean), ".")
}
