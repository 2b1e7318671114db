// Package watch turns raw fsnotify events into debounced batches of changed
// paths suitable for feeding into internal/detect as ForcedChanged input.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/rebuild"
	"github.com/fsnotify/fsnotify"
)

// Batch is one coalesced group of filesystem changes, ready to hand to
// detect.Input.ForcedChanged. Paths are POSIX-normalized absolute paths.
type Batch struct {
	Changed       map[string]bool
	ConfigChanged bool

	// EventTypes maps a changed path to the rebuild package's EventType,
	// letting a caller feed this batch straight into rebuild.Classify.
	EventTypes map[string]rebuild.EventType
}

// Watcher watches a set of root directories and emits debounced Batches on
// Events. It mirrors the teacher's serve-command watch loop (event filtering,
// new-directory discovery, single debounce timer) but as a standalone
// collaborator instead of cobra-command globals.
type Watcher struct {
	fsw        *fsnotify.Watcher
	ignoreDirs []string // absolute, e.g. the output dir
	configPath string   // absolute path to the site config file, if any
	debounce   time.Duration
	Events     chan Batch
	Errors     chan error
}

// Options configures a Watcher.
type Options struct {
	// IgnoreDirs are absolute directories excluded from triggering rebuilds,
	// typically the output directory and the .bengal state directory.
	IgnoreDirs []string

	// ConfigPath, if set, is compared against each event to flag a
	// config-hash-significant change distinctly from a content change.
	ConfigPath string

	// Debounce is the quiet period after the last event before a batch
	// fires. Defaults to 300ms, matching the teacher's serve command.
	Debounce time.Duration
}

// New creates a Watcher and recursively adds every root directory.
func New(roots []string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	w := &Watcher{
		fsw:        fsw,
		ignoreDirs: absAll(opts.IgnoreDirs),
		configPath: absPath(opts.ConfigPath),
		debounce:   debounce,
		Events:     make(chan Batch, 1),
		Errors:     make(chan error, 1),
	}

	for _, root := range roots {
		if root == "" {
			continue
		}
		if err := addDirRecursive(fsw, root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run blocks, translating fsnotify events into debounced Batches on
// w.Events, until ctx is canceled. Callers typically run this in its own
// goroutine.
func (w *Watcher) Run(ctx context.Context) {
	pending := make(map[string]bool)
	eventTypes := make(map[string]rebuild.EventType)
	configChanged := false

	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 && !configChanged {
			return
		}
		batch := Batch{Changed: pending, ConfigChanged: configChanged, EventTypes: eventTypes}
		pending = make(map[string]bool)
		eventTypes = make(map[string]rebuild.EventType)
		configChanged = false
		select {
		case w.Events <- batch:
		default:
			// A batch is already queued; merge into it instead of dropping.
			select {
			case old := <-w.Events:
				for p := range old.Changed {
					batch.Changed[p] = true
				}
				for p, et := range old.EventTypes {
					if _, ok := batch.EventTypes[p]; !ok {
						batch.EventTypes[p] = et
					}
				}
				batch.ConfigChanged = batch.ConfigChanged || old.ConfigChanged
			default:
			}
			w.Events <- batch
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			close(w.Events)
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event) {
				continue
			}
			w.handleNewDirectory(event)

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			path := bpath.ToPosix(absPath(event.Name))
			pending[path] = true
			eventTypes[path] = classifyEvent(event.Op)
			if w.configPath != "" && absPath(event.Name) == w.configPath {
				configChanged = true
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					drainTimer(timer)
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) shouldIgnore(event fsnotify.Event) bool {
	abs := absPath(event.Name)
	for _, dir := range w.ignoreDirs {
		if isPathWithinDir(abs, dir) {
			return true
		}
	}
	base := filepath.Base(event.Name)
	return strings.HasSuffix(event.Name, "~") ||
		strings.HasPrefix(base, ".") ||
		strings.HasSuffix(event.Name, ".swp") ||
		strings.HasSuffix(event.Name, ".swo") ||
		strings.HasSuffix(event.Name, ".tmp")
}

// handleNewDirectory adds newly created directories to the watcher so that
// new content sections are picked up without a restart.
func (w *Watcher) handleNewDirectory(event fsnotify.Event) {
	if event.Op&fsnotify.Create == 0 {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	_ = addDirRecursive(w.fsw, event.Name)
}

func addDirRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func isPathWithinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func absAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, absPath(p))
		}
	}
	return out
}

func classifyEvent(op fsnotify.Op) rebuild.EventType {
	switch {
	case op&fsnotify.Create != 0:
		return rebuild.EventCreated
	case op&fsnotify.Remove != 0:
		return rebuild.EventDeleted
	case op&fsnotify.Rename != 0:
		return rebuild.EventMoved
	default:
		return rebuild.EventModified
	}
}

func drainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
