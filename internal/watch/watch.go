// Package watch re-runs a callback whenever the task store or imported task
// files change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
)

// DefaultDebounce coalesces the burst of events an atomic rename produces.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Files are individual files to watch. Their parent directories are
	// watched so that atomic renames are observed.
	Files []string
	// Dirs are watched as a whole; any change inside them counts.
	Dirs []string
	// Debounce is the quiet period before the callback fires. Zero means
	// DefaultDebounce.
	Debounce time.Duration
	Logger   *log.Logger
}

// Watcher reports debounced changes to a set of files and directories.
type Watcher struct {
	files    map[string]bool
	dirs     map[string]bool
	watch    []string
	debounce time.Duration
	logger   *log.Logger
}

// New returns a Watcher for opts. Paths are made absolute.
func New(opts Options) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: opts.Debounce,
		logger:   opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = logging.New("watch")
	}

	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			w.watch = append(w.watch, dir)
		}
	}
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving watch path %q: %w", f, err)
		}
		w.files[abs] = true
		add(filepath.Dir(abs))
	}
	for _, d := range opts.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("resolving watch path %q: %w", d, err)
		}
		w.dirs[abs] = true
		add(abs)
	}
	if len(w.watch) == 0 {
		return nil, fmt.Errorf("creating watcher: nothing to watch")
	}
	return w, nil
}

// Run blocks until ctx is cancelled, calling onChange once per burst of
// relevant filesystem events. Errors from onChange are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer fw.Close() //nolint:errcheck

	for _, dir := range w.watch {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %q: %w", dir, err)
		}
		w.logger.Debug("watching", "dir", dir)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				w.logger.Error("refresh failed", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.files[name] {
		return true
	}
	for dir := range w.dirs {
		if rel, err := filepath.Rel(dir, name); err == nil && rel != ".." && !startsWithParent(rel) {
			return true
		}
	}
	return false
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
