package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of events (editors often write a file in
// several steps) into one change notification.
const DefaultDebounce = 250 * time.Millisecond

// Event represents a change to a file matching the watch pattern.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher monitors a directory for changes to files matching a doublestar pattern.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	pattern  string
	debounce time.Duration
	changes  chan []Event
	log      *slog.Logger
}

// New creates a Watcher on dir. Patterns that reach into subdirectories
// ("**/*.json", "runs/*.json") also watch every subdirectory present at startup.
func New(dir, pattern string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsw:      fsw,
		dir:      dir,
		pattern:  pattern,
		debounce: debounce,
		changes:  make(chan []Event, 1),
		log:      logger,
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	if strings.Contains(pattern, "/") {
		_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() || p == dir {
				return nil
			}
			if err := fsw.Add(p); err != nil {
				logger.Warn("cannot watch directory", "dir", p, "err", err)
			}
			return nil
		})
	}

	return w, nil
}

// Changes delivers one batch of matching events per quiet period.
func (w *Watcher) Changes() <-chan []Event {
	return w.changes
}

// Start begins listening for file events. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.changes)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var pending []Event

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 && strings.Contains(w.pattern, "/") {
				w.addIfDir(ev.Name)
			}
			if !w.relevant(ev) {
				continue
			}
			pending = append(pending, Event{Path: ev.Name, Op: ev.Op})
			timer.Reset(w.debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			select {
			case w.changes <- pending:
				pending = nil
			default:
				// Previous batch not consumed yet; fold into the next one.
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "err", err)
		}
	}
}

// relevant reports whether ev touches a file the pattern selects.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.dir, ev.Name)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(w.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func (w *Watcher) addIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.log.Debug("not watching new path", "path", path, "err", err)
	}
}
