package confloader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write
// before it reports a change.
const DefaultDebounce = 50 * time.Millisecond

// Watcher reports changes to config files.
//
// Directories are watched rather than files, so a file replaced by rename
// (as most editors save) or created after Watch is still seen. A burst of
// writes to one file is reported once.
type Watcher struct {
	fw       *fsnotify.Watcher
	log      *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	files    map[string]bool
	onChange []func(path string)

	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the watcher's logger. The default is slog.Default.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.log = l }
}

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher returns a stopped watcher with no files.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fw:       fw,
		log:      slog.Default(),
		debounce: DefaultDebounce,
		files:    make(map[string]bool),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds path. Its directory must exist; the file need not.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	w.mu.Lock()
	w.files[abs] = true
	w.mu.Unlock()

	w.log.Debug("watching config file", "path", abs)
	return nil
}

// OnChange registers fn. Callbacks run on the watcher goroutine, one
// change at a time.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Start runs the event loop in a new goroutine until Stop.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			path, ok := w.watched(ev.Name)
			if !ok {
				continue
			}
			pending[path] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			for path := range pending {
				w.log.Debug("config file changed", "path", path)
				w.notify(path)
			}
			clear(pending)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)

		case <-w.done:
			timer.Stop()
			return
		}
	}
}

// Stop ends the event loop and releases the fsnotify handle. Later calls
// return the first call's result.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.stopErr = w.fw.Close()
	})
	return w.stopErr
}

func (w *Watcher) watched(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return abs, w.files[abs]
}

func (w *Watcher) notify(path string) {
	w.mu.Lock()
	fns := append(([]func(string))(nil), w.onChange...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn(path)
	}
}
