// Package watch reports changes to the directories panels are showing.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a directory must stay quiet before its change
// is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches directories on behalf of panels. Several panels may show
// the same directory, so watches are reference counted: the directory is
// only dropped from fsnotify when the last Unwatch arrives.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger

	mu   sync.Mutex
	refs map[string]int

	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New starts a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		log:      log,
		refs:     make(map[string]int),
		changes:  make(chan string, 16),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes delivers the paths of watched directories whose contents changed.
// It is closed by Close.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Watch adds one reference to path.
func (w *Watcher) Watch(path string) error {
	if path == "" {
		return nil
	}
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.refs[path] == 0 {
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		w.log.Debug("watching", zap.String("path", path))
	}
	w.refs[path]++
	return nil
}

// Unwatch drops one reference to path. Unwatching a path that is not
// watched is a no-op.
func (w *Watcher) Unwatch(path string) error {
	if path == "" {
		return nil
	}
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.refs[path]
	if !ok {
		return nil
	}
	if n > 1 {
		w.refs[path] = n - 1
		return nil
	}
	delete(w.refs, path)
	if err := w.fsw.Remove(path); err != nil {
		// The directory may already be gone.
		w.log.Debug("unwatch failed", zap.String("path", path), zap.Error(err))
	}
	w.log.Debug("stopped watching", zap.String("path", path))
	return nil
}

// Refs returns how many panels watch path.
func (w *Watcher) Refs(path string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refs[filepath.Clean(path)]
}

// Close stops the watcher and closes the Changes channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		close(w.changes)
	})
	return err
}

// owner maps an event path to the watched directory it belongs to.
func (w *Watcher) owner(name string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if parent := filepath.Dir(name); w.refs[parent] > 0 {
		return parent, true
	}
	if w.refs[name] > 0 {
		return name, true
	}
	return "", false
}

func (w *Watcher) run() {
	defer w.wg.Done()

	lastEvent := make(map[string]time.Time)
	tick := max(w.debounce/2, time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Chmod) {
				continue
			}
			if dir, ok := w.owner(event.Name); ok {
				lastEvent[dir] = time.Now()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			for dir, at := range lastEvent {
				if now.Sub(at) < w.debounce {
					continue
				}
				select {
				case w.changes <- dir:
					delete(lastEvent, dir)
				case <-w.done:
					return
				default:
					// Consumer is behind; try again on the next tick.
				}
			}
		}
	}
}
