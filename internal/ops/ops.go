// Package ops runs file operations (paste, delete, mkdir, touch, rename)
// one at a time off the interactive loop and reports their outcome.
package ops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Kind names an operation.
type Kind int

const (
	Paste Kind = iota
	Delete
	Mkdir
	Touch
	Rename
)

func (k Kind) String() string {
	switch k {
	case Paste:
		return "paste"
	case Delete:
		return "delete"
	case Mkdir:
		return "mkdir"
	case Touch:
		return "touch"
	case Rename:
		return "rename"
	default:
		return "unknown"
	}
}

// Clipboard holds the paths picked by copy or cut.
type Clipboard struct {
	Paths []string
	Cut   bool
}

// Empty reports whether nothing was picked.
func (c Clipboard) Empty() bool { return len(c.Paths) == 0 }

// Result reports a finished operation. Dirs lists the directories whose
// contents changed; Created is the new path for mkdir, touch and rename.
type Result struct {
	Kind    Kind
	Dirs    []string
	Created string
	Done    int
	Err     error
}

// Message is a one-line summary for the status bar.
func (r Result) Message() string {
	if r.Err != nil {
		return fmt.Sprintf("%s failed: %v", r.Kind, r.Err)
	}
	switch r.Kind {
	case Paste:
		return fmt.Sprintf("pasted %d item(s)", r.Done)
	case Delete:
		return fmt.Sprintf("deleted %d item(s)", r.Done)
	default:
		return fmt.Sprintf("%s %s", r.Kind, filepath.Base(r.Created))
	}
}

// Queue runs operations sequentially on one goroutine.
type Queue struct {
	jobs     chan func() Result
	results  chan Result
	shutdown *atomic.Bool
	useTrash bool
	log      *zap.Logger

	wg     sync.WaitGroup
	closed sync.Once
}

// NewQueue starts a queue. shutdown is polled by long copies; useTrash
// makes Delete move entries to the trash instead of removing them.
func NewQueue(shutdown *atomic.Bool, useTrash bool, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	q := &Queue{
		jobs:     make(chan func() Result, 16),
		results:  make(chan Result, 16),
		shutdown: shutdown,
		useTrash: useTrash,
		log:      log,
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	defer close(q.results)
	for job := range q.jobs {
		r := job()
		if r.Err != nil {
			q.log.Warn("operation failed", zap.Stringer("op", r.Kind), zap.Error(r.Err))
		} else {
			q.log.Info("operation done", zap.Stringer("op", r.Kind), zap.Int("items", r.Done))
		}
		q.results <- r
	}
}

// Results delivers one Result per submitted operation. It is closed after
// Close once pending operations have finished.
func (q *Queue) Results() <-chan Result {
	return q.results
}

// Close stops accepting operations and waits for the running ones.
func (q *Queue) Close() {
	q.closed.Do(func() {
		close(q.jobs)
	})
	q.wg.Wait()
}

// Paste copies or moves the clipboard into dir. Existing names get a
// "_copyN" suffix unless overwrite is set, in which case they are replaced.
func (q *Queue) Paste(clip Clipboard, dir string, overwrite bool) {
	clip.Paths = append([]string(nil), clip.Paths...)
	q.jobs <- func() Result { return paste(clip, dir, overwrite, q.shutdown) }
}

// Delete removes paths, through the trash when the queue uses it.
func (q *Queue) Delete(paths []string) {
	paths = append([]string(nil), paths...)
	useTrash := q.useTrash
	q.jobs <- func() Result { return remove(paths, useTrash) }
}

// Mkdir creates dir/name, including missing parents inside name.
func (q *Queue) Mkdir(dir, name string) {
	q.jobs <- func() Result { return mkdir(dir, name) }
}

// Touch creates the empty file dir/name.
func (q *Queue) Touch(dir, name string) {
	q.jobs <- func() Result { return touch(dir, name) }
}

// Rename renames path to newName within its directory.
func (q *Queue) Rename(path, newName string) {
	q.jobs <- func() Result { return rename(path, newName) }
}

func paste(clip Clipboard, dir string, overwrite bool, shutdown *atomic.Bool) Result {
	r := Result{Kind: Paste, Dirs: []string{dir}}
	var errs []error
	for _, src := range clip.Paths {
		if shutdown != nil && shutdown.Load() {
			errs = append(errs, ErrInterrupted)
			break
		}
		if within(dir, src) {
			errs = append(errs, fmt.Errorf("cannot paste %s into itself", src))
			continue
		}
		dst := filepath.Join(dir, filepath.Base(src))
		if dst == src {
			if clip.Cut {
				continue
			}
			dst = freeName(dir, filepath.Base(src))
		} else if pathExists(dst) {
			if overwrite {
				if err := os.RemoveAll(dst); err != nil {
					errs = append(errs, err)
					continue
				}
			} else {
				dst = freeName(dir, filepath.Base(src))
			}
		}

		var err error
		if clip.Cut {
			err = movePath(src, dst)
			r.Dirs = append(r.Dirs, filepath.Dir(src))
		} else {
			err = copyPath(src, dst, shutdown)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			if errors.Is(err, ErrInterrupted) {
				break
			}
			continue
		}
		r.Done++
	}
	r.Err = errors.Join(errs...)
	return r
}

func remove(paths []string, useTrash bool) Result {
	r := Result{Kind: Delete}
	var errs []error
	seen := make(map[string]bool)
	for _, p := range paths {
		var err error
		if useTrash && !within(p, TrashDir()) {
			err = MoveToTrash(p)
		} else {
			err = os.RemoveAll(p)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.Done++
		if dir := filepath.Dir(p); !seen[dir] {
			seen[dir] = true
			r.Dirs = append(r.Dirs, dir)
		}
	}
	r.Err = errors.Join(errs...)
	return r
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty name")
	}
	return nil
}

func mkdir(dir, name string) Result {
	r := Result{Kind: Mkdir, Dirs: []string{dir}}
	if r.Err = validName(name); r.Err != nil {
		return r
	}
	path := filepath.Join(dir, name)
	if !within(path, dir) {
		r.Err = fmt.Errorf("%q leaves %s", name, dir)
		return r
	}
	if pathExists(path) {
		r.Err = fmt.Errorf("%s already exists", path)
		return r
	}
	if r.Err = os.MkdirAll(path, 0o755); r.Err == nil {
		r.Created = path
		r.Done = 1
	}
	return r
}

func touch(dir, name string) Result {
	r := Result{Kind: Touch, Dirs: []string{dir}}
	if r.Err = validName(name); r.Err != nil {
		return r
	}
	path := filepath.Join(dir, name)
	if filepath.Dir(path) != filepath.Clean(dir) {
		r.Err = fmt.Errorf("%q is not a plain file name", name)
		return r
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		r.Err = err
		return r
	}
	r.Err = f.Close()
	r.Created = path
	r.Done = 1
	return r
}

func rename(path, newName string) Result {
	dir := filepath.Dir(path)
	r := Result{Kind: Rename, Dirs: []string{dir}}
	if r.Err = validName(newName); r.Err != nil {
		return r
	}
	dst := filepath.Join(dir, newName)
	if filepath.Dir(dst) != dir {
		r.Err = fmt.Errorf("%q is not a plain file name", newName)
		return r
	}
	if dst == path {
		r.Created = dst
		return r
	}
	if pathExists(dst) {
		r.Err = fmt.Errorf("%s already exists", dst)
		return r
	}
	if r.Err = os.Rename(path, dst); r.Err == nil {
		r.Created = dst
		r.Done = 1
	}
	return r
}
