package panel

import (
	"go.uber.org/zap"

	"github.com/kk-code-lab/rmill/internal/cache"
	"github.com/kk-code-lab/rmill/internal/fs"
)

// Content is what a managed panel displays and caches.
type Content[T any] interface {
	cache.Item[T]
	Path() string
	Hash() uint64
	// Merge returns next adjusted to keep the receiver's view state.
	Merge(next T) T
}

// Watcher is notified about the paths panels display.
type Watcher interface {
	Watch(path string) error
	Unwatch(path string) error
}

// Factories builds the placeholder values of a content kind.
type Factories[T any] struct {
	Empty   func() T
	Loading func(path string) T
}

// Managed is one panel slot. It always has something to show: cached
// content, a loading placeholder, or the empty value. Fresh content arrives
// through ApplyResponse and is accepted only if it answers the slot's newest
// request.
//
// Managed is not safe for concurrent use; the orchestrator owns it.
type Managed[T Content[T]] struct {
	content   T
	seq       *Sequencer
	cache     *cache.Cache[T]
	requests  chan<- FetchRequest
	watcher   Watcher
	factories Factories[T]
	log       *zap.Logger

	watched string
}

// NewManaged returns a slot showing the empty value. watcher may be nil.
func NewManaged[T Content[T]](c *cache.Cache[T], requests chan<- FetchRequest, watcher Watcher, factories Factories[T], log *zap.Logger) *Managed[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Managed[T]{
		content:   factories.Empty(),
		seq:       NewSequencer(),
		cache:     c,
		requests:  requests,
		watcher:   watcher,
		factories: factories,
		log:       log,
	}
}

// Content returns the displayed value.
func (m *Managed[T]) Content() T { return m.content }

// Path returns the displayed path, or "".
func (m *Managed[T]) Path() string { return m.content.Path() }

// Identity returns the slot's current identity.
func (m *Managed[T]) Identity() Identity { return m.seq.Current() }

// Mutate replaces the displayed value with fn applied to it. It is used for
// view-state changes such as cursor moves and never touches the generation.
func (m *Managed[T]) Mutate(fn func(T) T) {
	m.content = fn(m.content)
}

// Request points the slot at path. An empty path, or one that cannot be
// resolved, shows the empty value without fetching. Otherwise cached content
// is shown at once and a fetch is sent unless the cached value is still as
// new as the file on disk.
func (m *Managed[T]) Request(path string) {
	m.unwatch()

	if path == "" {
		m.seq.Supersede()
		m.content = m.content.Merge(m.factories.Empty())
		return
	}

	canonical, err := fs.Canonicalize(path)
	if err != nil {
		m.log.Warn("cannot resolve path", zap.String("path", path), zap.Error(err))
		m.seq.Supersede()
		m.content = m.content.Merge(m.factories.Empty())
		return
	}

	if canonical == m.content.Path() {
		m.seq.Advance()
		m.watch(canonical)
		return
	}

	m.watch(canonical)

	cached, ok := m.cache.Get(canonical)
	if ok {
		m.content = m.content.Merge(cached)
		if !m.cache.RequiresUpdate(canonical) {
			m.seq.Supersede()
			return
		}
	} else {
		m.content = m.content.Merge(m.factories.Loading(canonical))
	}
	m.send(canonical)
}

// Refresh re-fetches the displayed path under a new generation and keeps the
// current value on screen until the answer arrives.
func (m *Managed[T]) Refresh() {
	path := m.content.Path()
	if path == "" {
		return
	}
	m.send(path)
}

func (m *Managed[T]) send(path string) {
	id := m.seq.Issue()
	m.requests <- FetchRequest{
		Path:         path,
		Identity:     id,
		PreviousHash: m.content.Hash(),
	}
}

// ApplyResponse installs content if identity answers the newest request of
// this slot and reports whether it did.
func (m *Managed[T]) ApplyResponse(content T, identity Identity) bool {
	if !m.seq.Accepts(identity) {
		return false
	}
	m.seq.Applied(identity)
	m.content = m.content.Merge(content)
	return true
}

// Apply is ApplyResponse for a response value.
func (m *Managed[T]) Apply(resp Response[T]) bool {
	return m.ApplyResponse(resp.Content, resp.Identity)
}

// UpdateDirectly installs content that is already known, such as a listing
// moved over from a neighbouring column. Pending fetches are invalidated and
// the watch follows the new path.
func (m *Managed[T]) UpdateDirectly(content T) {
	m.unwatch()
	m.seq.Supersede()
	m.content = content
	if path := content.Path(); path != "" {
		m.watch(path)
	}
}

// Close drops the slot's watch.
func (m *Managed[T]) Close() {
	m.unwatch()
}

func (m *Managed[T]) watch(path string) {
	if m.watcher == nil || path == m.watched {
		return
	}
	if err := m.watcher.Watch(path); err != nil {
		m.log.Warn("watch failed", zap.String("path", path), zap.Error(err))
		return
	}
	m.watched = path
}

func (m *Managed[T]) unwatch() {
	if m.watcher == nil || m.watched == "" {
		return
	}
	if err := m.watcher.Unwatch(m.watched); err != nil {
		m.log.Warn("unwatch failed", zap.String("path", m.watched), zap.Error(err))
	}
	m.watched = ""
}
