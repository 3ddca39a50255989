// Package content loads directory listings and previews off the interactive
// path. One Manager runs per content kind; panels talk to it only through
// its request and response channels.
package content

import (
	"context"
	"runtime"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rmill/internal/cache"
	"github.com/kk-code-lab/rmill/internal/panel"
)

const requestBuffer = 64

// ManagerConfig configures a Manager.
type ManagerConfig[T cache.Item[T]] struct {
	// Name labels log lines.
	Name string
	// Load builds the content for a canonical path. It runs on a pool
	// goroutine and must not fail: errors become empty content.
	Load func(path string) T
	// Cache receives every loaded value.
	Cache *cache.Cache[T]
	// Loaded, when set, runs on the manager loop after a value is cached.
	Loaded func(path string, value T)
	// Workers bounds concurrent loads. Zero means GOMAXPROCS.
	Workers int
	Log     *zap.Logger
}

// Manager serves FetchRequests for one content kind. Loads run on at most
// Workers goroutines; the Run loop only coordinates, so it keeps draining
// requests while loads are slow.
type Manager[T cache.Item[T]] struct {
	cfg       ManagerConfig[T]
	requests  chan panel.FetchRequest
	responses chan panel.Response[T]
	log       *zap.Logger
}

// NewManager returns a manager. Call Run to start it.
func NewManager[T cache.Item[T]](cfg ManagerConfig[T]) *Manager[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager[T]{
		cfg:       cfg,
		requests:  make(chan panel.FetchRequest, requestBuffer),
		responses: make(chan panel.Response[T]),
		log:       log.With(zap.String("manager", cfg.Name)),
	}
}

// Requests is where panels send fetches. Closing it shuts the manager down
// once outstanding work has been delivered.
func (m *Manager[T]) Requests() chan<- panel.FetchRequest {
	return m.requests
}

// Responses delivers loaded content. It is closed when Run returns.
func (m *Manager[T]) Responses() <-chan panel.Response[T] {
	return m.responses
}

type loadResult[T any] struct {
	req   panel.FetchRequest
	value T
}

type pendingKey struct {
	slot uint64
	path string
}

// Run processes requests until the request channel is closed or ctx is
// done, then waits for running loads and closes the response channel.
// After cancellation nothing more is delivered.
func (m *Manager[T]) Run(ctx context.Context) {
	defer close(m.responses)

	var (
		requests = (<-chan panel.FetchRequest)(m.requests)
		done     = make(chan loadResult[T])
		pending  []panel.FetchRequest
		queued   = make(map[pendingKey]int)
		outbox   []panel.Response[T]
		running  int
		stopping = ctx.Done()
		canceled bool
	)

	enqueue := func(req panel.FetchRequest) {
		key := pendingKey{slot: req.Identity.SlotID, path: req.Path}
		if i, ok := queued[key]; ok {
			// Same slot asked for the same path again before we got to it.
			pending[i] = req
			return
		}
		queued[key] = len(pending)
		pending = append(pending, req)
	}

	dispatch := func() {
		for running < m.cfg.Workers && len(pending) > 0 {
			req := pending[0]
			pending = pending[1:]
			delete(queued, pendingKey{slot: req.Identity.SlotID, path: req.Path})
			for k, i := range queued {
				queued[k] = i - 1
			}
			running++
			go func() {
				done <- loadResult[T]{req: req, value: m.cfg.Load(req.Path)}
			}()
		}
	}

	for {
		if !canceled {
			dispatch()
		}
		if requests == nil && running == 0 && len(pending) == 0 && len(outbox) == 0 {
			return
		}

		var (
			out  chan<- panel.Response[T]
			next panel.Response[T]
		)
		if len(outbox) > 0 && !canceled {
			out = m.responses
			next = outbox[0]
		}

		select {
		case req, ok := <-requests:
			if !ok {
				requests = nil
				continue
			}
			enqueue(req)

		case res := <-done:
			running--
			m.cfg.Cache.Insert(res.req.Path, res.value)
			if m.cfg.Loaded != nil {
				m.cfg.Loaded(res.req.Path, res.value)
			}
			if canceled {
				continue
			}
			outbox = append(outbox, panel.Response[T]{Content: res.value, Identity: res.req.Identity})

		case out <- next:
			outbox = outbox[1:]

		case <-stopping:
			stopping = nil
			canceled = true
			requests = nil
			pending = nil
			outbox = nil
			clear(queued)
			m.log.Debug("manager stopping", zap.Int("running", running))
		}
	}
}
