package content

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rmill/internal/cache"
	"github.com/kk-code-lab/rmill/internal/fs"
	"github.com/kk-code-lab/rmill/internal/panel"
)

// fillDepth is how far below a freshly listed directory the prefill looks.
const fillDepth = 2

// Prefill warms the caches around directories the user opens. At most one
// walk runs at a time.
type Prefill struct {
	Directories *cache.Cache[panel.DirectoryPanel]
	Previews    *cache.Cache[panel.Preview]
	Loader      *Loader
	// Shutdown is polled between entries; once set the walk stops.
	Shutdown *atomic.Bool
	Log      *zap.Logger

	mu      sync.Mutex
	pending string
	busy    bool
}

// Request schedules a walk of path in the background. Requests arriving
// while a walk runs replace each other, so only the latest one is walked
// next.
func (p *Prefill) Request(path string) {
	p.mu.Lock()
	p.pending = path
	start := !p.busy
	p.busy = true
	p.mu.Unlock()
	if start {
		go p.drain()
	}
}

func (p *Prefill) drain() {
	for {
		p.mu.Lock()
		path := p.pending
		p.pending = ""
		if path == "" || (p.Shutdown != nil && p.Shutdown.Load()) {
			p.busy = false
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
		p.FillCache(path)
	}
}

// FillCache walks path two levels deep and caches listings of the
// directories it meets and previews of the files directly inside path.
// Only entries that are missing or stale are loaded, and each cache receives
// at most a sixteenth of its capacity.
func (p *Prefill) FillCache(path string) {
	dirBudget := p.Directories.Capacity() / 16
	fileBudget := p.Previews.Capacity() / 16
	var dirs, files int

	err := fs.WalkDepth(path, fillDepth, func(e fs.DirectoryEntry) bool {
		if p.Shutdown != nil && p.Shutdown.Load() {
			return false
		}
		if e.IsSymlink {
			// Cache keys are canonical paths.
			return true
		}
		switch {
		case e.IsDir && dirs < dirBudget:
			if p.Directories.RequiresUpdate(e.Path) {
				dir := p.Loader.Directory(e.Path)
				p.Directories.Insert(e.Path, dir)
				p.Previews.Insert(e.Path, p.Loader.DirectoryPreview(dir))
				dirs++
			}
		case !e.IsDir && files < fileBudget && isDirectChild(path, e.Path):
			if p.Previews.RequiresUpdate(e.Path) {
				p.Previews.Insert(e.Path, p.Loader.Preview(e.Path))
				files++
			}
		}
		return dirs < dirBudget || files < fileBudget
	})
	if err != nil {
		p.log().Debug("prefill walk failed", zap.String("path", path), zap.Error(err))
	}
	p.log().Debug("prefill done", zap.String("path", path), zap.Int("dirs", dirs), zap.Int("files", files))
}

func isDirectChild(dir, path string) bool {
	return filepath.Dir(path) == filepath.Clean(dir)
}

func (p *Prefill) log() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
