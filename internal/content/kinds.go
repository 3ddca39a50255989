package content

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rmill/internal/cache"
	"github.com/kk-code-lab/rmill/internal/panel"
)

// Caches are the two shared content caches.
type Caches struct {
	Directories *cache.Cache[panel.DirectoryPanel]
	Previews    *cache.Cache[panel.Preview]
}

// NewCaches returns caches with the given capacities.
func NewCaches(directories, previews int) Caches {
	return Caches{
		Directories: cache.New[panel.DirectoryPanel](directories),
		Previews:    cache.New[panel.Preview](previews),
	}
}

// NewDirectoryManager returns the manager for directory listings. Every
// listing is also cached as a preview, and the first time a directory is
// served its surroundings are prefilled in the background, one walk at a
// time.
func NewDirectoryManager(c Caches, loader *Loader, workers int, shutdown *atomic.Bool, log *zap.Logger) *Manager[panel.DirectoryPanel] {
	prefill := &Prefill{
		Directories: c.Directories,
		Previews:    c.Previews,
		Loader:      loader,
		Shutdown:    shutdown,
		Log:         log,
	}
	var lastFilled string
	return NewManager(ManagerConfig[panel.DirectoryPanel]{
		Name:    "directory",
		Load:    loader.Directory,
		Cache:   c.Directories,
		Workers: workers,
		Log:     log,
		Loaded: func(path string, dir panel.DirectoryPanel) {
			c.Previews.Insert(path, loader.DirectoryPreview(dir))
			if path != lastFilled {
				lastFilled = path
				prefill.Request(path)
			}
		},
	})
}

// NewPreviewManager returns the manager for previews.
func NewPreviewManager(c Caches, loader *Loader, workers int, log *zap.Logger) *Manager[panel.Preview] {
	return NewManager(ManagerConfig[panel.Preview]{
		Name:    "preview",
		Load:    loader.Preview,
		Cache:   c.Previews,
		Workers: workers,
		Log:     log,
	})
}
