package content

import (
	"slices"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rmill/internal/fs"
	"github.com/kk-code-lab/rmill/internal/panel"
)

// PreviewOptions bounds what a preview may hold.
type PreviewOptions struct {
	// Lines caps text previews.
	Lines int
	// DirLimit caps directory previews.
	DirLimit int
	// ImageSize is the longest side of image thumbnails, in pixels.
	ImageSize int
}

// DefaultPreviewOptions returns the built-in preview bounds.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Lines: 128, DirLimit: 4096, ImageSize: 256}
}

// Loader builds content for the managers. Failures are logged and turned
// into empty content for the requested path.
type Loader struct {
	opts PreviewOptions
	log  *zap.Logger
}

// NewLoader returns a loader. log may be nil.
func NewLoader(opts PreviewOptions, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Lines <= 0 {
		opts.Lines = DefaultPreviewOptions().Lines
	}
	if opts.ImageSize <= 0 {
		opts.ImageSize = DefaultPreviewOptions().ImageSize
	}
	return &Loader{opts: opts, log: log}
}

// Directory lists path. An unreadable directory yields an empty listing.
func (l *Loader) Directory(path string) panel.DirectoryPanel {
	dir, err := LoadDirectory(path, 0)
	if err != nil {
		l.log.Warn("cannot list directory", zap.String("path", path), zap.Error(err))
	}
	return dir
}

// DirectoryPreview turns a listing into a directory preview holding at
// most DirLimit entries.
func (l *Loader) DirectoryPreview(dir panel.DirectoryPanel) panel.Preview {
	entries := dir.Elements()
	if l.opts.DirLimit <= 0 || len(entries) <= l.opts.DirLimit {
		return panel.DirectoryPreview(dir)
	}
	capped := slices.Clone(entries[:l.opts.DirLimit])
	return panel.DirectoryPreview(panel.NewDirectoryPanel(dir.Path(), capped, dir.Modified(), dir.ShowHidden()))
}

// Preview builds the preview for path. Failures yield an empty preview.
func (l *Loader) Preview(path string) panel.Preview {
	p, err := BuildPreview(path, l.opts)
	if err != nil {
		l.log.Warn("cannot build preview", zap.String("path", path), zap.Error(err))
		return panel.EmptyPreview(path)
	}
	return p
}

// LoadDirectory reads and sorts path, capped at limit entries when limit is
// positive. On error it still returns an empty listing for path.
func LoadDirectory(path string, limit int) (panel.DirectoryPanel, error) {
	mod, err := fs.ModTime(path)
	if err != nil {
		return panel.NewDirectoryPanel(path, nil, mod, false), err
	}
	entries, err := fs.ReadDirectory(path, limit)
	if err != nil {
		return panel.NewDirectoryPanel(path, nil, mod, false), err
	}
	return panel.NewDirectoryPanel(path, entries, mod, false), nil
}
