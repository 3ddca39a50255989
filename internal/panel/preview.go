package panel

import (
	"encoding/binary"
	"hash/fnv"
	"image"
	"time"
)

// PreviewKind enumerates what a preview shows.
type PreviewKind int

const (
	PreviewEmpty PreviewKind = iota
	PreviewDirectory
	PreviewText
	PreviewImage
)

func (k PreviewKind) String() string {
	switch k {
	case PreviewDirectory:
		return "directory"
	case PreviewText:
		return "text"
	case PreviewImage:
		return "image"
	default:
		return "empty"
	}
}

// Preview is the right-hand column: one of a directory listing, the first
// lines of a text file, an image thumbnail, or nothing. Apart from the
// embedded directory's cursor it never changes after construction.
type Preview struct {
	kind       PreviewKind
	path       string
	loading    bool
	showHidden bool
	modified   time.Time
	hash       uint64

	dir   DirectoryPanel
	lines []string
	image *image.RGBA
	info  string
}

// DirectoryPreview wraps a directory listing.
func DirectoryPreview(dir DirectoryPanel) Preview {
	return Preview{
		kind:       PreviewDirectory,
		path:       dir.Path(),
		showHidden: dir.ShowHidden(),
		modified:   dir.Modified(),
		hash:       dir.Hash(),
		dir:        dir,
	}
}

// TextPreview shows lines of a file. Callers bound the number of lines.
func TextPreview(path string, lines []string, modified time.Time) Preview {
	p := Preview{kind: PreviewText, path: path, modified: modified, lines: lines}
	p.hash = p.computeHash()
	return p
}

// ImagePreview shows a thumbnail and a one-line description of the image.
func ImagePreview(path string, img *image.RGBA, info string, modified time.Time) Preview {
	p := Preview{kind: PreviewImage, path: path, modified: modified, image: img, info: info}
	p.hash = p.computeHash()
	return p
}

// EmptyPreview shows nothing. path may be empty.
func EmptyPreview(path string) Preview {
	p := Preview{kind: PreviewEmpty, path: path}
	p.hash = p.computeHash()
	return p
}

// LoadingPreview is the placeholder shown while path is fetched.
func LoadingPreview(path string) Preview {
	p := EmptyPreview(path)
	p.loading = true
	return p
}

func (p Preview) computeHash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(p.kind))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(p.path))
	binary.LittleEndian.PutUint64(buf[:], uint64(p.modified.UnixNano()))
	_, _ = h.Write(buf[:])
	for _, line := range p.lines {
		_, _ = h.Write([]byte(line))
		_, _ = h.Write([]byte{'\n'})
	}
	_, _ = h.Write([]byte(p.info))
	return h.Sum64()
}

func (p Preview) Kind() PreviewKind   { return p.kind }
func (p Preview) Path() string        { return p.path }
func (p Preview) Loading() bool       { return p.loading }
func (p Preview) Hash() uint64        { return p.hash }
func (p Preview) Modified() time.Time { return p.modified }
func (p Preview) Lines() []string     { return p.lines }
func (p Preview) Image() *image.RGBA  { return p.image }
func (p Preview) Info() string        { return p.info }

// Directory returns the embedded listing and whether there is one.
func (p Preview) Directory() (DirectoryPanel, bool) {
	return p.dir, p.kind == PreviewDirectory
}

// DirectoryPtr gives mutable access to the embedded listing, or nil.
func (p *Preview) DirectoryPtr() *DirectoryPanel {
	if p.kind != PreviewDirectory {
		return nil
	}
	return &p.dir
}

// Clone copies the embedded listing's view state. Lines and images are never
// modified and stay shared.
func (p Preview) Clone() Preview {
	out := p
	if p.kind == PreviewDirectory {
		out.dir = p.dir.Clone()
	}
	return out
}

// Merge returns next with the hidden toggle of p, keeping the directory
// selection when both show the same directory.
func (p Preview) Merge(next Preview) Preview {
	next.showHidden = p.showHidden
	if next.kind != PreviewDirectory {
		return next
	}
	if p.kind == PreviewDirectory {
		next.dir = p.dir.Merge(next.dir)
	} else {
		next.dir.SetShowHidden(p.showHidden)
	}
	return next
}

// ShowHidden reports the hidden toggle carried by the preview.
func (p Preview) ShowHidden() bool { return p.showHidden }

// SetShowHidden updates the hidden toggle, including the embedded listing.
func (p *Preview) SetShowHidden(show bool) {
	p.showHidden = show
	if p.kind == PreviewDirectory {
		p.dir.SetShowHidden(show)
	}
}
