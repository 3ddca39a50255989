package panel

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
	"time"

	"github.com/kk-code-lab/rmill/internal/fs"
)

// DirectoryPanel is the listing of one directory plus the view state on top
// of it: which entry is selected, whether hidden entries are shown, and which
// entries are marked.
//
// visible holds the ascending indices of non-hidden elements. selected is an
// index into elements and cursor an index into visible; cursor always points
// at the nearest visible entry at or before selected, so when hidden entries
// are not shown selected == visible[cursor].
type DirectoryPanel struct {
	elements   []fs.DirectoryEntry
	visible    []int
	selected   int
	cursor     int
	path       string
	loading    bool
	showHidden bool
	hash       uint64
	modified   time.Time
	marked     map[string]struct{}
}

// NewDirectoryPanel builds a panel for path from already sorted entries.
func NewDirectoryPanel(path string, entries []fs.DirectoryEntry, modified time.Time, showHidden bool) DirectoryPanel {
	p := DirectoryPanel{
		elements:   entries,
		path:       path,
		showHidden: showHidden,
		modified:   modified,
	}
	p.visible = visibleIndices(entries)
	p.hash = hashEntries(path, entries)
	p.selectIndex(p.firstShown())
	return p
}

// EmptyDirectoryPanel returns a panel with no path and no entries.
func EmptyDirectoryPanel() DirectoryPanel {
	return DirectoryPanel{}
}

// LoadingDirectoryPanel returns the placeholder shown while path is fetched.
func LoadingDirectoryPanel(path string) DirectoryPanel {
	return DirectoryPanel{path: path, loading: true}
}

func visibleIndices(entries []fs.DirectoryEntry) []int {
	out := make([]int, 0, len(entries))
	for i, e := range entries {
		if !e.IsHidden {
			out = append(out, i)
		}
	}
	return out
}

func hashEntries(path string, entries []fs.DirectoryEntry) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	var buf [8]byte
	for _, e := range entries {
		_, _ = h.Write([]byte(e.Name))
		if e.IsDir {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(e.Modified.UnixNano()))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Path returns the directory shown by the panel. It is empty for the empty panel.
func (p DirectoryPanel) Path() string { return p.path }

// Hash fingerprints the listing.
func (p DirectoryPanel) Hash() uint64 { return p.hash }

// Modified is the directory's modification time when it was listed.
func (p DirectoryPanel) Modified() time.Time { return p.modified }

// Loading reports whether this is the placeholder for a pending fetch.
func (p DirectoryPanel) Loading() bool { return p.loading }

// ShowHidden reports whether hidden entries are displayed.
func (p DirectoryPanel) ShowHidden() bool { return p.showHidden }

// Elements returns every entry, hidden ones included.
func (p DirectoryPanel) Elements() []fs.DirectoryEntry { return p.elements }

// VisibleIndex returns the indices of the non-hidden entries.
func (p DirectoryPanel) VisibleIndex() []int { return p.visible }

// SelectedIndex returns the selection as an index into Elements.
func (p DirectoryPanel) SelectedIndex() int { return p.selected }

// CursorInVisible returns the selection's position within VisibleIndex.
func (p DirectoryPanel) CursorInVisible() int { return p.cursor }

// Clone returns a deep copy of the view state. Entries are immutable and
// shared.
func (p DirectoryPanel) Clone() DirectoryPanel {
	out := p
	out.elements = append([]fs.DirectoryEntry(nil), p.elements...)
	out.visible = append([]int(nil), p.visible...)
	if p.marked != nil {
		out.marked = make(map[string]struct{}, len(p.marked))
		for k := range p.marked {
			out.marked[k] = struct{}{}
		}
	}
	return out
}

// Merge returns next carrying over the view state of p. The hidden toggle is
// always kept; the selection and marks are kept when next lists the same
// directory.
func (p DirectoryPanel) Merge(next DirectoryPanel) DirectoryPanel {
	next.SetShowHidden(p.showHidden)
	if next.path != p.path || p.loading {
		return next
	}
	sel := p.Selected()
	if sel == nil || !next.SelectPath(sel.Path) {
		next.selectPosition(p.Position())
	}
	if len(p.marked) > 0 {
		next.marked = make(map[string]struct{}, len(p.marked))
		for _, e := range next.elements {
			if _, ok := p.marked[e.Path]; ok {
				next.marked[e.Path] = struct{}{}
			}
		}
	}
	return next
}

// Shown returns the entries the user can see with the current hidden toggle.
func (p DirectoryPanel) Shown() []fs.DirectoryEntry {
	if p.showHidden {
		return p.elements
	}
	out := make([]fs.DirectoryEntry, 0, len(p.visible))
	for _, i := range p.visible {
		out = append(out, p.elements[i])
	}
	return out
}

// Len returns the number of shown entries.
func (p DirectoryPanel) Len() int {
	if p.showHidden {
		return len(p.elements)
	}
	return len(p.visible)
}

// Position returns the selection as an index into Shown.
func (p DirectoryPanel) Position() int {
	if p.showHidden {
		return p.selected
	}
	return p.cursor
}

// IndexVsTotal returns the one-based position of the selection and the number
// of shown entries, for the footer.
func (p DirectoryPanel) IndexVsTotal() (int, int) {
	total := p.Len()
	if total == 0 {
		return 0, 0
	}
	return p.Position() + 1, total
}

// Selected returns the selected entry, or nil when nothing is shown.
func (p DirectoryPanel) Selected() *fs.DirectoryEntry {
	if len(p.elements) == 0 {
		return nil
	}
	if !p.showHidden && len(p.visible) == 0 {
		return nil
	}
	e := p.elements[p.selected]
	return &e
}

// SelectedPath returns the selected entry's path, or "".
func (p DirectoryPanel) SelectedPath() string {
	if sel := p.Selected(); sel != nil {
		return sel.Path
	}
	return ""
}

// firstShown returns the element index of the first shown entry.
func (p DirectoryPanel) firstShown() int {
	if p.showHidden || len(p.visible) == 0 {
		return 0
	}
	return p.visible[0]
}

// selectIndex selects elements[idx] and recomputes the cursor.
func (p *DirectoryPanel) selectIndex(idx int) {
	if len(p.elements) == 0 {
		p.selected, p.cursor = 0, 0
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.elements) {
		idx = len(p.elements) - 1
	}
	p.selected = idx
	p.cursor = precedingOrEqual(p.visible, idx)
	if !p.showHidden && len(p.visible) > 0 {
		p.selected = p.visible[p.cursor]
	}
}

// selectPosition selects the entry at pos within Shown.
func (p *DirectoryPanel) selectPosition(pos int) {
	if p.showHidden {
		p.selectIndex(pos)
		return
	}
	if len(p.visible) == 0 {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos >= len(p.visible) {
		pos = len(p.visible) - 1
	}
	p.cursor = pos
	p.selected = p.visible[pos]
}

// precedingOrEqual returns the position in visible of the largest index not
// after idx, or 0 when every visible index is after idx.
func precedingOrEqual(visible []int, idx int) int {
	n := sort.Search(len(visible), func(i int) bool { return visible[i] > idx })
	if n == 0 {
		return 0
	}
	return n - 1
}

// SetShowHidden switches the hidden toggle. Hiding entries moves a hidden
// selection to the nearest visible entry at or before it.
func (p *DirectoryPanel) SetShowHidden(show bool) {
	if p.showHidden == show {
		return
	}
	p.showHidden = show
	p.selectIndex(p.selected)
}

// Move shifts the selection by delta shown entries, clamping at both ends.
// It reports whether the selection changed.
func (p *DirectoryPanel) Move(delta int) bool {
	before := p.selected
	p.selectPosition(p.Position() + delta)
	return before != p.selected
}

// MoveTop selects the first shown entry.
func (p *DirectoryPanel) MoveTop() bool {
	before := p.selected
	p.selectPosition(0)
	return before != p.selected
}

// MoveBottom selects the last shown entry.
func (p *DirectoryPanel) MoveBottom() bool {
	before := p.selected
	p.selectPosition(p.Len() - 1)
	return before != p.selected
}

// SelectPath selects the entry with the given path. Hidden entries can only
// be selected while they are shown.
func (p *DirectoryPanel) SelectPath(path string) bool {
	for i, e := range p.elements {
		if e.Path != path {
			continue
		}
		if e.IsHidden && !p.showHidden {
			return false
		}
		p.selectIndex(i)
		return true
	}
	return false
}

// ToggleMark marks or unmarks the selected entry and reports the new state.
func (p *DirectoryPanel) ToggleMark() bool {
	sel := p.Selected()
	if sel == nil {
		return false
	}
	if _, ok := p.marked[sel.Path]; ok {
		delete(p.marked, sel.Path)
		return false
	}
	if p.marked == nil {
		p.marked = make(map[string]struct{})
	}
	p.marked[sel.Path] = struct{}{}
	return true
}

// IsMarked reports whether path is marked.
func (p DirectoryPanel) IsMarked(path string) bool {
	_, ok := p.marked[path]
	return ok
}

// Marked returns the marked paths in listing order.
func (p DirectoryPanel) Marked() []string {
	if len(p.marked) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.marked))
	for _, e := range p.elements {
		if _, ok := p.marked[e.Path]; ok {
			out = append(out, e.Path)
		}
	}
	return out
}

// ClearMarks drops every mark.
func (p *DirectoryPanel) ClearMarks() {
	p.marked = nil
}
