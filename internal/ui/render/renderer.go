package render

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rmill/internal/fs"
	"github.com/kk-code-lab/rmill/internal/panel"
	"github.com/kk-code-lab/rmill/internal/textutil"
)

// Column indices for scroll state.
const (
	columnLeft = iota
	columnCenter
	columnPreview
	columnCount
)

// Renderer draws a View onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	theme  Theme

	scroll [columnCount]scrollState
}

// scrollState keeps a column's first visible row stable while the cursor
// stays on screen.
type scrollState struct {
	path   string
	offset int
}

func (s *scrollState) adjust(path string, pos, height, total int) int {
	if s.path != path {
		s.path = path
		s.offset = 0
	}
	if pos < s.offset {
		s.offset = pos
	}
	if pos >= s.offset+height {
		s.offset = pos - height + 1
	}
	s.offset = min(s.offset, max(total-height, 0))
	s.offset = max(s.offset, 0)
	return s.offset
}

// NewRenderer creates a renderer drawing on screen with theme.
func NewRenderer(screen tcell.Screen, theme Theme) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  theme,
	}
}

// columnLayout is the x range of each column.
type columnLayout struct {
	leftX, leftW       int
	centerX, centerW   int
	previewX, previewW int
}

// computeLayout splits w into 1/8, 3/8 and 1/2, each column followed by a
// one-cell gap.
func computeLayout(w int) columnLayout {
	leftW := w / 8
	centerW := w * 3 / 8
	l := columnLayout{
		leftX:   0,
		leftW:   max(leftW-1, 0),
		centerX: leftW,
		centerW: max(centerW-1, 0),
	}
	l.previewX = leftW + centerW
	l.previewW = max(w-l.previewX, 0)
	return l
}

// Render draws the entire frame.
func (r *Renderer) Render(v *View) {
	r.screen.Clear()
	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}

	r.drawHeader(v, w)
	if v.ShowLog {
		r.drawLog(v.LogLines, w, h)
	} else {
		top, bottom := 1, h-1
		layout := computeLayout(w)
		r.drawDirectory(columnLeft, v.Left, layout.leftX, layout.leftW, top, bottom, false)
		r.drawDirectory(columnCenter, v.Center, layout.centerX, layout.centerW, top, bottom, true)
		r.drawPreview(v.Preview, layout.previewX, layout.previewW, top, bottom)
		r.drawHints(v, w, h)
	}
	r.drawFooter(v, w, h)
	r.screen.Show()
}

// drawHeader renders "user@host /current/dir/selected".
func (r *Renderer) drawHeader(v *View, w int) {
	base := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	x := 0
	if v.User != "" {
		id := textutil.Sanitize(v.User + "@" + v.Host)
		x = r.drawTextLine(x, 0, w-x, id, base.Foreground(r.theme.Main).Bold(true))
		x = r.drawTextLine(x, 0, w-x, " ", base)
	}

	dir := v.Center.Path()
	if dir != "" {
		text := dir
		if dir != string(filepath.Separator) {
			text += string(filepath.Separator)
		}
		text = textutil.Truncate(textutil.Sanitize(text), w-x)
		x = r.drawTextLine(x, 0, w-x, text, base.Foreground(r.theme.DirPath).Bold(true))
	}
	if sel := v.Center.Selected(); sel != nil && x < w {
		name := textutil.Truncate(textutil.Sanitize(sel.Name), w-x)
		x = r.drawTextLine(x, 0, w-x, name, base.Bold(true))
	}
	r.fill(x, w, 0, base)
}

func (r *Renderer) entryStyle(dir panel.DirectoryPanel, e fs.DirectoryEntry) tcell.Style {
	style := tcell.StyleDefault
	switch {
	case e.IsDir:
		style = style.Foreground(r.theme.Main).Bold(true)
	case e.IsSymlink:
		style = style.Foreground(r.theme.Symlink)
	}
	if e.IsHidden && !e.IsDir {
		style = style.Foreground(r.theme.Hidden)
	}
	if dir.IsMarked(e.Path) {
		style = style.Foreground(r.theme.Marked).Bold(true)
	}
	return style
}

// drawDirectory draws the shown entries of dir in rows [top, bottom).
// Sizes are shown in the active column only.
func (r *Renderer) drawDirectory(col int, dir panel.DirectoryPanel, x, width, top, bottom int, active bool) {
	if width <= 0 {
		return
	}
	if dir.Loading() {
		r.drawTextLine(x, top, width, textutil.Truncate("loading…", width), tcell.StyleDefault.Foreground(r.theme.LoadingFg))
		return
	}
	entries := dir.Shown()
	if len(entries) == 0 {
		if dir.Path() != "" {
			r.drawTextLine(x, top, width, textutil.Truncate("empty", width), tcell.StyleDefault.Foreground(r.theme.LoadingFg))
		}
		return
	}

	height := bottom - top
	pos := dir.Position()
	offset := r.scroll[col].adjust(dir.Path(), pos, height, len(entries))

	for row := 0; row < height && offset+row < len(entries); row++ {
		idx := offset + row
		e := entries[idx]
		y := top + row
		style := r.entryStyle(dir, e)
		if idx == pos {
			style = style.Reverse(true)
		}

		right := ""
		if active {
			right = entrySize(e)
		}
		nameWidth := width - 1
		if right != "" {
			nameWidth -= textutil.Width(right) + 1
		}
		name := textutil.Truncate(textutil.Sanitize(e.Name), nameWidth)

		r.screen.SetContent(x, y, ' ', nil, style)
		end := r.drawTextLine(x+1, y, nameWidth, name, style)
		rightX := x + width - textutil.Width(right)
		r.fill(end, rightX, y, style)
		if right != "" && rightX > end {
			r.drawTextLine(rightX, y, width-(rightX-x), right, style)
		}
	}
}

// entrySize is the size column: byte size for files, nothing for
// directories.
func entrySize(e fs.DirectoryEntry) string {
	if e.IsDir {
		return ""
	}
	return humanize.IBytes(uint64(max(e.Size, 0)))
}

// drawHints lists the commands the pending chord can complete to, just above
// the footer.
func (r *Renderer) drawHints(v *View, w, h int) {
	if len(v.Hints) == 0 || v.Prompt != nil {
		return
	}
	rows := min(len(v.Hints), max((h-2)/2, 1))
	startY := h - 1 - rows
	style := tcell.StyleDefault.Reverse(true)
	keyWidth := 0
	for _, hint := range v.Hints[:rows] {
		keyWidth = max(keyWidth, textutil.Width(hint.Keys))
	}
	for i, hint := range v.Hints[:rows] {
		y := startY + i
		line := fmt.Sprintf(" %-*s  %s", keyWidth, textutil.Sanitize(hint.Keys), textutil.Sanitize(hint.Description))
		end := r.drawTextLine(0, y, w, textutil.Truncate(line, w), style)
		r.fill(end, w, y, style)
	}
}

// drawFooter renders the status line: selection metadata and message on the
// left, key buffer and position on the right, or the active prompt.
func (r *Renderer) drawFooter(v *View, w, h int) {
	y := h - 1
	base := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)

	if v.Prompt != nil {
		x := r.drawTextLine(0, y, w, v.Prompt.Label, base.Foreground(r.theme.Highlight).Bold(true))
		input := textutil.Sanitize(v.Prompt.Input)
		if over := textutil.Width(input) - (w - x - 1); over > 0 {
			runes := []rune(input)
			input = string(runes[min(over, len(runes)):])
		}
		x = r.drawTextLine(x, y, w-x, input, base)
		if x < w {
			r.screen.SetContent(x, y, ' ', nil, base.Reverse(true))
			x++
		}
		r.fill(x, w, y, base)
		return
	}

	right := ""
	if v.KeyBuffer != "" {
		right = textutil.Sanitize(v.KeyBuffer) + "  "
	}
	if n, total := v.Center.IndexVsTotal(); total > 0 {
		right += fmt.Sprintf("%d/%d", n, total)
	}
	rightWidth := textutil.Width(right)

	left := ""
	if sel := v.Center.Selected(); sel != nil {
		left = fmt.Sprintf("%s %s %s", sel.Mode.String(), entrySize(*sel), humanize.Time(sel.Modified))
	}
	leftWidth := max(w-rightWidth-1, 0)
	x := r.drawTextLine(0, y, leftWidth, textutil.Truncate(left, leftWidth), base)
	if v.Message != "" && x+2 < leftWidth {
		msgStyle := base
		if v.IsError {
			msgStyle = msgStyle.Foreground(r.theme.Highlight)
		}
		x = r.drawTextLine(x, y, leftWidth-x, "  ", base)
		msg := textutil.Truncate(textutil.Sanitize(v.Message), leftWidth-x)
		x = r.drawTextLine(x, y, leftWidth-x, msg, msgStyle)
	}
	r.fill(x, w-rightWidth, y, base)
	if rightWidth > 0 && rightWidth <= w {
		r.drawTextLine(w-rightWidth, y, rightWidth, right, base.Foreground(r.theme.Highlight))
	}
}

// drawLog shows the newest log lines below the header.
func (r *Renderer) drawLog(lines []string, w, h int) {
	title := " developer log "
	style := tcell.StyleDefault.Reverse(true)
	end := r.drawTextLine(0, 1, w, title, style)
	r.fill(end, w, 1, style)

	rows := h - 3
	if rows <= 0 {
		return
	}
	start := max(len(lines)-rows, 0)
	for i, line := range lines[start:] {
		text := textutil.Truncate(textutil.PreviewLine(line), w)
		r.drawTextLine(0, 2+i, w, text, tcell.StyleDefault)
	}
}
