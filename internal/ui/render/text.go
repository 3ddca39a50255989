package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// drawTextLine draws text from startX, clipped to maxWidth cells, and
// returns the column after the last cell drawn. Each grapheme cluster takes
// one screen cell with its combining runes attached.
func (r *Renderer) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	x, end := startX, startX+maxWidth
	g := uniseg.NewGraphemes(text)
	for g.Next() && x < end {
		runes := g.Runes()
		w := runewidth.StringWidth(g.Str())
		if x+w > end {
			break
		}
		r.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += max(w, 1)
	}
	return x
}

// fill paints cells [fromX, toX) of row y.
func (r *Renderer) fill(fromX, toX, y int, style tcell.Style) {
	for x := fromX; x < toX; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}
}
