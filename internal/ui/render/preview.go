package render

import (
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rmill/internal/panel"
	"github.com/kk-code-lab/rmill/internal/textutil"
)

// upperHalf draws the top pixel in the foreground and the bottom one in the
// background, giving two image rows per terminal row.
const upperHalf = '▀'

func (r *Renderer) drawPreview(p panel.Preview, x, width, top, bottom int) {
	if width <= 0 {
		return
	}
	if p.Loading() {
		r.drawTextLine(x, top, width, textutil.Truncate("loading…", width), tcell.StyleDefault.Foreground(r.theme.LoadingFg))
		return
	}
	switch p.Kind() {
	case panel.PreviewDirectory:
		dir, _ := p.Directory()
		r.drawDirectory(columnPreview, dir, x, width, top, bottom, false)
	case panel.PreviewText:
		r.drawTextPreview(p.Lines(), x, width, top, bottom)
	case panel.PreviewImage:
		y := top
		if info := p.Info(); info != "" {
			r.drawTextLine(x, y, width, textutil.Truncate(textutil.Sanitize(info), width), tcell.StyleDefault.Foreground(r.theme.LoadingFg))
			y++
		}
		r.drawImage(p.Image(), x, width, y, bottom)
	}
}

func (r *Renderer) drawTextPreview(lines []string, x, width, top, bottom int) {
	for i, line := range lines {
		y := top + i
		if y >= bottom {
			break
		}
		r.drawTextLine(x, y, width, textutil.Truncate(line, width), tcell.StyleDefault)
	}
}

// drawImage draws img scaled down, never up, to fit width cells by
// bottom-top rows.
func (r *Renderer) drawImage(img *image.RGBA, x, width, top, bottom int) {
	if img == nil || width <= 0 || bottom <= top {
		return
	}
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if iw == 0 || ih == 0 {
		return
	}
	ratio := max(float64(iw)/float64(width), float64(ih)/float64(2*(bottom-top)), 1)
	dw, dh := int(float64(iw)/ratio), int(float64(ih)/ratio)

	pixel := func(px, py int) tcell.Color {
		sx := b.Min.X + min(int(float64(px)*ratio), iw-1)
		sy := b.Min.Y + min(int(float64(py)*ratio), ih-1)
		c := img.RGBAAt(sx, sy)
		if c.A < 128 {
			return tcell.ColorDefault
		}
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}

	for py := 0; py < dh; py += 2 {
		y := top + py/2
		for px := 0; px < dw; px++ {
			style := tcell.StyleDefault.Foreground(pixel(px, py))
			if py+1 < dh {
				style = style.Background(pixel(px, py+1))
			}
			r.screen.SetContent(x+px, y, upperHalf, nil, style)
		}
	}
}
