// Package textutil prepares untrusted text (file names, file contents) for
// display in terminal cells.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultTabWidth is used when expanding tabs in previews.
const DefaultTabWidth = 4

// Invisible bidi and zero-width runes are shown as labels so names cannot
// disguise themselves.
var invisibleLabels = map[rune]string{
	0x00AD: "<SHY>",
	0x061C: "<ALM>",
	0x180E: "<MVS>",
	0x200B: "<ZWSP>",
	0x200C: "<ZWNJ>",
	0x200D: "<ZWJ>",
	0x200E: "<LRM>",
	0x200F: "<RLM>",
	0x2028: "<LSEP>",
	0x2029: "<PSEP>",
	0x202A: "<LRE>",
	0x202B: "<RLE>",
	0x202C: "<PDF>",
	0x202D: "<LRO>",
	0x202E: "<RLO>",
	0x2060: "<WJ>",
	0x2066: "<LRI>",
	0x2067: "<RLI>",
	0x2068: "<FSI>",
	0x2069: "<PDI>",
	0xFEFF: "<BOM>",
}

func unsafeRune(r rune) bool {
	if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
		return true
	}
	_, ok := invisibleLabels[r]
	return ok
}

// Sanitize makes text safe to print: whitespace controls become spaces,
// other control characters become '?', invisible formatting runes are
// labelled. Text that needs no change is returned as is.
func Sanitize(text string) string {
	if strings.IndexFunc(text, unsafeRune) < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if label, ok := invisibleLabels[r]; ok {
			b.WriteString(label)
			continue
		}
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case unsafeRune(r):
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExpandTabs replaces tabs with spaces up to the next tab stop, counting
// columns in terminal cells.
func ExpandTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}
	var b strings.Builder
	col := 0
	for _, r := range text {
		if r != '\t' {
			b.WriteRune(r)
			col += max(runewidth.RuneWidth(r), 1)
			continue
		}
		n := tabWidth - col%tabWidth
		b.WriteString(strings.Repeat(" ", n))
		col += n
	}
	return b.String()
}

// PreviewLine expands tabs and then sanitizes one line of file content.
func PreviewLine(line string) string {
	return Sanitize(ExpandTabs(line, DefaultTabWidth))
}

// Width returns the number of terminal cells text occupies.
func Width(text string) int {
	return runewidth.StringWidth(text)
}

// Truncate shortens text to at most width cells, ending in an ellipsis when
// something was cut.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if Width(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(text, width, "…")
}

// Fit truncates text to width cells and pads it with spaces to exactly width.
func Fit(text string, width int) string {
	return runewidth.FillRight(Truncate(text, width), width)
}
