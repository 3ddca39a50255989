package content

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/kk-code-lab/rmill/internal/fs"
	"github.com/kk-code-lab/rmill/internal/panel"
	"github.com/kk-code-lab/rmill/internal/textutil"
)

// markdownSourceLimit bounds how much of a markdown file is parsed.
const markdownSourceLimit = 256 << 10

func markdownPreview(path string, info os.FileInfo, limit int) (panel.Preview, error) {
	raw, err := fs.ReadFileHead(path, markdownSourceLimit)
	if err != nil {
		return panel.Preview{}, err
	}
	lines := RenderMarkdown([]byte(fs.NormalizeTextContent(raw)), limit)
	return panel.TextPreview(path, lines, info.ModTime()), nil
}

// RenderMarkdown flattens markdown into plain display lines: headings keep
// their '#' markers, list items get bullets, code blocks are indented and
// quotes are prefixed. At most limit lines are returned.
func RenderMarkdown(source []byte, limit int) []string {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	r := &markdownRenderer{source: source, limit: limit}
	_ = ast.Walk(doc, r.walk)
	for len(r.lines) > 0 && r.lines[len(r.lines)-1] == "" {
		r.lines = r.lines[:len(r.lines)-1]
	}
	return r.lines
}

type markdownRenderer struct {
	source []byte
	limit  int
	lines  []string
	quote  int
	bullet string
	indent int
}

func (r *markdownRenderer) full() bool {
	return r.limit > 0 && len(r.lines) >= r.limit
}

func (r *markdownRenderer) emit(line string) {
	if r.full() {
		return
	}
	prefix := strings.Repeat("│ ", r.quote) + strings.Repeat("  ", r.indent)
	if r.bullet != "" {
		prefix += r.bullet
		r.bullet = ""
	}
	r.lines = append(r.lines, textutil.PreviewLine(prefix+line))
}

func (r *markdownRenderer) blank() {
	if len(r.lines) > 0 && r.lines[len(r.lines)-1] != "" && r.quote == 0 && r.indent == 0 {
		r.emit("")
	}
}

func (r *markdownRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if r.full() {
		return ast.WalkStop, nil
	}
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.blank()
			r.emit(strings.Repeat("#", node.Level) + " " + r.inline(node))
			r.blank()
			return ast.WalkSkipChildren, nil
		}
	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			for _, line := range strings.Split(r.inline(node), "\n") {
				r.emit(line)
			}
			return ast.WalkSkipChildren, nil
		}
		if _, ok := node.(*ast.Paragraph); ok {
			r.blank()
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				r.emit("    " + strings.TrimRight(string(seg.Value(r.source)), "\r\n"))
			}
			r.blank()
			return ast.WalkSkipChildren, nil
		}
	case *ast.ThematicBreak:
		if entering {
			r.emit(strings.Repeat("─", 24))
		}
	case *ast.Blockquote:
		if entering {
			r.quote++
		} else {
			r.quote--
			r.blank()
		}
	case *ast.List:
		if entering {
			if node.Parent() != nil && node.Parent().Kind() == ast.KindListItem {
				r.indent++
			}
		} else {
			if node.Parent() != nil && node.Parent().Kind() == ast.KindListItem {
				r.indent--
			} else {
				r.blank()
			}
		}
	case *ast.ListItem:
		if entering {
			list, _ := node.Parent().(*ast.List)
			if list != nil && list.IsOrdered() {
				r.bullet = fmt.Sprintf("%d. ", list.Start+indexInParent(node))
			} else {
				r.bullet = "• "
			}
		}
	}
	return ast.WalkContinue, nil
}

func indexInParent(n ast.Node) int {
	i := 0
	for c := n.PreviousSibling(); c != nil; c = c.PreviousSibling() {
		i++
	}
	return i
}

// inline collects the text of n's inline children. Hard and soft breaks
// become newlines and spaces.
func (r *markdownRenderer) inline(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(r.source))
			switch {
			case t.HardLineBreak():
				b.WriteByte('\n')
			case t.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.URL(r.source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimRight(b.String(), " ")
}
