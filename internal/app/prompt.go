package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rmill/internal/command"
	"github.com/kk-code-lab/rmill/internal/fs"
	renderui "github.com/kk-code-lab/rmill/internal/ui/render"
)

type promptKind int

const (
	promptCd promptKind = iota
	promptSearch
	promptRename
	promptMkdir
	promptTouch
	promptDelete
)

// prompt is a line of input typed in the footer.
type prompt struct {
	kind    promptKind
	label   string
	input   []rune
	targets []string
	// origin is the selection to restore when a search is cancelled.
	origin string
}

func (p *prompt) view() *renderui.Prompt {
	return &renderui.Prompt{Label: p.label, Input: string(p.input)}
}

func (app *Application) openPrompt(kind promptKind) {
	p := &prompt{kind: kind}
	c := app.center.Content()
	switch kind {
	case promptCd:
		p.label = "cd: "
	case promptSearch:
		p.label = "/"
		p.origin = c.SelectedPath()
	case promptRename:
		sel := c.Selected()
		if sel == nil {
			return
		}
		p.label = "rename: "
		p.input = []rune(sel.Name)
		p.targets = []string{sel.Path}
	case promptMkdir:
		p.label = "mkdir: "
	case promptTouch:
		p.label = "touch: "
	case promptDelete:
		p.targets = app.targets()
		if len(p.targets) == 0 {
			return
		}
		p.label = fmt.Sprintf("delete %d item(s)? (y/n) ", len(p.targets))
	}
	app.prompt = p
}

// handlePromptKey edits the prompt line. Enter submits, Esc cancels.
func (app *Application) handlePromptKey(ev *tcell.EventKey) {
	p := app.prompt
	if p.kind == promptDelete {
		app.prompt = nil
		if ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y') {
			app.queue.Delete(p.targets)
			app.clearMarks()
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		app.prompt = nil
		if p.kind == promptSearch && p.origin != "" {
			app.selectInCenter(p.origin)
		}
	case tcell.KeyEnter:
		app.prompt = nil
		app.submitPrompt(p)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(p.input); n > 0 {
			p.input = p.input[:n-1]
		}
		app.promptChanged(p)
	case tcell.KeyCtrlU:
		p.input = p.input[:0]
		app.promptChanged(p)
	case tcell.KeyTab:
		if p.kind == promptCd {
			p.input = []rune(completeDirectory(string(p.input), app.center.Path()))
		}
	case tcell.KeyRune:
		p.input = append(p.input, ev.Rune())
		app.promptChanged(p)
	}
}

// promptChanged makes searching incremental.
func (app *Application) promptChanged(p *prompt) {
	if p.kind == promptSearch && len(p.input) > 0 {
		app.searchSelect(string(p.input))
	}
}

func (app *Application) submitPrompt(p *prompt) {
	input := string(p.input)
	if strings.TrimSpace(input) == "" {
		return
	}
	dir := app.center.Path()
	switch p.kind {
	case promptCd:
		app.jump(resolveInput(input, dir))
	case promptSearch:
		app.query = input
		if !app.searchSelect(input) {
			app.notify("no match for " + input)
		}
	case promptRename:
		app.queue.Rename(p.targets[0], input)
	case promptMkdir:
		app.queue.Mkdir(dir, input)
	case promptTouch:
		app.queue.Touch(dir, input)
	}
}

// resolveInput expands ~ and $HOME and makes input absolute against dir.
func resolveInput(input, dir string) string {
	path := command.ExpandPath(strings.TrimSpace(input))
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return path
}

// completeDirectory extends the last segment of input to the longest prefix
// shared by the matching directories, adding a separator when only one
// matches.
func completeDirectory(input, dir string) string {
	full := resolveInput(input, dir)
	parent, prefix := full, ""
	if !strings.HasSuffix(input, "/") && input != "" {
		parent, prefix = filepath.Dir(full), filepath.Base(full)
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		return input
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if fs.IsHiddenName(name) && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if info, err := os.Stat(filepath.Join(parent, name)); err != nil || !info.IsDir() {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return input
	}

	common := names[0]
	for _, name := range names[1:] {
		for !strings.HasPrefix(name, common) {
			common = common[:len(common)-1]
		}
	}
	for !utf8.ValidString(common) {
		common = common[:len(common)-1]
	}
	out := input + strings.TrimPrefix(common, prefix)
	if len(names) == 1 {
		out += "/"
	}
	return out
}
