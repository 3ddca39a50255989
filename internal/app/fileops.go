package app

import (
	"fmt"
	"path/filepath"

	"github.com/kk-code-lab/rmill/internal/ops"
	"github.com/kk-code-lab/rmill/internal/panel"
)

// targets are the marked entries of the center, or its selection when
// nothing is marked.
func (app *Application) targets() []string {
	c := app.center.Content()
	if marked := c.Marked(); len(marked) > 0 {
		return marked
	}
	if sel := c.SelectedPath(); sel != "" {
		return []string{sel}
	}
	return nil
}

func (app *Application) clearMarks() {
	app.center.Mutate(func(d panel.DirectoryPanel) panel.DirectoryPanel {
		d.ClearMarks()
		return d
	})
}

// toggleMark marks the selection and moves to the next entry.
func (app *Application) toggleMark() {
	app.center.Mutate(func(d panel.DirectoryPanel) panel.DirectoryPanel {
		d.ToggleMark()
		d.Move(1)
		return d
	})
	app.updatePreview()
}

func (app *Application) yank(cut bool) {
	paths := app.targets()
	if len(paths) == 0 {
		return
	}
	app.clipboard = ops.Clipboard{Paths: paths, Cut: cut}
	app.clearMarks()
	verb := "copied"
	if cut {
		verb = "cut"
	}
	app.notify(fmt.Sprintf("%d item(s) %s", len(paths), verb))
}

func (app *Application) paste(overwrite bool) {
	if app.clipboard.Empty() {
		app.notify("nothing to paste")
		return
	}
	dir := app.center.Path()
	if dir == "" {
		return
	}
	app.queue.Paste(app.clipboard, dir, overwrite)
	if app.clipboard.Cut {
		app.clipboard = ops.Clipboard{}
	}
}

// handleResult reports a finished operation and refreshes what it touched.
func (app *Application) handleResult(r ops.Result) {
	app.message, app.isError = r.Message(), r.Err != nil
	if r.Created != "" && filepath.Dir(r.Created) == app.center.Path() {
		app.focus = r.Created
	}
	for _, dir := range r.Dirs {
		app.refreshPath(dir)
	}
}
