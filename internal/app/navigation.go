package app

import (
	"os"
	"path/filepath"

	"github.com/kk-code-lab/rmill/internal/fs"
	"github.com/kk-code-lab/rmill/internal/panel"
)

func parentOf(path string) string {
	parent := filepath.Dir(path)
	if parent == path {
		return ""
	}
	return parent
}

// setCenter points the center at dir and the left column at its parent,
// selecting focus in the center once it is listed.
func (app *Application) setCenter(dir, focus string) {
	if cur := app.center.Path(); cur != "" && cur != dir {
		app.previous = cur
	}
	app.center.Request(dir)
	app.left.Request(parentOf(app.center.Path()))
	app.focus = focus
	app.syncCenter(false)
}

// jump moves to path: a directory becomes the center, a file is selected in
// its directory.
func (app *Application) jump(path string) {
	canonical, err := fs.Canonicalize(path)
	if err != nil {
		app.fail(err)
		return
	}
	info, err := os.Stat(canonical)
	if err != nil {
		app.fail(err)
		return
	}
	dir, focus := canonical, ""
	if !info.IsDir() {
		dir, focus = filepath.Dir(canonical), canonical
	}
	if dir == app.center.Path() {
		if focus != "" {
			app.selectInCenter(focus)
		}
		return
	}
	app.setCenter(dir, focus)
}

func (app *Application) jumpPrevious() {
	if app.previous == "" || app.previous == app.center.Path() {
		return
	}
	app.jump(app.previous)
}

// moveRight enters the selected directory or opens the selected file. The
// center slot becomes the left one, so its listing and in-flight fetches
// carry over.
func (app *Application) moveRight() {
	sel := app.center.Content().Selected()
	if sel == nil {
		return
	}
	if !sel.IsDir {
		if err := app.openFile(sel.Path); err != nil {
			app.fail(err)
		}
		return
	}
	app.previous = app.center.Path()
	app.left, app.center = app.center, app.left
	app.center.Request(sel.Path)
	app.focus = ""
	app.syncCenter(false)
}

// moveLeft goes to the parent directory. When the left column already lists
// it, the slots rotate and the old center becomes the preview.
func (app *Application) moveLeft() {
	cur := app.center.Path()
	parent := parentOf(cur)
	if cur == "" || parent == "" {
		return
	}
	left := app.left.Content()
	if left.Path() != parent || left.Loading() {
		app.setCenter(parent, cur)
		return
	}

	app.previous = cur
	app.right.UpdateDirectly(panel.DirectoryPreview(app.center.Content()))
	app.previewTarget = cur
	app.left, app.center = app.center, app.left
	app.left.Request(parentOf(parent))
	app.focus = cur
	app.syncCenter(false)
}

func (app *Application) selectInCenter(path string) {
	app.center.Mutate(func(d panel.DirectoryPanel) panel.DirectoryPanel {
		d.SelectPath(path)
		return d
	})
	app.updatePreview()
}

// moveCursor moves the center selection by delta entries.
func (app *Application) moveCursor(delta int) {
	app.center.Mutate(func(d panel.DirectoryPanel) panel.DirectoryPanel {
		d.Move(delta)
		return d
	})
	app.updatePreview()
}

func (app *Application) moveToEdge(top bool) {
	app.center.Mutate(func(d panel.DirectoryPanel) panel.DirectoryPanel {
		if top {
			d.MoveTop()
		} else {
			d.MoveBottom()
		}
		return d
	})
	app.updatePreview()
}

// syncCenter restores the center selection after its content changed, then
// lines up the left column and the preview. fresh reports that the content
// came from a completed fetch.
func (app *Application) syncCenter(fresh bool) {
	c := app.center.Content()
	if !c.Loading() && c.Path() != "" {
		target := app.focus
		if target == "" {
			target = app.selections[c.Path()]
		}
		if target != "" {
			selected := false
			app.center.Mutate(func(d panel.DirectoryPanel) panel.DirectoryPanel {
				selected = d.SelectPath(target)
				return d
			})
			if selected || fresh {
				app.focus = ""
			}
		}
	}
	app.syncLeft()
	app.updatePreview()
}

// syncLeft selects the center directory in the left column.
func (app *Application) syncLeft() {
	cur := app.center.Path()
	app.left.Mutate(func(d panel.DirectoryPanel) panel.DirectoryPanel {
		d.SelectPath(cur)
		return d
	})
}

// updatePreview points the preview at the center selection.
func (app *Application) updatePreview() {
	c := app.center.Content()
	sel := c.SelectedPath()
	if c.Path() != "" && sel != "" {
		app.selections[c.Path()] = sel
	}
	if sel == app.previewTarget {
		return
	}
	app.previewTarget = sel
	app.right.Request(sel)
}

func (app *Application) toggleHidden() {
	app.showHidden = !app.showHidden
	show := app.showHidden
	setDir := func(d panel.DirectoryPanel) panel.DirectoryPanel {
		d.SetShowHidden(show)
		return d
	}
	app.left.Mutate(setDir)
	app.center.Mutate(setDir)
	app.right.Mutate(func(p panel.Preview) panel.Preview {
		p.SetShowHidden(show)
		return p
	})
	app.syncLeft()
	app.updatePreview()
}

// refreshPath re-fetches every slot showing dir, and the preview when it
// shows something inside dir.
func (app *Application) refreshPath(dir string) {
	if app.left.Path() == dir {
		app.left.Refresh()
	}
	if app.center.Path() == dir {
		app.center.Refresh()
	}
	if p := app.right.Path(); p == dir || (p != "" && filepath.Dir(p) == dir) {
		app.right.Refresh()
	}
}

func (app *Application) applyDirectory(resp panel.Response[panel.DirectoryPanel]) {
	if app.center.Apply(resp) {
		app.syncCenter(true)
		return
	}
	if app.left.Apply(resp) {
		app.syncLeft()
	}
}

func (app *Application) applyPreview(resp panel.Response[panel.Preview]) {
	app.right.Apply(resp)
}
