package app

import (
	"errors"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rmill/internal/command"
	"github.com/kk-code-lab/rmill/internal/ops"
	renderui "github.com/kk-code-lab/rmill/internal/ui/render"
)

var errManagerStopped = errors.New("content manager stopped")

// Run processes terminal events, content responses, watcher changes and
// operation results until the user quits or a content manager stops.
func (app *Application) Run() error {
	app.render()

	eventChan := make(chan tcell.Event)
	quitEvents := make(chan struct{})
	defer close(quitEvents)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quitEvents:
				return
			}
		}
	}()

	var resumed chan os.Signal
	if len(resumeSignals) > 0 {
		resumed = make(chan os.Signal, 1)
		signal.Notify(resumed, resumeSignals...)
		defer signal.Stop(resumed)
	}

	var changes <-chan string
	if app.watcher != nil {
		changes = app.watcher.Changes()
	}
	dirResponses := app.dirs.Responses()
	previewResponses := app.preview.Responses()
	results := app.queue.Results()

	for !app.shouldQuit {
		select {
		case ev := <-eventChan:
			app.handleEvent(ev)
		case resp, ok := <-dirResponses:
			if !ok {
				return errManagerStopped
			}
			app.applyDirectory(resp)
		case resp, ok := <-previewResponses:
			if !ok {
				return errManagerStopped
			}
			app.applyPreview(resp)
		case path, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			app.log.Debug("changed", zap.String("path", path))
			app.refreshPath(path)
		case r, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			app.handleResult(r)
		case <-resumed:
			app.foreground()
		}
		if !app.shouldQuit {
			app.render()
		}
	}
	return nil
}

func (app *Application) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		app.handleKey(ev)
	case *tcell.EventResize:
		app.screen.Sync()
	}
}

func (app *Application) handleKey(ev *tcell.EventKey) {
	if app.prompt != nil {
		app.handlePromptKey(ev)
		return
	}
	switch ev.Key() {
	case tcell.KeyEscape:
		app.parser.Clear()
		app.showLog = false
		app.message = ""
		return
	case tcell.KeyCtrlZ:
		if app.background() {
			app.foreground()
		}
		return
	}
	app.handleCommand(app.parser.Add(command.FromTcell(ev)))
}

func (app *Application) height() int {
	_, h := app.screen.Size()
	return max(h-2, 1)
}

func (app *Application) handleCommand(cmd command.Command) {
	if cmd.IsNone() {
		return
	}
	app.message = ""
	app.log.Debug("command", zap.Stringer("command", cmd))

	switch cmd.Kind {
	case command.Up:
		app.moveCursor(-1)
	case command.Down:
		app.moveCursor(1)
	case command.Left:
		app.moveLeft()
	case command.Right:
		app.moveRight()
	case command.Top:
		app.moveToEdge(true)
	case command.Bottom:
		app.moveToEdge(false)
	case command.PageForward:
		app.moveCursor(app.height())
	case command.PageBackward:
		app.moveCursor(-app.height())
	case command.HalfPageForward:
		app.moveCursor(app.height() / 2)
	case command.HalfPageBackward:
		app.moveCursor(-app.height() / 2)
	case command.JumpTo:
		app.jump(cmd.Path)
	case command.JumpPrevious:
		app.jumpPrevious()
	case command.Next:
		app.searchStep(false)
	case command.Previous:
		app.searchStep(true)
	case command.ToggleHidden:
		app.toggleHidden()
	case command.ToggleLog:
		app.showLog = !app.showLog
	case command.ViewTrash:
		app.viewTrash()
	case command.Zip, command.Tar, command.Extract:
		app.notify(cmd.String() + " is not supported")
	case command.Cd:
		app.openPrompt(promptCd)
	case command.Search:
		app.openPrompt(promptSearch)
	case command.Rename:
		app.openPrompt(promptRename)
	case command.Mkdir:
		app.openPrompt(promptMkdir)
	case command.Touch:
		app.openPrompt(promptTouch)
	case command.Delete:
		app.openPrompt(promptDelete)
	case command.Cut:
		app.yank(true)
	case command.Copy:
		app.yank(false)
	case command.Paste:
		app.paste(false)
	case command.PasteOverwrite:
		app.paste(true)
	case command.Mark:
		app.toggleMark()
	case command.Quit:
		app.exitPath = app.center.Path()
		app.shouldQuit = true
	case command.QuitWithoutPath:
		app.shouldQuit = true
	}
}

func (app *Application) viewTrash() {
	dir := ops.TrashFilesDir()
	if dir == "" {
		app.notify("no trash directory")
		return
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		app.fail(err)
		return
	}
	app.jump(dir)
}

func (app *Application) notify(msg string) {
	app.message, app.isError = msg, false
}

func (app *Application) fail(err error) {
	app.log.Warn("command failed", zap.Error(err))
	app.message, app.isError = err.Error(), true
}

func (app *Application) view() *renderui.View {
	v := &renderui.View{
		User:      app.user,
		Host:      app.host,
		Left:      app.left.Content(),
		Center:    app.center.Content(),
		Preview:   app.right.Content(),
		KeyBuffer: app.parser.Buffer(),
		Hints:     app.parser.MatchingCommands(),
		Message:   app.message,
		IsError:   app.isError,
		ShowLog:   app.showLog,
	}
	if app.prompt != nil {
		v.Prompt = app.prompt.view()
	}
	if app.showLog {
		v.LogLines = app.logs.Lines()
	}
	return v
}

func (app *Application) render() {
	app.renderer.Render(app.view())
}
