package app

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rmill/internal/fs"
)

var errNoOpener = errors.New("no program to open this file")

// opener starts external programs for files: text files in the editor with
// the terminal handed over, everything else through the desktop opener.
type opener struct {
	editor  []string
	desktop []string
	log     *zap.Logger
}

func newOpener(editor, desktop string, log *zap.Logger) *opener {
	o := &opener{log: log}
	o.editor, _ = detectEditorCommand(editor)
	o.desktop, _ = detectOpener(desktop)
	return o
}

func isTextFile(path string) bool {
	sample, err := fs.ReadTextSample(path)
	if err != nil {
		return false
	}
	return fs.IsTextFile(path, sample)
}

// openFile opens path, suspending the screen while an editor runs.
func (app *Application) openFile(path string) error {
	o := app.opener
	if len(o.editor) > 0 && isTextFile(path) {
		return app.runInTerminal(withArg(o.editor, path))
	}
	if len(o.desktop) > 0 {
		return app.startDetached(withArg(o.desktop, path))
	}
	if len(o.editor) > 0 {
		return app.runInTerminal(withArg(o.editor, path))
	}
	return errNoOpener
}

func withArg(base []string, arg string) []string {
	args := make([]string, len(base)+1)
	copy(args, base)
	args[len(base)] = arg
	return args
}

// runInTerminal runs args on the controlling terminal and restores the
// screen afterwards.
func (app *Application) runInTerminal(args []string) error {
	useTTY := runtime.GOOS != "windows"
	var tty *os.File
	if useTTY {
		var err error
		tty, err = os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			useTTY = false
		} else {
			defer func() {
				_ = tty.Close()
			}()
		}
	}

	if err := app.screen.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend screen: %w", err)
	}

	cmd := commandBuilder(args[0], args[1:]...)
	if useTTY {
		cmd.Stdin = tty
		cmd.Stdout = tty
		cmd.Stderr = tty
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	runErr := cmd.Run()

	if err := app.screen.Resume(); err != nil {
		return fmt.Errorf("failed to resume screen: %w", err)
	}
	app.screen.Sync()
	if runErr != nil {
		return fmt.Errorf("%s: %w", args[0], runErr)
	}
	return nil
}

// startDetached starts args without giving it the terminal and reaps it in
// the background.
func (app *Application) startDetached(args []string) error {
	cmd := commandBuilder(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	log := app.log
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warn("opener exited with error", zap.Strings("args", args), zap.Error(err))
		}
	}()
	return nil
}
