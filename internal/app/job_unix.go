//go:build !windows

package app

import (
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// resumeSignals arrive when the shell brings rmill back to the foreground.
var resumeSignals = []os.Signal{unix.SIGCONT}

// background hands the terminal back to the shell and stops the process.
// It returns once the process has been continued.
func (app *Application) background() bool {
	if err := app.screen.Suspend(); err != nil {
		app.log.Warn("suspend terminal", zap.Error(err))
		return false
	}
	// Only this pid: the process group also holds the shell wrapper
	// waiting on rmill.
	if err := unix.Kill(unix.Getpid(), unix.SIGTSTP); err != nil {
		app.log.Warn("stop process", zap.Error(err))
	}
	return true
}
