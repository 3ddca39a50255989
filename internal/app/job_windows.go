//go:build windows

package app

import "os"

var resumeSignals []os.Signal

func (app *Application) background() bool {
	app.message = "suspend is not available on Windows"
	return false
}
