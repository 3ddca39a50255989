package app

import "go.uber.org/zap"

// foreground takes the terminal back after the process was continued.
// A screen that was never suspended reports an error, which is ignored.
func (app *Application) foreground() {
	if err := app.screen.Resume(); err != nil {
		app.log.Debug("resume terminal", zap.Error(err))
		return
	}
	app.screen.Sync()
}
