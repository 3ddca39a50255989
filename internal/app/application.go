// Package app is the orchestrator: it owns the three panel slots, turns key
// events into commands, and feeds content manager responses, watcher
// changes and operation results back into the panels.
package app

import (
	"context"
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rmill/internal/command"
	"github.com/kk-code-lab/rmill/internal/config"
	"github.com/kk-code-lab/rmill/internal/content"
	"github.com/kk-code-lab/rmill/internal/fs"
	"github.com/kk-code-lab/rmill/internal/logging"
	"github.com/kk-code-lab/rmill/internal/ops"
	"github.com/kk-code-lab/rmill/internal/panel"
	renderui "github.com/kk-code-lab/rmill/internal/ui/render"
	"github.com/kk-code-lab/rmill/internal/watch"
)

// Options configures NewApplication.
type Options struct {
	// Start is the initial directory, or a file to select in its directory.
	// Empty means the working directory.
	Start    string
	Config   config.Config
	Log      *logging.Log
	Shutdown *atomic.Bool
	// Screen is used instead of the terminal when set.
	Screen tcell.Screen
}

// Application represents the running browser.
type Application struct {
	screen   tcell.Screen
	renderer *renderui.Renderer
	parser   *command.Parser
	logs     *logging.Log
	log      *zap.Logger
	opener   *opener
	shutdown *atomic.Bool

	caches  content.Caches
	dirs    *content.Manager[panel.DirectoryPanel]
	preview *content.Manager[panel.Preview]
	watcher *watch.Watcher
	queue   *ops.Queue
	cancel  context.CancelFunc
	workers sync.WaitGroup

	left   *panel.Managed[panel.DirectoryPanel]
	center *panel.Managed[panel.DirectoryPanel]
	right  *panel.Managed[panel.Preview]

	// focus is selected in the center once its listing contains it.
	focus string
	// previewTarget is the path last requested for the preview slot.
	previewTarget string
	// selections remembers the selected entry per directory.
	selections map[string]string
	previous   string

	showHidden bool
	showLog    bool
	clipboard  ops.Clipboard
	query      string
	prompt     *prompt
	message    string
	isError    bool

	user, host string
	exitPath   string
	shouldQuit bool
}

// NewApplication starts the content managers, the watcher and the operation
// queue, and points the panels at the start directory.
func NewApplication(opts Options) (*Application, error) {
	settings := opts.Config.Settings
	logs := opts.Log
	if logs == nil {
		logs = logging.Nop()
	}
	log := logs.Logger
	shutdown := opts.Shutdown
	if shutdown == nil {
		shutdown = new(atomic.Bool)
	}

	start, err := startPath(opts.Start)
	if err != nil {
		return nil, err
	}

	screen := opts.Screen
	if screen == nil {
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, err
		}
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	caches := content.NewCaches(settings.DirectoryCache, settings.PreviewCache)
	loader := content.NewLoader(settings.PreviewOptions(), log)
	dirs := content.NewDirectoryManager(caches, loader, settings.Workers, shutdown, log)
	preview := content.NewPreviewManager(caches, loader, settings.Workers, log)

	var watcher panel.Watcher
	w, err := watch.New(settings.WatchDebounce, log)
	if err != nil {
		log.Warn("file watching disabled", zap.Error(err))
	} else {
		watcher = w
	}

	parser := opts.Config.Parser()
	sequences, oneShot := parser.Len()
	log.Debug("key bindings loaded", zap.Int("sequences", sequences), zap.Int("one_shot", oneShot))
	theme := renderui.NewTheme(settings.Colors.Main, settings.Colors.Marked, settings.Colors.Highlight, settings.Colors.DirPath)

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		screen:     screen,
		renderer:   renderui.NewRenderer(screen, theme),
		parser:     parser,
		logs:       logs,
		log:        log,
		opener:     newOpener(settings.Editor, settings.Opener, log),
		shutdown:   shutdown,
		caches:     caches,
		dirs:       dirs,
		preview:    preview,
		watcher:    w,
		queue:      ops.NewQueue(shutdown, settings.UseTrash, log),
		cancel:     cancel,
		selections: make(map[string]string),
	}
	app.user, app.host = identity()

	dirFactories := panel.Factories[panel.DirectoryPanel]{
		Empty:   panel.EmptyDirectoryPanel,
		Loading: panel.LoadingDirectoryPanel,
	}
	previewFactories := panel.Factories[panel.Preview]{
		Empty:   func() panel.Preview { return panel.EmptyPreview("") },
		Loading: panel.LoadingPreview,
	}
	app.left = panel.NewManaged(caches.Directories, dirs.Requests(), watcher, dirFactories, log)
	app.center = panel.NewManaged(caches.Directories, dirs.Requests(), watcher, dirFactories, log)
	app.right = panel.NewManaged(caches.Previews, preview.Requests(), watcher, previewFactories, log)

	app.workers.Add(2)
	go func() {
		defer app.workers.Done()
		dirs.Run(ctx)
	}()
	go func() {
		defer app.workers.Done()
		preview.Run(ctx)
	}()

	if settings.ShowHidden {
		app.toggleHidden()
	}
	app.jump(start)
	app.previous = app.center.Path()
	log.Info("started", zap.String("path", start))
	return app, nil
}

// startPath resolves the start argument to an existing absolute path.
func startPath(arg string) (string, error) {
	if arg == "" {
		return os.Getwd()
	}
	path, err := fs.Canonicalize(command.ExpandPath(arg))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

func identity() (string, string) {
	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = filepath.Base(u.Username)
	}
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return name, host
}

// ExitPath is the directory to report on exit, or "" when the user quit
// without one.
func (app *Application) ExitPath() string {
	return app.exitPath
}

// Close stops background work and releases the terminal. Pending file
// operations are finished first.
func (app *Application) Close() error {
	app.shutdown.Store(true)
	app.cancel()
	app.left.Close()
	app.center.Close()
	app.right.Close()
	app.queue.Close()
	app.workers.Wait()

	var errs []error
	if app.watcher != nil {
		errs = append(errs, app.watcher.Close())
	}
	app.screen.Fini()
	return errors.Join(errs...)
}
