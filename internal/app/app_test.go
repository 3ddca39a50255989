package app

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rmill/internal/command"
	"github.com/kk-code-lab/rmill/internal/config"
	"github.com/kk-code-lab/rmill/internal/fs"
	"github.com/kk-code-lab/rmill/internal/panel"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// testTree creates root/alpha/inner.txt, root/beta.txt and root/.hidden and
// returns the canonical root.
func testTree(t *testing.T) string {
	t.Helper()
	root, err := fs.Canonicalize(t.TempDir())
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	mustWrite(t, filepath.Join(root, "alpha", "inner.txt"), "inside")
	mustWrite(t, filepath.Join(root, "beta.txt"), "hello")
	mustWrite(t, filepath.Join(root, ".hidden"), "secret")
	return root
}

func newTestApp(t *testing.T, start string) *Application {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg := config.Config{Keys: config.DefaultKeys(), Settings: config.DefaultSettings()}
	cfg.Settings.UseTrash = false
	cfg.Settings.WatchDebounce = 20 * time.Millisecond
	screen := tcell.NewSimulationScreen("UTF-8")
	app, err := NewApplication(Options{Start: start, Config: cfg, Screen: screen})
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Close()
	})
	return app
}

// settle feeds responses, watcher changes and operation results into app
// until cond holds.
func settle(t *testing.T, app *Application, cond func() bool) {
	t.Helper()
	var changes <-chan string
	if app.watcher != nil {
		changes = app.watcher.Changes()
	}
	deadline := time.After(5 * time.Second)
	for !cond() {
		select {
		case resp, ok := <-app.dirs.Responses():
			if ok {
				app.applyDirectory(resp)
			}
		case resp, ok := <-app.preview.Responses():
			if ok {
				app.applyPreview(resp)
			}
		case path, ok := <-changes:
			if ok {
				app.refreshPath(path)
			}
		case r, ok := <-app.queue.Results():
			if ok {
				app.handleResult(r)
			}
		case <-deadline:
			t.Fatalf("condition not reached; center=%q (loading %v) preview=%q message=%q",
				app.center.Path(), app.center.Content().Loading(), app.right.Path(), app.message)
		}
	}
}

func listed(app *Application, dir string, n int) func() bool {
	return func() bool {
		c := app.center.Content()
		return c.Path() == dir && !c.Loading() && c.Len() == n
	}
}

func previewIs(app *Application, path string, kind panel.PreviewKind) func() bool {
	return func() bool {
		p := app.right.Content()
		return p.Path() == path && !p.Loading() && p.Kind() == kind
	}
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func typeText(app *Application, text string) {
	for _, r := range text {
		app.handleKey(key(r))
	}
}

func TestStartShowsParentCenterAndPreview(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)

	settle(t, app, listed(app, root, 2))
	settle(t, app, previewIs(app, filepath.Join(root, "alpha"), panel.PreviewDirectory))
	settle(t, app, func() bool { return !app.left.Content().Loading() && app.left.Path() == filepath.Dir(root) })

	if got := app.left.Content().SelectedPath(); got != root {
		t.Fatalf("left column should select the center directory, got %q", got)
	}
	if got := app.center.Content().SelectedPath(); got != filepath.Join(root, "alpha") {
		t.Fatalf("center selection = %q", got)
	}
}

func TestStartOnFileSelectsIt(t *testing.T) {
	root := testTree(t)
	file := filepath.Join(root, "beta.txt")
	app := newTestApp(t, file)

	settle(t, app, listed(app, root, 2))
	if got := app.center.Content().SelectedPath(); got != file {
		t.Fatalf("selection = %q, want %q", got, file)
	}
	settle(t, app, previewIs(app, file, panel.PreviewText))
	if lines := app.right.Content().Lines(); len(lines) != 1 || lines[0] != "hello" {
		t.Fatalf("preview lines = %q", lines)
	}
}

func TestMoveRightAndLeftRotateSlots(t *testing.T) {
	root := testTree(t)
	alpha := filepath.Join(root, "alpha")
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	oldCenter := app.center
	app.handleCommand(command.Of(command.Right))
	if app.left != oldCenter {
		t.Fatalf("moving right should turn the center slot into the left one")
	}
	settle(t, app, listed(app, alpha, 1))
	settle(t, app, previewIs(app, filepath.Join(alpha, "inner.txt"), panel.PreviewText))
	if got := app.left.Content().SelectedPath(); got != alpha {
		t.Fatalf("left column selection = %q", got)
	}

	app.handleCommand(command.Of(command.Left))
	if app.center != oldCenter {
		t.Fatalf("moving left should bring the slot back to the center")
	}
	if p := app.right.Content(); p.Path() != alpha || p.Kind() != panel.PreviewDirectory {
		t.Fatalf("previous center should become the preview at once, got %q %v", p.Path(), p.Kind())
	}
	settle(t, app, listed(app, root, 2))
	if got := app.center.Content().SelectedPath(); got != alpha {
		t.Fatalf("moving left should select the directory we came from, got %q", got)
	}
	if app.previous != alpha {
		t.Fatalf("previous = %q", app.previous)
	}
}

func TestJumpAndJumpPrevious(t *testing.T) {
	root := testTree(t)
	alpha := filepath.Join(root, "alpha")
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.JumpCommand(filepath.Join(alpha, "inner.txt")))
	settle(t, app, listed(app, alpha, 1))
	if got := app.center.Content().SelectedPath(); got != filepath.Join(alpha, "inner.txt") {
		t.Fatalf("jumping to a file should select it, got %q", got)
	}

	app.handleCommand(command.Of(command.JumpPrevious))
	settle(t, app, listed(app, root, 2))
	app.handleCommand(command.Of(command.JumpPrevious))
	settle(t, app, listed(app, alpha, 1))

	app.handleCommand(command.JumpCommand(filepath.Join(root, "missing")))
	if !app.isError || app.center.Path() != alpha {
		t.Fatalf("jumping to a missing path should report an error and stay, got %q %q", app.message, app.center.Path())
	}
}

func TestToggleHidden(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.ToggleHidden))
	if got := app.center.Content().Len(); got != 3 {
		t.Fatalf("hidden entries should be shown, got %d", got)
	}
	if !app.left.Content().ShowHidden() || !app.right.Content().ShowHidden() {
		t.Fatalf("every column should follow the toggle")
	}

	app.handleCommand(command.JumpCommand(filepath.Join(root, "alpha")))
	settle(t, app, listed(app, filepath.Join(root, "alpha"), 1))
	if !app.center.Content().ShowHidden() {
		t.Fatalf("new listings should keep the toggle")
	}
}

func TestWatcherRefreshesCenter(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	if app.watcher == nil {
		t.Skip("file watching unavailable")
	}
	settle(t, app, listed(app, root, 2))

	mustWrite(t, filepath.Join(root, "gamma.txt"), "new")
	settle(t, app, listed(app, root, 3))
}

func TestSearchSelectsAndCycles(t *testing.T) {
	root, err := fs.Canonicalize(t.TempDir())
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	for _, name := range []string{"apple", "apricot", "banana"} {
		mustWrite(t, filepath.Join(root, name), name)
	}
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 3))
	app.handleCommand(command.Of(command.Down))
	app.handleCommand(command.Of(command.Down))

	app.handleCommand(command.Of(command.Search))
	typeText(app, "ap")
	if got := filepath.Base(app.center.Content().SelectedPath()); got != "apple" {
		t.Fatalf("incremental search selected %q", got)
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if app.prompt != nil || app.query != "ap" {
		t.Fatalf("enter should close the prompt and keep the query")
	}

	want := []struct {
		kind command.Kind
		name string
	}{
		{command.Next, "apricot"},
		{command.Next, "apple"},
		{command.Previous, "apricot"},
	}
	for _, step := range want {
		app.handleCommand(command.Of(step.kind))
		if got := filepath.Base(app.center.Content().SelectedPath()); got != step.name {
			t.Fatalf("%v selected %q, want %q", step.kind, got, step.name)
		}
	}
}

func TestSearchEscapeRestoresSelection(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.Search))
	typeText(app, "beta")
	if got := filepath.Base(app.center.Content().SelectedPath()); got != "beta.txt" {
		t.Fatalf("search selected %q", got)
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if got := filepath.Base(app.center.Content().SelectedPath()); got != "alpha" {
		t.Fatalf("escape should restore the selection, got %q", got)
	}
}

func TestMkdirPromptCreatesAndSelects(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.Mkdir))
	if app.prompt == nil || app.prompt.label != "mkdir: " {
		t.Fatalf("mkdir should open a prompt")
	}
	typeText(app, "newdir")
	app.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	settle(t, app, listed(app, root, 3))
	settle(t, app, func() bool {
		return app.center.Content().SelectedPath() == filepath.Join(root, "newdir")
	})
	if app.isError {
		t.Fatalf("unexpected error %q", app.message)
	}
}

func TestRenamePromptIsPrefilled(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, filepath.Join(root, "beta.txt"))
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.Rename))
	if app.prompt == nil || string(app.prompt.input) != "beta.txt" {
		t.Fatalf("rename prompt should start with the current name")
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyCtrlU, 0, tcell.ModCtrl))
	typeText(app, "gamma.txt")
	app.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	settle(t, app, func() bool {
		return app.center.Content().SelectedPath() == filepath.Join(root, "gamma.txt")
	})
	if _, err := os.Stat(filepath.Join(root, "beta.txt")); !os.IsNotExist(err) {
		t.Fatalf("old name should be gone: %v", err)
	}
}

func TestCopyPasteAndDelete(t *testing.T) {
	root := testTree(t)
	alpha := filepath.Join(root, "alpha")
	app := newTestApp(t, filepath.Join(root, "beta.txt"))
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.Copy))
	if app.clipboard.Empty() || app.clipboard.Cut {
		t.Fatalf("copy should fill the clipboard: %+v", app.clipboard)
	}
	app.handleCommand(command.JumpCommand(alpha))
	settle(t, app, listed(app, alpha, 1))
	app.handleCommand(command.Of(command.Paste))
	settle(t, app, listed(app, alpha, 2))

	copied := filepath.Join(alpha, "beta.txt")
	app.selectInCenter(copied)
	app.handleCommand(command.Of(command.Delete))
	if app.prompt == nil || app.prompt.kind != promptDelete {
		t.Fatalf("delete should ask for confirmation")
	}
	app.handleKey(key('y'))
	settle(t, app, listed(app, alpha, 1))
	if _, err := os.Stat(copied); !os.IsNotExist(err) {
		t.Fatalf("copy should be deleted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "beta.txt")); err != nil {
		t.Fatalf("original must survive: %v", err)
	}
}

func TestDeleteDeclined(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, filepath.Join(root, "beta.txt"))
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.Delete))
	app.handleKey(key('n'))
	if app.prompt != nil {
		t.Fatalf("any other key should close the confirmation")
	}
	if _, err := os.Stat(filepath.Join(root, "beta.txt")); err != nil {
		t.Fatalf("file must survive: %v", err)
	}
}

func TestMarkTargetsMarkedEntries(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.Mark))
	if got := filepath.Base(app.center.Content().SelectedPath()); got != "beta.txt" {
		t.Fatalf("marking should move down, selection %q", got)
	}
	if targets := app.targets(); len(targets) != 1 || filepath.Base(targets[0]) != "alpha" {
		t.Fatalf("targets = %v", targets)
	}
	app.handleCommand(command.Of(command.Cut))
	if !app.clipboard.Cut || len(app.center.Content().Marked()) != 0 {
		t.Fatalf("cut should take the marks: %+v", app.clipboard)
	}
}

func TestChordShowsHintsAndCompletes(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, filepath.Join(root, "beta.txt"))
	settle(t, app, listed(app, root, 2))

	app.handleKey(key('g'))
	v := app.view()
	if v.KeyBuffer != "g" || len(v.Hints) == 0 {
		t.Fatalf("pending chord should show hints: %q %v", v.KeyBuffer, v.Hints)
	}
	app.handleKey(key('g'))
	if got := filepath.Base(app.center.Content().SelectedPath()); got != "alpha" {
		t.Fatalf("gg should move to the top, got %q", got)
	}
	if app.parser.Buffer() != "" {
		t.Fatalf("buffer should be cleared")
	}
}

func TestArchiveCommandsOnlyNotify(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.Zip))
	if app.message == "" || app.isError {
		t.Fatalf("zip should show a notice, got %q", app.message)
	}
}

func TestViewTrash(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.ViewTrash))
	trash, err := fs.Canonicalize(filepath.Join(os.Getenv("XDG_DATA_HOME"), "Trash", "files"))
	if err != nil {
		t.Fatalf("trash should be created: %v", err)
	}
	settle(t, app, listed(app, trash, 0))
}

func TestQuit(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.QuitWithoutPath))
	if !app.shouldQuit || app.ExitPath() != "" {
		t.Fatalf("Q should quit without a path")
	}
	app.handleCommand(command.Of(command.Quit))
	if app.ExitPath() != root {
		t.Fatalf("exit path = %q", app.ExitPath())
	}
}

func TestToggleLogShowsLines(t *testing.T) {
	root := testTree(t)
	app := newTestApp(t, root)
	settle(t, app, listed(app, root, 2))

	app.handleCommand(command.Of(command.ToggleLog))
	if v := app.view(); !v.ShowLog {
		t.Fatalf("log should be shown")
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if app.showLog {
		t.Fatalf("escape should close the log")
	}
}

func TestMoveRightOnFileOpensEditor(t *testing.T) {
	root := testTree(t)
	file := filepath.Join(root, "beta.txt")
	app := newTestApp(t, file)
	settle(t, app, listed(app, root, 2))
	app.opener = &opener{editor: []string{"fake-editor"}, log: app.log}

	var recorded []string
	withFakeCommandBuilder(t, 0, &recorded, func() {
		app.handleCommand(command.Of(command.Right))
	})
	assertCommandRecorded(t, recorded, []string{"fake-editor", file})
	if app.isError {
		t.Fatalf("unexpected error %q", app.message)
	}
}

func TestOpenerErrorIsReported(t *testing.T) {
	root := testTree(t)
	file := filepath.Join(root, "beta.txt")
	app := newTestApp(t, file)
	settle(t, app, listed(app, root, 2))
	app.opener = &opener{editor: []string{"fake-editor"}, log: app.log}

	withFakeCommandBuilder(t, 3, nil, func() {
		app.handleCommand(command.Of(command.Right))
	})
	if !app.isError {
		t.Fatalf("a failing editor should be reported")
	}

	app.opener = &opener{log: app.log}
	app.handleCommand(command.Of(command.Right))
	if app.message != errNoOpener.Error() {
		t.Fatalf("message = %q", app.message)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	code, err := strconv.Atoi(os.Getenv("HELPER_PROCESS_EXIT"))
	if err != nil {
		code = 1
	}
	os.Exit(code)
}

func withFakeCommandBuilder(t *testing.T, exitCode int, recorded *[]string, fn func()) {
	t.Helper()
	orig := commandBuilder
	commandBuilder = func(name string, args ...string) *exec.Cmd {
		if recorded != nil {
			*recorded = append([]string{name}, args...)
		}
		return helperProcessCommand(exitCode, name, args...)
	}
	defer func() {
		commandBuilder = orig
	}()
	fn()
}

func helperProcessCommand(exitCode int, name string, args ...string) *exec.Cmd {
	cmdArgs := []string{"-test.run=TestHelperProcess", "--", name}
	cmdArgs = append(cmdArgs, args...)
	cmd := exec.Command(os.Args[0], cmdArgs...)
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=1",
		"HELPER_PROCESS_EXIT="+strconv.Itoa(exitCode),
	)
	return cmd
}

func assertCommandRecorded(t *testing.T, recorded, want []string) {
	t.Helper()
	if len(recorded) != len(want) {
		t.Fatalf("expected command %v, got %v", want, recorded)
	}
	for i := range want {
		if recorded[i] != want[i] {
			t.Fatalf("expected command %v, got %v", want, recorded)
		}
	}
}
