package app

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// commandBuilder is replaced in tests to run a helper process instead.
var commandBuilder = exec.Command

type lookPathFunc func(string) (string, error)

// detectOpener returns the command that hands files to the desktop.
func detectOpener(configured string) ([]string, bool) {
	return detectOpenerInternal(runtime.GOOS, configured, exec.LookPath)
}

// detectEditorCommand returns the editor for text files: configured, then
// $VISUAL and $EDITOR, then a platform default.
func detectEditorCommand(configured string) ([]string, bool) {
	return detectEditorCommandInternal(runtime.GOOS, configured, os.Getenv, exec.LookPath)
}

func detectOpenerInternal(goos, configured string, lookPath lookPathFunc) ([]string, bool) {
	return firstAvailable(lookPath, []string{configured}, desktopOpeners(goos))
}

func detectEditorCommandInternal(goos, configured string, getenv func(string) string, lookPath lookPathFunc) ([]string, bool) {
	user := []string{configured, getenv("VISUAL"), getenv("EDITOR")}
	return firstAvailable(lookPath, user, fallbackEditors(goos))
}

func desktopOpeners(goos string) [][]string {
	switch strings.ToLower(goos) {
	case "darwin":
		return [][]string{{"open"}}
	case "windows":
		return [][]string{{"cmd", "/C", "start", ""}}
	}
	return [][]string{{"xdg-open"}, {"gio", "open"}}
}

func fallbackEditors(goos string) [][]string {
	if strings.EqualFold(goos, "windows") {
		return [][]string{{"code", "--wait"}, {"notepad.exe"}}
	}
	return [][]string{{"nvim"}, {"vim"}, {"nano"}}
}

// firstAvailable returns the first command whose program is found: the
// user's command lines in order, then the built-in argument lists. The
// program in the result is the resolved path.
func firstAvailable(lookPath lookPathFunc, lines []string, builtin [][]string) ([]string, bool) {
	candidates := make([][]string, 0, len(lines)+len(builtin))
	for _, line := range lines {
		if args := parseCommandLine(line); len(args) > 0 {
			candidates = append(candidates, args)
		}
	}
	candidates = append(candidates, builtin...)

	for _, args := range candidates {
		if resolved, ok := resolveExecutable(args[0], lookPath); ok {
			return append([]string{resolved}, args[1:]...), true
		}
	}
	return nil, false
}

// parseCommandLine splits cmd into arguments on unquoted whitespace. Single
// and double quotes group words and are removed; inside one kind of quote
// the other is literal. A leading ~ in the program is expanded.
func parseCommandLine(cmd string) []string {
	var (
		args  []string
		word  strings.Builder
		quote rune
		open  bool
	)
	flush := func() {
		if open {
			args = append(args, word.String())
			word.Reset()
			open = false
		}
	}
	for _, r := range cmd {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			word.WriteRune(r)
		case r == '\'' || r == '"':
			quote, open = r, true
		case unicode.IsSpace(r):
			flush()
		default:
			word.WriteRune(r)
			open = true
		}
	}
	flush()
	if len(args) > 0 {
		args[0] = expandUserPath(args[0])
	}
	return args
}

// expandUserPath replaces a leading "~" or "~/" with the home directory.
// Other users' homes ("~name") are left alone.
func expandUserPath(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != '\\') {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

func resolveExecutable(cmd string, lookPath lookPathFunc) (string, bool) {
	if cmd == "" {
		return "", false
	}
	path, err := lookPath(expandUserPath(cmd))
	return path, err == nil && path != ""
}
