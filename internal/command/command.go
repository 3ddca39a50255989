package command

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies what a Command asks the browser to do.
type Kind int

const (
	None Kind = iota
	Up
	Down
	Left
	Right
	Top
	Bottom
	PageForward
	PageBackward
	HalfPageForward
	HalfPageBackward
	JumpTo
	JumpPrevious
	Next
	Previous
	ToggleHidden
	ToggleLog
	ViewTrash
	Zip
	Tar
	Extract
	Cd
	Search
	Rename
	Mkdir
	Touch
	Cut
	Copy
	Delete
	Paste
	PasteOverwrite
	Mark
	Quit
	QuitWithoutPath
)

var kindDescriptions = map[Kind]string{
	None:             "no command",
	Up:               "move up",
	Down:             "move down",
	Left:             "move left",
	Right:            "move right",
	Top:              "move to top",
	Bottom:           "move to bottom",
	PageForward:      "page forward",
	PageBackward:     "page backward",
	HalfPageForward:  "half page forward",
	HalfPageBackward: "half page backward",
	JumpPrevious:     "jump back",
	Next:             "next match",
	Previous:         "previous match",
	ToggleHidden:     "toggle hidden files",
	ToggleLog:        "toggle developer log",
	ViewTrash:        "go to trash",
	Zip:              "zip selected items",
	Tar:              "tar selected items",
	Extract:          "extract selected archive",
	Cd:               "enter 'cd' mode",
	Search:           "search for items",
	Rename:           "rename selected items",
	Mkdir:            "create a new directory",
	Touch:            "create a new file",
	Cut:              "cut selected items",
	Copy:             "copy selected items",
	Delete:           "delete selected items",
	Paste:            "paste without overwrite",
	PasteOverwrite:   "paste and overwrite",
	Mark:             "mark selected item",
	Quit:             "quit",
	QuitWithoutPath:  "quit without changing path",
}

// Command is the decoded result of one or more key events.
// Path is only set for JumpTo and is already expanded.
type Command struct {
	Kind Kind
	Path string
}

// Of returns a command without a payload.
func Of(kind Kind) Command {
	return Command{Kind: kind}
}

// JumpCommand returns a JumpTo command for the expanded form of path.
func JumpCommand(path string) Command {
	return Command{Kind: JumpTo, Path: ExpandPath(path)}
}

// IsNone reports whether the command carries no action.
func (c Command) IsNone() bool {
	return c.Kind == None
}

// String returns the human readable description shown in key hints.
func (c Command) String() string {
	if c.Kind == JumpTo {
		return c.Path
	}
	if desc, ok := kindDescriptions[c.Kind]; ok {
		return desc
	}
	return "unknown command"
}

// ExpandPath replaces "~" and "$HOME" with the user's home directory.
func ExpandPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return path
	}
	expanded := strings.ReplaceAll(path, "$HOME", home)
	if expanded == "~" {
		return home
	}
	if strings.HasPrefix(expanded, "~/") || strings.HasPrefix(expanded, `~\`) {
		return filepath.Join(home, expanded[2:])
	}
	return expanded
}
