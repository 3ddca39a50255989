package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kk-code-lab/rmill/internal/command"
)

// General holds bindings that are neither movement nor file manipulation.
type General struct {
	Search       []string `yaml:"search"`
	Mark         []string `yaml:"mark"`
	Next         []string `yaml:"next"`
	Previous     []string `yaml:"previous"`
	ViewTrash    []string `yaml:"view_trash"`
	ToggleHidden []string `yaml:"toggle_hidden"`
	ToggleLog    []string `yaml:"toggle_log"`
	Quit         []string `yaml:"quit"`
	QuitNoCd     []string `yaml:"quit_no_cd"`
}

// JumpBinding binds a key sequence to a fixed directory.
type JumpBinding struct {
	Keys string `yaml:"keys"`
	Path string `yaml:"path"`
}

// Movement holds cursor and navigation bindings.
type Movement struct {
	Up               []string      `yaml:"up"`
	Down             []string      `yaml:"down"`
	Left             []string      `yaml:"left"`
	Right            []string      `yaml:"right"`
	Top              []string      `yaml:"top"`
	Bottom           []string      `yaml:"bottom"`
	PageForward      []string      `yaml:"page_forward"`
	PageBackward     []string      `yaml:"page_backward"`
	HalfPageForward  []string      `yaml:"half_page_forward"`
	HalfPageBackward []string      `yaml:"half_page_backward"`
	JumpPrevious     []string      `yaml:"jump_previous"`
	JumpTo           []JumpBinding `yaml:"jump_to"`
}

// Manipulation holds bindings that change the filesystem or prompt for input.
type Manipulation struct {
	ChangeDirectory []string `yaml:"change_directory"`
	Rename          []string `yaml:"rename"`
	Mkdir           []string `yaml:"mkdir"`
	Touch           []string `yaml:"touch"`
	Cut             []string `yaml:"cut"`
	Copy            []string `yaml:"copy"`
	Delete          []string `yaml:"delete"`
	Paste           []string `yaml:"paste"`
	PasteOverwrite  []string `yaml:"paste_overwrite"`
	Zip             []string `yaml:"zip"`
	Tar             []string `yaml:"tar"`
	Extract         []string `yaml:"extract"`
}

// Keys is the contents of keys.yaml.
type Keys struct {
	General      General      `yaml:"general"`
	Movement     Movement     `yaml:"movement"`
	Manipulation Manipulation `yaml:"manipulation"`
}

// DefaultKeys returns the built-in bindings.
func DefaultKeys() Keys {
	return Keys{
		General: General{
			Search:       []string{"/"},
			Mark:         []string{" "},
			Next:         []string{"n"},
			Previous:     []string{"N"},
			ViewTrash:    []string{"gT"},
			ToggleHidden: []string{"zh"},
			ToggleLog:    []string{"devlog"},
			Quit:         []string{"q"},
			QuitNoCd:     []string{"Q"},
		},
		Movement: Movement{
			Up:               []string{"k"},
			Down:             []string{"j"},
			Left:             []string{"h"},
			Right:            []string{"l"},
			Top:              []string{"gg"},
			Bottom:           []string{"G"},
			PageForward:      []string{"ctrl-f"},
			PageBackward:     []string{"ctrl-b"},
			HalfPageForward:  []string{"ctrl-d"},
			HalfPageBackward: []string{"ctrl-u"},
			JumpPrevious:     []string{"''"},
			JumpTo: []JumpBinding{
				{Keys: "gh", Path: "~"},
				{Keys: "gr", Path: "/"},
				{Keys: "gc", Path: "~/.config"},
				{Keys: "ge", Path: "/etc"},
				{Keys: "gu", Path: "/usr"},
			},
		},
		Manipulation: Manipulation{
			ChangeDirectory: []string{"cd"},
			Rename:          []string{"rename"},
			Mkdir:           []string{"mkdir"},
			Touch:           []string{"touch"},
			Cut:             []string{"dd", "cut", "ctrl-x"},
			Copy:            []string{"yy", "copy", "ctrl-c"},
			Delete:          []string{"delete"},
			Paste:           []string{"pp", "paste", "ctrl-v"},
			PasteOverwrite:  []string{"po"},
			Zip:             []string{"zip"},
			Tar:             []string{"tar"},
			Extract:         []string{"extract"},
		},
	}
}

// LoadKeys reads key bindings from path. A missing file yields the defaults
// silently. A file that does not parse yields the defaults and an error. A
// category that is absent or malformed falls back to its default, and each
// malformed category is reported.
func LoadKeys(path string) (Keys, []error) {
	defaults := DefaultKeys()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return defaults, []error{fmt.Errorf("read %s: %w", path, err)}
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return defaults, []error{fmt.Errorf("parse %s: %w", path, err)}
	}

	keys := defaults
	var problems []error
	decode := func(name string, out any) bool {
		node, ok := doc[name]
		if !ok {
			return false
		}
		if err := node.Decode(out); err != nil {
			problems = append(problems, fmt.Errorf("%s: category %q: %w", path, name, err))
			return false
		}
		return true
	}

	var general General
	if decode("general", &general) {
		keys.General = general
	}
	var movement Movement
	if decode("movement", &movement) {
		keys.Movement = movement
	}
	var manipulation Manipulation
	if decode("manipulation", &manipulation) {
		keys.Manipulation = manipulation
	}
	return keys, problems
}

// Parser builds a command parser from the bindings.
func (k Keys) Parser() *command.Parser {
	p := command.New()
	bind := func(bindings []string, kind command.Kind) {
		p.Bind(bindings, command.Of(kind))
	}

	g := k.General
	bind(g.Search, command.Search)
	bind(g.Mark, command.Mark)
	bind(g.Next, command.Next)
	bind(g.Previous, command.Previous)
	bind(g.ViewTrash, command.ViewTrash)
	bind(g.ToggleHidden, command.ToggleHidden)
	bind(g.ToggleLog, command.ToggleLog)
	bind(g.Quit, command.Quit)
	bind(g.QuitNoCd, command.QuitWithoutPath)

	m := k.Movement
	bind(m.Up, command.Up)
	bind(m.Down, command.Down)
	bind(m.Left, command.Left)
	bind(m.Right, command.Right)
	bind(m.Top, command.Top)
	bind(m.Bottom, command.Bottom)
	bind(m.PageForward, command.PageForward)
	bind(m.PageBackward, command.PageBackward)
	bind(m.HalfPageForward, command.HalfPageForward)
	bind(m.HalfPageBackward, command.HalfPageBackward)
	bind(m.JumpPrevious, command.JumpPrevious)
	for _, j := range m.JumpTo {
		p.Bind([]string{j.Keys}, command.JumpCommand(j.Path))
	}

	x := k.Manipulation
	bind(x.ChangeDirectory, command.Cd)
	bind(x.Rename, command.Rename)
	bind(x.Mkdir, command.Mkdir)
	bind(x.Touch, command.Touch)
	bind(x.Cut, command.Cut)
	bind(x.Copy, command.Copy)
	bind(x.Delete, command.Delete)
	bind(x.Paste, command.Paste)
	bind(x.PasteOverwrite, command.PasteOverwrite)
	bind(x.Zip, command.Zip)
	bind(x.Tar, command.Tar)
	bind(x.Extract, command.Extract)
	return p
}
