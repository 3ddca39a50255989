package command

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Hint is one binding that can still complete the pending key sequence.
type Hint struct {
	Keys        string
	Description string
}

// Parser turns key events into commands. Multi-key chords are matched
// against a trie; modifier chords and special keys fire from a one-shot map.
// The only state carried between calls is the pending key buffer.
type Parser struct {
	sequences *trie
	oneShot   map[KeyEvent]Command
	buffer    []rune
}

// New returns a parser with no sequence bindings and the built-in special
// keys (arrows, paging, Home/End, Enter).
func New() *Parser {
	p := &Parser{
		sequences: newTrie(),
		oneShot:   make(map[KeyEvent]Command),
	}
	for key, kind := range map[tcell.Key]Kind{
		tcell.KeyUp:    Up,
		tcell.KeyDown:  Down,
		tcell.KeyLeft:  Left,
		tcell.KeyRight: Right,
		tcell.KeyPgUp:  PageBackward,
		tcell.KeyPgDn:  PageForward,
		tcell.KeyHome:  Top,
		tcell.KeyEnd:   Bottom,
		tcell.KeyEnter: Right,
	} {
		p.bindKey(SpecialKey(key), Of(kind))
	}
	return p
}

// Bind registers cmd for each binding string. "ctrl-x", "alt-x" and
// "meta-x" go to the one-shot table using the first character after the
// prefix; a missing character drops the binding. Everything else is a
// literal key sequence.
func (p *Parser) Bind(bindings []string, cmd Command) {
	for _, b := range bindings {
		if b == "" {
			continue
		}
		key, oneShot, ok := parseOneShot(b)
		if oneShot {
			if ok {
				p.bindKey(key, cmd)
			}
			continue
		}
		p.sequences.insert(b, cmd)
	}
}

// bindKey registers cmd for a single key event.
func (p *Parser) bindKey(key KeyEvent, cmd Command) {
	p.oneShot[key] = cmd
}

// Add feeds one key event and returns the command it completes, or a
// command of kind None.
func (p *Parser) Add(key KeyEvent) Command {
	if key.isBackspace() {
		if n := len(p.buffer); n > 0 {
			p.buffer = p.buffer[:n-1]
		}
		return Of(None)
	}

	if key.buffered() {
		r := key.Rune
		if key.Mod&tcell.ModShift != 0 {
			r = unicode.ToUpper(r)
		}
		p.buffer = append(p.buffer, r)
		keys := string(p.buffer)

		if !p.sequences.hasPrefix(keys) {
			p.Clear()
			return Of(None)
		}
		if cmd, ok := p.sequences.get(keys); ok {
			p.Clear()
			return cmd
		}
		return Of(None)
	}

	if cmd, ok := p.oneShot[key]; ok {
		p.Clear()
		return cmd
	}
	return Of(None)
}

// Buffer returns the pending key sequence.
func (p *Parser) Buffer() string {
	return string(p.buffer)
}

// Clear drops the pending key sequence.
func (p *Parser) Clear() {
	p.buffer = p.buffer[:0]
}

// MatchingCommands lists the bindings that start with the pending buffer.
// It is empty when nothing is pending.
func (p *Parser) MatchingCommands() []Hint {
	if len(p.buffer) == 0 {
		return nil
	}
	return p.sequences.withPrefix(string(p.buffer))
}

// Len reports how many sequence and one-shot bindings are registered.
func (p *Parser) Len() (sequences, oneShot int) {
	return p.sequences.size, len(p.oneShot)
}
