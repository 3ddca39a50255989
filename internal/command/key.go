package command

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

const modifierMask = tcell.ModCtrl | tcell.ModAlt | tcell.ModMeta

// KeyEvent is a comparable key press: a key code, the rune for KeyRune,
// and the modifier mask. It is used directly as the one-shot table key.
type KeyEvent struct {
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

// RuneKey returns an unmodified character key.
func RuneKey(r rune) KeyEvent {
	return KeyEvent{Key: tcell.KeyRune, Rune: r}
}

// SpecialKey returns a non-character key such as an arrow.
func SpecialKey(key tcell.Key) KeyEvent {
	return KeyEvent{Key: key}
}

// ModifiedKey returns a character key pressed together with mod.
func ModifiedKey(r rune, mod tcell.ModMask) KeyEvent {
	return KeyEvent{Key: tcell.KeyRune, Rune: r, Mod: mod}
}

// FromTcell normalizes a tcell key event. Terminals report Ctrl+letter as
// control codes; those become the letter with ModCtrl so they match the
// "ctrl-x" binding form.
func FromTcell(ev *tcell.EventKey) KeyEvent {
	key := ev.Key()
	mod := ev.Modifiers()

	if key == tcell.KeyRune {
		r := ev.Rune()
		if mod&modifierMask != 0 && mod&tcell.ModShift != 0 && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
			mod &^= tcell.ModShift
		}
		return KeyEvent{Key: tcell.KeyRune, Rune: r, Mod: mod}
	}

	if mod&tcell.ModCtrl != 0 && key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		r := 'a' + rune(key-tcell.KeyCtrlA)
		if mod&tcell.ModShift != 0 {
			r = unicode.ToUpper(r)
			mod &^= tcell.ModShift
		}
		return KeyEvent{Key: tcell.KeyRune, Rune: r, Mod: mod}
	}

	return KeyEvent{Key: key, Mod: mod}
}

func (k KeyEvent) isBackspace() bool {
	return k.Key == tcell.KeyBackspace || k.Key == tcell.KeyBackspace2
}

// buffered reports whether the key goes through the sequence buffer:
// a character with no modifier besides Shift.
func (k KeyEvent) buffered() bool {
	return k.Key == tcell.KeyRune && k.Mod&modifierMask == 0
}

var bindingPrefixes = []struct {
	prefix string
	mod    tcell.ModMask
}{
	{"ctrl-", tcell.ModCtrl},
	{"alt-", tcell.ModAlt},
	{"meta-", tcell.ModMeta},
}

// parseOneShot decodes "ctrl-x", "alt-x" and "meta-x". The second result
// reports whether binding uses one of those forms at all; the third whether
// it is well formed (non-empty suffix).
func parseOneShot(binding string) (KeyEvent, bool, bool) {
	for _, p := range bindingPrefixes {
		if !strings.HasPrefix(binding, p.prefix) {
			continue
		}
		suffix := binding[len(p.prefix):]
		if suffix == "" {
			return KeyEvent{}, true, false
		}
		r, _ := utf8.DecodeRuneInString(suffix)
		return KeyEvent{Key: tcell.KeyRune, Rune: r, Mod: p.mod}, true, true
	}
	return KeyEvent{}, false, false
}
