package controller

import (
	"github.com/gdamore/tcell/v2"
)

// Key identifies a keypress: either a special key or a printable rune.
type Key struct {
	Code tcell.Key
	Rune rune
}

// These are the keys bound by the controller.
var (
	KeyQ      = runeKey('q')
	KeyN      = runeKey('n')
	KeyE      = runeKey('e')
	KeyX      = runeKey('x')
	KeyC      = runeKey('c')
	KeyD      = runeKey('d')
	KeyF      = runeKey('f')
	KeyM      = runeKey('m')
	KeyP      = runeKey('p')
	KeyR      = runeKey('r')
	KeyShiftE = runeKey('E')
	KeyShiftJ = runeKey('J')
	KeyShiftK = runeKey('K')
	KeySpace  = runeKey(' ')
	KeyEnter  = Key{Code: tcell.KeyEnter}
	KeyEsc    = Key{Code: tcell.KeyEscape}
	KeyF2     = Key{Code: tcell.KeyF2}
)

func runeKey(r rune) Key {
	return Key{Code: tcell.KeyRune, Rune: r}
}

// AsKey converts a tcell event into a Key.
func AsKey(evt *tcell.EventKey) Key {
	if evt.Key() == tcell.KeyRune {
		return runeKey(evt.Rune())
	}

	return Key{Code: evt.Key()}
}

func (k Key) String() string {
	if k.Code == tcell.KeyRune {
		if k.Rune == ' ' {
			return "Space"
		}

		return string(k.Rune)
	}

	if name, ok := tcell.KeyNames[k.Code]; ok {
		return name
	}

	return "?"
}

// KeyEvent defines an event associated with a keypress.
type KeyEvent struct {
	Description string
	Action      func(*tcell.EventKey) *tcell.EventKey
}
