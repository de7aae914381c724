// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package hotkey

import (
	"strconv"
	"strings"
)

// Key identifies a physical key independent of platform, named after the
// W3C UI Events code values ("KeyR", "Digit5", "F1", "ArrowUp").
type Key string

// KeyNone is the zero Key.
const KeyNone Key = ""

// Named keys.
const (
	KeySpace       Key = "Space"
	KeyEnter       Key = "Enter"
	KeyEscape      Key = "Escape"
	KeyTab         Key = "Tab"
	KeyBackspace   Key = "Backspace"
	KeyDelete      Key = "Delete"
	KeyInsert      Key = "Insert"
	KeyHome        Key = "Home"
	KeyEnd         Key = "End"
	KeyPageUp      Key = "PageUp"
	KeyPageDown    Key = "PageDown"
	KeyArrowUp     Key = "ArrowUp"
	KeyArrowDown   Key = "ArrowDown"
	KeyArrowLeft   Key = "ArrowLeft"
	KeyArrowRight  Key = "ArrowRight"
	KeyPrintScreen Key = "PrintScreen"
	KeyPause       Key = "Pause"
)

// LetterKey returns the Key for an ASCII letter.
func LetterKey(r rune) Key {
	return Key("Key" + strings.ToUpper(string(r)))
}

// DigitKey returns the Key for the digit d (0-9).
func DigitKey(d int) Key {
	return Key("Digit" + strconv.Itoa(d))
}

// FunctionKey returns the Key for Fn (1-12).
func FunctionKey(n int) Key {
	return Key("F" + strconv.Itoa(n))
}

var keyTable = buildKeyTable()

func buildKeyTable() map[string]Key {
	t := map[string]Key{
		"space":       KeySpace,
		"enter":       KeyEnter,
		"return":      KeyEnter,
		"escape":      KeyEscape,
		"esc":         KeyEscape,
		"tab":         KeyTab,
		"backspace":   KeyBackspace,
		"delete":      KeyDelete,
		"del":         KeyDelete,
		"insert":      KeyInsert,
		"ins":         KeyInsert,
		"home":        KeyHome,
		"end":         KeyEnd,
		"pageup":      KeyPageUp,
		"pgup":        KeyPageUp,
		"pagedown":    KeyPageDown,
		"pgdn":        KeyPageDown,
		"up":          KeyArrowUp,
		"down":        KeyArrowDown,
		"left":        KeyArrowLeft,
		"right":       KeyArrowRight,
		"printscreen": KeyPrintScreen,
		"print":       KeyPrintScreen,
		"prtsc":       KeyPrintScreen,
		"pause":       KeyPause,
	}
	for r := 'a'; r <= 'z'; r++ {
		t[string(r)] = LetterKey(r)
	}
	for d := 0; d <= 9; d++ {
		t[strconv.Itoa(d)] = DigitKey(d)
	}
	for n := 1; n <= 12; n++ {
		t["f"+strconv.Itoa(n)] = FunctionKey(n)
	}
	return t
}

// LookupKey resolves a key token case-insensitively.
func LookupKey(token string) (Key, bool) {
	k, ok := keyTable[strings.ToLower(token)]
	return k, ok
}

// Keys returns every key the parser recognizes.
func Keys() []Key {
	seen := make(map[Key]struct{}, len(keyTable))
	out := make([]Key, 0, len(keyTable))
	for _, k := range keyTable {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Label returns the short display form used in accelerators: "R", "5", "F1", "Up".
func (k Key) Label() string {
	s := string(k)
	for _, prefix := range []string{"Key", "Digit", "Arrow"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok && rest != "" {
			return rest
		}
	}
	return s
}
