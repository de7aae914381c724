// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

//go:build (linux && cgo && x11) || (darwin && cgo) || windows

package native

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

var (
	letterCodes = [26]xhotkey.Key{
		xhotkey.KeyA, xhotkey.KeyB, xhotkey.KeyC, xhotkey.KeyD, xhotkey.KeyE, xhotkey.KeyF,
		xhotkey.KeyG, xhotkey.KeyH, xhotkey.KeyI, xhotkey.KeyJ, xhotkey.KeyK, xhotkey.KeyL,
		xhotkey.KeyM, xhotkey.KeyN, xhotkey.KeyO, xhotkey.KeyP, xhotkey.KeyQ, xhotkey.KeyR,
		xhotkey.KeyS, xhotkey.KeyT, xhotkey.KeyU, xhotkey.KeyV, xhotkey.KeyW, xhotkey.KeyX,
		xhotkey.KeyY, xhotkey.KeyZ,
	}
	digitCodes = [10]xhotkey.Key{
		xhotkey.Key0, xhotkey.Key1, xhotkey.Key2, xhotkey.Key3, xhotkey.Key4,
		xhotkey.Key5, xhotkey.Key6, xhotkey.Key7, xhotkey.Key8, xhotkey.Key9,
	}
	functionCodes = [12]xhotkey.Key{
		xhotkey.KeyF1, xhotkey.KeyF2, xhotkey.KeyF3, xhotkey.KeyF4, xhotkey.KeyF5, xhotkey.KeyF6,
		xhotkey.KeyF7, xhotkey.KeyF8, xhotkey.KeyF9, xhotkey.KeyF10, xhotkey.KeyF11, xhotkey.KeyF12,
	}
)

// withCommonKeys adds the keys every platform names to the platform table.
func withCommonKeys(t map[hotkey.Key]xhotkey.Key) map[hotkey.Key]xhotkey.Key {
	for i, code := range letterCodes {
		t[hotkey.LetterKey(rune('a'+i))] = code
	}
	for i, code := range digitCodes {
		t[hotkey.DigitKey(i)] = code
	}
	for i, code := range functionCodes {
		t[hotkey.FunctionKey(i+1)] = code
	}
	t[hotkey.KeySpace] = xhotkey.KeySpace
	t[hotkey.KeyEnter] = xhotkey.KeyReturn
	t[hotkey.KeyEscape] = xhotkey.KeyEscape
	t[hotkey.KeyTab] = xhotkey.KeyTab
	t[hotkey.KeyArrowUp] = xhotkey.KeyUp
	t[hotkey.KeyArrowDown] = xhotkey.KeyDown
	t[hotkey.KeyArrowLeft] = xhotkey.KeyLeft
	t[hotkey.KeyArrowRight] = xhotkey.KeyRight
	return t
}
