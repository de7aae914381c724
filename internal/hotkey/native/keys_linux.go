// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

//go:build cgo && x11

package native

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

// X11 keysyms for keys the hotkey package does not name.
const (
	xkHome      xhotkey.Key = 0xff50
	xkPageUp    xhotkey.Key = 0xff55
	xkPageDown  xhotkey.Key = 0xff56
	xkEnd       xhotkey.Key = 0xff57
	xkInsert    xhotkey.Key = 0xff63
	xkBackspace xhotkey.Key = 0xff08
	xkPrint     xhotkey.Key = 0xff61
	xkPause     xhotkey.Key = 0xff13
)

var keyCodes = withCommonKeys(map[hotkey.Key]xhotkey.Key{
	hotkey.KeyDelete:      xhotkey.KeyDelete,
	hotkey.KeyHome:        xkHome,
	hotkey.KeyEnd:         xkEnd,
	hotkey.KeyPageUp:      xkPageUp,
	hotkey.KeyPageDown:    xkPageDown,
	hotkey.KeyInsert:      xkInsert,
	hotkey.KeyBackspace:   xkBackspace,
	hotkey.KeyPrintScreen: xkPrint,
	hotkey.KeyPause:       xkPause,
})

// Mod1 is Alt and Mod4 is Super under the default X11 modifier map.
func modifiers(m hotkey.Modifiers) []xhotkey.Modifier {
	var mods []xhotkey.Modifier
	if m.Has(hotkey.ModCtrl) {
		mods = append(mods, xhotkey.ModCtrl)
	}
	if m.Has(hotkey.ModAlt) {
		mods = append(mods, xhotkey.Mod1)
	}
	if m.Has(hotkey.ModShift) {
		mods = append(mods, xhotkey.ModShift)
	}
	if m.Has(hotkey.ModSuper) {
		mods = append(mods, xhotkey.Mod4)
	}
	return mods
}
