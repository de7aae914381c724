// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package native

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

// Virtual-key codes for keys the hotkey package does not name.
const (
	vkBack     xhotkey.Key = 0x08
	vkPause    xhotkey.Key = 0x13
	vkPrior    xhotkey.Key = 0x21
	vkNext     xhotkey.Key = 0x22
	vkEnd      xhotkey.Key = 0x23
	vkHome     xhotkey.Key = 0x24
	vkSnapshot xhotkey.Key = 0x2C
	vkInsert   xhotkey.Key = 0x2D
)

var keyCodes = withCommonKeys(map[hotkey.Key]xhotkey.Key{
	hotkey.KeyDelete:      xhotkey.KeyDelete,
	hotkey.KeyHome:        vkHome,
	hotkey.KeyEnd:         vkEnd,
	hotkey.KeyPageUp:      vkPrior,
	hotkey.KeyPageDown:    vkNext,
	hotkey.KeyInsert:      vkInsert,
	hotkey.KeyBackspace:   vkBack,
	hotkey.KeyPrintScreen: vkSnapshot,
	hotkey.KeyPause:       vkPause,
})

func modifiers(m hotkey.Modifiers) []xhotkey.Modifier {
	var mods []xhotkey.Modifier
	if m.Has(hotkey.ModCtrl) {
		mods = append(mods, xhotkey.ModCtrl)
	}
	if m.Has(hotkey.ModAlt) {
		mods = append(mods, xhotkey.ModAlt)
	}
	if m.Has(hotkey.ModShift) {
		mods = append(mods, xhotkey.ModShift)
	}
	if m.Has(hotkey.ModSuper) {
		mods = append(mods, xhotkey.ModWin)
	}
	return mods
}
