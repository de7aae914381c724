// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

//go:build cgo

package native

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

// macOS virtual key codes for keys the hotkey package does not name.
// Insert maps to Help and PrintScreen/Pause to F13/F15 as on Apple keyboards.
const (
	vkHelp          xhotkey.Key = 0x72
	vkHome          xhotkey.Key = 0x73
	vkPageUp        xhotkey.Key = 0x74
	vkForwardDelete xhotkey.Key = 0x75
	vkEnd           xhotkey.Key = 0x77
	vkPageDown      xhotkey.Key = 0x79
	vkDelete        xhotkey.Key = 0x33
	vkF13           xhotkey.Key = 0x69
	vkF15           xhotkey.Key = 0x71
)

var keyCodes = withCommonKeys(map[hotkey.Key]xhotkey.Key{
	hotkey.KeyDelete:      vkForwardDelete,
	hotkey.KeyHome:        vkHome,
	hotkey.KeyEnd:         vkEnd,
	hotkey.KeyPageUp:      vkPageUp,
	hotkey.KeyPageDown:    vkPageDown,
	hotkey.KeyInsert:      vkHelp,
	hotkey.KeyBackspace:   vkDelete,
	hotkey.KeyPrintScreen: vkF13,
	hotkey.KeyPause:       vkF15,
})

func modifiers(m hotkey.Modifiers) []xhotkey.Modifier {
	var mods []xhotkey.Modifier
	if m.Has(hotkey.ModCtrl) {
		mods = append(mods, xhotkey.ModCtrl)
	}
	if m.Has(hotkey.ModAlt) {
		mods = append(mods, xhotkey.ModOption)
	}
	if m.Has(hotkey.ModShift) {
		mods = append(mods, xhotkey.ModShift)
	}
	if m.Has(hotkey.ModSuper) {
		mods = append(mods, xhotkey.ModCmd)
	}
	return mods
}
