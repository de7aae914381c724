// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package hotkey parses key combinations, persists hotkey bindings and runs
// the dispatcher loop that owns native global-hotkey registration.
package hotkey

import (
	"strings"
)

// Modifiers is a set of modifier keys.
type Modifiers uint8

// Modifier bits.
const (
	ModCtrl Modifiers = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

var modifierTokens = map[string]Modifiers{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"win":     ModSuper,
	"meta":    ModSuper,
	"cmd":     ModSuper,
}

var modifierOrder = []struct {
	mod  Modifiers
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModSuper, "Super"},
}

// Has reports whether every bit of m2 is set in m.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// Combo is a parsed key combination.
type Combo struct {
	Mods Modifiers
	Key  Key
}

// ParseCombo parses strings like "Ctrl+Shift+R". Tokens are separated by
// "+", trimmed and matched case-insensitively. Every non-modifier token
// replaces the base key and the last one wins; an empty or unknown token
// clears it, so a combo ending in "+" has no base key and fails.
func ParseCombo(s string) (Combo, error) {
	var c Combo
	for _, part := range strings.Split(s, "+") {
		token := strings.ToLower(strings.TrimSpace(part))
		if mod, ok := modifierTokens[token]; ok {
			c.Mods |= mod
			continue
		}
		c.Key, _ = LookupKey(token)
	}
	if c.Key == KeyNone {
		return Combo{}, errParse(s, "no recognized base key")
	}
	return c, nil
}

// String renders the combo canonically, e.g. "Ctrl+Shift+R".
func (c Combo) String() string {
	var b strings.Builder
	for _, m := range modifierOrder {
		if c.Mods.Has(m.mod) {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(c.Key.Label())
	return b.String()
}
