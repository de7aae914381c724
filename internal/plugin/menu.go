// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package plugin

// ActionType says what activating a menu item does.
type ActionType string

// Action types accepted in manifests.
const (
	ActionRun          ActionType = "run"
	ActionSettings     ActionType = "settings"
	ActionToggleConfig ActionType = "toggle-config"
	ActionCustom       ActionType = "custom"
)

// MenuItem is one node of a plugin's menu tree: *Action, *Checkbox, Separator or *Submenu.
type MenuItem interface {
	isMenuItem()
}

// Action is a clickable entry.
type Action struct {
	ID        string
	Label     string
	Action    ActionType
	ConfigKey string
}

// Checkbox is a toggleable entry. ConfigKey, when set, names the dotted
// key in the plugin's config.json that the checkbox mirrors.
type Checkbox struct {
	ID        string
	Label     string
	Checked   bool
	Action    ActionType
	ConfigKey string
}

// Separator is a visual divider.
type Separator struct{}

// Submenu groups child items.
type Submenu struct {
	ID    string
	Label string
	Items []MenuItem
}

func (*Action) isMenuItem()   {}
func (*Checkbox) isMenuItem() {}
func (Separator) isMenuItem() {}
func (*Submenu) isMenuItem()  {}

// ItemID returns the local id of item, or "" for separators.
func ItemID(item MenuItem) string {
	switch it := item.(type) {
	case *Action:
		return it.ID
	case *Checkbox:
		return it.ID
	case *Submenu:
		return it.ID
	default:
		return ""
	}
}

// Walk visits items depth-first in declaration order. Returning false from fn stops the walk.
func Walk(items []MenuItem, fn func(MenuItem) bool) bool {
	for _, item := range items {
		if !fn(item) {
			return false
		}
		if sub, ok := item.(*Submenu); ok {
			if !Walk(sub.Items, fn) {
				return false
			}
		}
	}
	return true
}

// FindItem returns the first item anywhere in the tree whose id equals id.
func FindItem(items []MenuItem, id string) (MenuItem, bool) {
	var found MenuItem
	Walk(items, func(item MenuItem) bool {
		if id != "" && ItemID(item) == id {
			found = item
			return false
		}
		return true
	})
	return found, found != nil
}
