// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package router

import (
	"log/slog"

	"github.com/qol-tools/qol-tray/internal/hotkey"
	"github.com/qol-tools/qol-tray/internal/plugin"
)

// OpenItem is the local id of the entry that opens a plugin's UI.
const OpenItem = "open"

// EntryKind distinguishes menu entries.
type EntryKind int

// Entry kinds.
const (
	EntryAction EntryKind = iota
	EntryCheckbox
	EntrySeparator
	EntrySubmenu
)

// Entry is one renderable menu node. ID is the flattened event id.
type Entry struct {
	ID          string
	Label       string
	Kind        EntryKind
	Checked     bool
	Icon        string
	Accelerator string
	Children    []Entry
}

// Menu is the platform-independent menu model handed to the renderer.
type Menu struct {
	Entries []Entry
}

// Walk visits every entry depth-first.
func (m *Menu) Walk(fn func(Entry)) {
	var walk func([]Entry)
	walk = func(entries []Entry) {
		for _, e := range entries {
			fn(e)
			walk(e.Children)
		}
	}
	walk(m.Entries)
}

// UpdateEntry adds the "__update__" entry and route when an update is known.
type UpdateEntry struct {
	Label   string
	Handler Handler
}

// Builder assembles a Menu and its Router from the loaded plugins,
// registered features and fixed system entries.
type Builder struct {
	Plugins       []*plugin.Runtime
	Features      *Features
	Hotkeys       *hotkey.Config
	PluginHandler func(rt *plugin.Runtime) Handler
	Quit          Handler
	Update        *UpdateEntry
	Options       []Option
}

// Build returns the menu and router. Route order: plugins, features,
// update, quit.
func (b Builder) Build() (*Menu, *Router) {
	menu := &Menu{}
	var routes []Route

	for _, rt := range b.Plugins {
		menu.Entries = append(menu.Entries, b.pluginEntry(rt))
		if b.PluginHandler != nil {
			routes = append(routes, Route{
				Pattern: Prefix(ScopedID(rt.ID, "")),
				Handler: b.PluginHandler(rt),
			})
		}
	}

	if b.Features != nil {
		for idx, feature := range b.Features.All() {
			items := feature.MenuItems()
			if len(items) == 0 {
				continue
			}
			scope := FeatureScope(idx)
			menu.Entries = append(menu.Entries, convertItems(scope, items, decorations{})...)
			routes = append(routes, Route{
				Pattern: Prefix(ScopedID(scope, "")),
				Handler: featureHandler(feature),
			})
		}
	}

	menu.Entries = append(menu.Entries, Entry{Kind: EntrySeparator})

	if b.Update != nil {
		menu.Entries = append(menu.Entries, Entry{ID: UpdateID, Label: b.Update.Label, Kind: EntryAction})
		routes = append(routes, Route{Pattern: Exact(UpdateID), Handler: b.Update.Handler})
	}

	quit := b.Quit
	if quit == nil {
		quit = func(string) (Result, error) {
			slog.Info("quit requested")
			return Quit, nil
		}
	}
	menu.Entries = append(menu.Entries, Entry{ID: QuitID, Label: "Quit", Kind: EntryAction})
	routes = append(routes, Route{Pattern: Exact(QuitID), Handler: quit})

	return menu, New(routes, b.Options...)
}

func (b Builder) pluginEntry(rt *plugin.Runtime) Entry {
	m := rt.Manifest
	open := Entry{
		ID:    ScopedID(rt.ID, OpenItem),
		Label: m.Menu.Label,
		Kind:  EntryAction,
		Icon:  m.Menu.Icon,
	}
	if len(m.Menu.Items) == 0 {
		return open
	}

	children := convertItems(rt.ID, m.Menu.Items, decorations{
		checked: func(cb *plugin.Checkbox) bool {
			return checkedState(rt, cb)
		},
		accelerator: func(local string) string {
			if b.Hotkeys == nil {
				return ""
			}
			a, _ := b.Hotkeys.AcceleratorFor(rt.ID, local)
			return a
		},
	})
	open.Label = "Open"
	open.Icon = ""
	children = append(children, Entry{Kind: EntrySeparator}, open)

	return Entry{
		ID:       ScopedID(rt.ID, ""),
		Label:    m.Menu.Label,
		Kind:     EntrySubmenu,
		Icon:     m.Menu.Icon,
		Children: children,
	}
}

// checkedState prefers the mirrored config.json value over the manifest default.
func checkedState(rt *plugin.Runtime, cb *plugin.Checkbox) bool {
	if cb.ConfigKey == "" {
		return cb.Checked
	}
	v, err := rt.ConfigValue(cb.ConfigKey)
	if err != nil || !v.Exists() {
		return cb.Checked
	}
	return v.Bool()
}

// decorations supplies per-item state that the manifest alone does not hold.
type decorations struct {
	checked     func(*plugin.Checkbox) bool
	accelerator func(localID string) string
}

func (d decorations) acceleratorFor(localID string) string {
	if d.accelerator == nil {
		return ""
	}
	return d.accelerator(localID)
}

// convertItems flattens ids as scope::localId at every depth.
func convertItems(scope string, items []plugin.MenuItem, d decorations) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case *plugin.Action:
			entries = append(entries, Entry{
				ID:          ScopedID(scope, it.ID),
				Label:       it.Label,
				Kind:        EntryAction,
				Accelerator: d.acceleratorFor(it.ID),
			})
		case *plugin.Checkbox:
			state := it.Checked
			if d.checked != nil {
				state = d.checked(it)
			}
			entries = append(entries, Entry{
				ID:          ScopedID(scope, it.ID),
				Label:       it.Label,
				Kind:        EntryCheckbox,
				Checked:     state,
				Accelerator: d.acceleratorFor(it.ID),
			})
		case plugin.Separator:
			entries = append(entries, Entry{Kind: EntrySeparator})
		case *plugin.Submenu:
			entries = append(entries, Entry{
				ID:       ScopedID(scope, it.ID),
				Label:    it.Label,
				Kind:     EntrySubmenu,
				Children: convertItems(scope, it.Items, d),
			})
		}
	}
	return entries
}
