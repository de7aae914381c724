// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package plugin loads manifest-described tray plugins and tracks their runtimes.
package plugin

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// ManifestFile is the manifest file name expected in every plugin directory.
const ManifestFile = "plugin.toml"

// Manifest is a parsed plugin.toml.
type Manifest struct {
	Plugin       Info
	Menu         Menu
	Daemon       *DaemonSpec
	Dependencies *Dependencies
}

// Info is the [plugin] table.
type Info struct {
	Name        string   `toml:"name" json:"name"`
	Description string   `toml:"description" json:"description"`
	Version     string   `toml:"version" json:"version"`
	Author      string   `toml:"author" json:"author,omitempty"`
	Platforms   []string `toml:"platforms" json:"platforms,omitempty"`
}

// SemVer parses Version. Any string is accepted as a version; ok is false
// when it is not semantic.
func (i Info) SemVer() (*semver.Version, bool) {
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Menu is the [menu] table.
type Menu struct {
	Label string
	Icon  string
	Items []MenuItem
}

// DaemonSpec is the optional [daemon] table.
type DaemonSpec struct {
	Enabled        bool   `toml:"enabled" json:"enabled"`
	Command        string `toml:"command" json:"command"`
	RestartOnCrash bool   `toml:"restart_on_crash" json:"restart_on_crash,omitempty"`
}

// Dependencies is the optional [dependencies] table.
type Dependencies struct {
	Binaries []BinaryDependency `toml:"binaries" json:"binaries,omitempty"`
}

// BinaryDependency names a release binary a plugin needs installed.
type BinaryDependency struct {
	Name    string `toml:"name" json:"name"`
	Repo    string `toml:"repo" json:"repo"`
	Pattern string `toml:"pattern" json:"pattern"`
}

// platformAliases maps manifest platform names onto GOOS values.
var platformAliases = map[string]string{
	"macos": "darwin",
	"osx":   "darwin",
}

// SupportsPlatform reports whether the allow-list admits goos.
// A missing list admits every platform; an empty list admits none.
func (i Info) SupportsPlatform(goos string) bool {
	if i.Platforms == nil {
		return true
	}
	for _, p := range i.Platforms {
		if alias, ok := platformAliases[p]; ok {
			p = alias
		}
		if p == goos {
			return true
		}
	}
	return false
}

// SupportsCurrentPlatform reports whether the manifest admits runtime.GOOS.
func (i Info) SupportsCurrentPlatform() bool {
	return i.SupportsPlatform(runtime.GOOS)
}

// DaemonEnabled reports whether the manifest declares a daemon that should run.
func (m *Manifest) DaemonEnabled() bool {
	return m.Daemon != nil && m.Daemon.Enabled
}

// document mirrors the TOML layout; menu items are decoded flat and then
// converted into the MenuItem tree.
type document struct {
	Plugin       Info          `toml:"plugin" json:"plugin"`
	Menu         menuDoc       `toml:"menu" json:"menu"`
	Daemon       *DaemonSpec   `toml:"daemon" json:"daemon,omitempty"`
	Dependencies *Dependencies `toml:"dependencies" json:"dependencies,omitempty"`
}

type menuDoc struct {
	Label string    `toml:"label" json:"label"`
	Icon  string    `toml:"icon" json:"icon,omitempty"`
	Items []itemDoc `toml:"items" json:"items"`
}

type itemDoc struct {
	Type      string     `toml:"type" json:"type" jsonschema:"enum=action,enum=checkbox,enum=separator,enum=submenu"`
	ID        string     `toml:"id" json:"id,omitempty"`
	Label     string     `toml:"label" json:"label,omitempty"`
	Action    ActionType `toml:"action" json:"action,omitempty" jsonschema:"enum=run,enum=settings,enum=toggle-config,enum=custom"`
	Checked   bool       `toml:"checked" json:"checked,omitempty"`
	ConfigKey string     `toml:"config_key" json:"config_key,omitempty"`
	Items     []itemDoc  `toml:"items" json:"items,omitempty"`
}

// ParseManifest decodes, schema-checks and validates plugin.toml content.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest data is empty")
	}

	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}

	items, err := convertItems(doc.Menu.Items, "menu.items")
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Plugin: doc.Plugin,
		Menu: Menu{
			Label: doc.Menu.Label,
			Icon:  doc.Menu.Icon,
			Items: items,
		},
		Daemon:       doc.Daemon,
		Dependencies: doc.Dependencies,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func convertItems(docs []itemDoc, path string) ([]MenuItem, error) {
	items := make([]MenuItem, 0, len(docs))
	for i, d := range docs {
		at := fmt.Sprintf("%s[%d]", path, i)
		switch d.Type {
		case "action":
			if d.ID == "" || d.Label == "" || d.Action == "" {
				return nil, fmt.Errorf("%s: action requires id, label and action", at)
			}
			items = append(items, &Action{ID: d.ID, Label: d.Label, Action: d.Action, ConfigKey: d.ConfigKey})
		case "checkbox":
			if d.ID == "" || d.Label == "" || d.Action == "" {
				return nil, fmt.Errorf("%s: checkbox requires id, label and action", at)
			}
			items = append(items, &Checkbox{ID: d.ID, Label: d.Label, Checked: d.Checked, Action: d.Action, ConfigKey: d.ConfigKey})
		case "separator":
			items = append(items, Separator{})
		case "submenu":
			if d.ID == "" || d.Label == "" {
				return nil, fmt.Errorf("%s: submenu requires id and label", at)
			}
			children, err := convertItems(d.Items, at+".items")
			if err != nil {
				return nil, err
			}
			items = append(items, &Submenu{ID: d.ID, Label: d.Label, Items: children})
		default:
			return nil, fmt.Errorf("%s: unknown item type %q", at, d.Type)
		}
	}
	return items, nil
}

// Validate checks constraints the schema cannot express.
func (m *Manifest) Validate() error {
	if m.Plugin.Name == "" {
		return fmt.Errorf("plugin.name is required")
	}
	if _, ok := m.Plugin.SemVer(); !ok {
		slog.Warn("plugin version is not a semantic version",
			"plugin", m.Plugin.Name, "version", m.Plugin.Version)
	}
	if m.Menu.Label == "" {
		return fmt.Errorf("menu.label is required")
	}
	if m.Daemon != nil && m.Daemon.Command == "" {
		return fmt.Errorf("daemon.command is required")
	}
	if m.Dependencies != nil {
		for i, b := range m.Dependencies.Binaries {
			if b.Name == "" || b.Repo == "" || b.Pattern == "" {
				return fmt.Errorf("dependencies.binaries[%d] requires name, repo and pattern", i)
			}
		}
	}
	return nil
}
