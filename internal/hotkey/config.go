// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package hotkey

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Binding maps a key combination to a plugin action.
type Binding struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	PluginID string `json:"plugin_id"`
	Action   string `json:"action"`
	Enabled  bool   `json:"enabled"`
}

// Config is the persisted hotkey configuration.
type Config struct {
	Hotkeys []Binding `json:"hotkeys"`
}

// Enabled returns the bindings with Enabled set.
func (c *Config) Enabled() []Binding {
	var out []Binding
	for _, b := range c.Hotkeys {
		if b.Enabled {
			out = append(out, b)
		}
	}
	return out
}

// Find returns the binding with id.
func (c *Config) Find(id string) (*Binding, bool) {
	for i := range c.Hotkeys {
		if c.Hotkeys[i].ID == id {
			return &c.Hotkeys[i], true
		}
	}
	return nil, false
}

// Add validates b's key, assigns an id when empty, and appends it.
func (c *Config) Add(b Binding) (Binding, error) {
	if _, err := ParseCombo(b.Key); err != nil {
		return Binding{}, err
	}
	if b.PluginID == "" || b.Action == "" {
		return Binding{}, oops.Code(CodeHotkeyConfig).
			With("key", b.Key).
			Errorf("binding requires plugin_id and action")
	}
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	if _, dup := c.Find(b.ID); dup {
		return Binding{}, oops.Code(CodeHotkeyConfig).
			With("binding", b.ID).
			Errorf("binding %s already exists", b.ID)
	}
	c.Hotkeys = append(c.Hotkeys, b)
	return b, nil
}

// Remove deletes the binding with id.
func (c *Config) Remove(id string) error {
	for i := range c.Hotkeys {
		if c.Hotkeys[i].ID == id {
			c.Hotkeys = append(c.Hotkeys[:i], c.Hotkeys[i+1:]...)
			return nil
		}
	}
	return errBindingMissing(id)
}

// SetEnabled toggles the binding with id.
func (c *Config) SetEnabled(id string, enabled bool) error {
	b, ok := c.Find(id)
	if !ok {
		return errBindingMissing(id)
	}
	b.Enabled = enabled
	return nil
}

// AcceleratorFor returns the canonical combo of the first enabled,
// parseable binding for pluginID and action.
func (c *Config) AcceleratorFor(pluginID, action string) (string, bool) {
	for _, b := range c.Hotkeys {
		if !b.Enabled || b.PluginID != pluginID || b.Action != action {
			continue
		}
		combo, err := ParseCombo(b.Key)
		if err != nil {
			continue
		}
		return combo.String(), true
	}
	return "", false
}

func errBindingMissing(id string) error {
	return oops.Code(CodeBindingMissing).
		With("binding", id).
		Errorf("hotkey binding not found: %s", id)
}

// Store reads and writes the hotkey configuration file.
type Store struct {
	path string
}

// NewStore creates a store for the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the config file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration. A missing or empty file yields an empty
// config. Both {"hotkeys": [...]} and a bare array are accepted.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, oops.Code(CodeHotkeyConfig).With("path", s.path).Wrapf(err, "failed to read hotkey config")
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Config{}, nil
	}

	cfg := &Config{}
	if data[0] == '[' {
		err = json.Unmarshal(data, &cfg.Hotkeys)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, oops.Code(CodeHotkeyConfig).With("path", s.path).Wrapf(err, "invalid hotkey config")
	}
	return cfg, nil
}

// Save writes cfg atomically through a temp file and rename.
func (s *Store) Save(cfg *Config) error {
	if cfg.Hotkeys == nil {
		cfg = &Config{Hotkeys: []Binding{}}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return oops.Code(CodeHotkeyConfig).Wrap(err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return oops.Code(CodeHotkeyConfig).With("path", s.path).Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, ".hotkeys-*.json")
	if err != nil {
		return oops.Code(CodeHotkeyConfig).With("path", s.path).Wrap(err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return oops.Code(CodeHotkeyConfig).With("path", s.path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.Code(CodeHotkeyConfig).With("path", s.path).Wrap(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return oops.Code(CodeHotkeyConfig).With("path", s.path).Wrapf(err, "failed to save hotkey config")
	}
	return nil
}

// Update loads the config, applies fn, and saves the result when fn succeeds.
func (s *Store) Update(fn func(*Config) error) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return s.Save(cfg)
}
