// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ConfigFile is the per-plugin settings file inside the plugin directory.
const ConfigFile = "config.json"

// DaemonHandle is a live daemon process owned by a Runtime.
type DaemonHandle interface {
	Pid() int
}

// Runtime is a loaded plugin: its manifest, its directory, and at most one
// live daemon. The daemon must be stopped before the runtime is discarded.
type Runtime struct {
	ID       string
	Manifest *Manifest
	Dir      string

	mu     sync.Mutex
	daemon DaemonHandle
}

// NewRuntime creates a runtime for a plugin in dir.
func NewRuntime(id string, manifest *Manifest, dir string) *Runtime {
	return &Runtime{ID: id, Manifest: manifest, Dir: dir}
}

// Daemon returns the live daemon handle, or nil.
func (rt *Runtime) Daemon() DaemonHandle {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.daemon
}

// AttachDaemon records h as the runtime's daemon.
func (rt *Runtime) AttachDaemon(h DaemonHandle) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.daemon = h
}

// DetachDaemon removes and returns the daemon handle, or nil when none is held.
func (rt *Runtime) DetachDaemon() DaemonHandle {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	h := rt.daemon
	rt.daemon = nil
	return h
}

// ConfigPath returns the plugin's config.json path.
func (rt *Runtime) ConfigPath() string {
	return filepath.Join(rt.Dir, ConfigFile)
}

// FindItem looks up a menu item by local id.
func (rt *Runtime) FindItem(id string) (MenuItem, bool) {
	return FindItem(rt.Manifest.Menu.Items, id)
}

func (rt *Runtime) readConfig() ([]byte, error) {
	data, err := os.ReadFile(rt.ConfigPath())
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, oops.Code(CodeConfigUpdate).With("plugin", rt.ID).Wrap(err)
	}
	if !gjson.ValidBytes(data) {
		return nil, oops.Code(CodeConfigUpdate).With("plugin", rt.ID).Errorf("config.json is not valid JSON")
	}
	return data, nil
}

// UpdateConfig sets the dotted key in config.json to value, creating
// intermediate objects and the file itself as needed.
func (rt *Runtime) UpdateConfig(key string, value any) error {
	data, err := rt.readConfig()
	if err != nil {
		return err
	}

	updated, err := sjson.SetBytes(data, key, value)
	if err != nil {
		return oops.Code(CodeConfigUpdate).With("plugin", rt.ID).With("key", key).Wrap(err)
	}
	pretty := gjson.GetBytes(updated, "@pretty").Raw
	if err := os.WriteFile(rt.ConfigPath(), []byte(pretty), 0o600); err != nil {
		return oops.Code(CodeConfigUpdate).With("plugin", rt.ID).Wrap(err)
	}
	return nil
}

// ToggleConfig flips the boolean at the dotted key and returns the new value.
// A missing key counts as false.
func (rt *Runtime) ToggleConfig(key string) (bool, error) {
	data, err := rt.readConfig()
	if err != nil {
		return false, err
	}
	next := !gjson.GetBytes(data, key).Bool()
	if err := rt.UpdateConfig(key, next); err != nil {
		return false, err
	}
	return next, nil
}

// ConfigValue reads the dotted key from config.json.
func (rt *Runtime) ConfigValue(key string) (gjson.Result, error) {
	data, err := rt.readConfig()
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.GetBytes(data, key), nil
}
