// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

const demoManifest = `
[plugin]
name = "Demo"
description = "Demo plugin"
version = "1.0.0"

[menu]
label = "Demo"

[[menu.items]]
type = "action"
id = "go"
label = "Go"
action = "run"

[[menu.items]]
type = "checkbox"
id = "loud"
label = "Loud"
checked = true
action = "toggle-config"
config_key = "sound.loud"
`

// testEnv isolates a command run in a temporary config directory.
type testEnv struct {
	configDir  string
	pluginsDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)
	env := &testEnv{
		configDir:  filepath.Join(root, "qol-tray"),
		pluginsDir: filepath.Join(root, "qol-tray", "plugins"),
	}
	require.NoError(t, os.MkdirAll(env.pluginsDir, 0o750))
	return env
}

func (e *testEnv) writePlugin(t *testing.T, id, manifest string) {
	t.Helper()
	dir := filepath.Join(e.pluginsDir, id)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.toml"), []byte(manifest), 0o600))
}

// execute runs the root command with args and returns stdout.
func (e *testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--log-format", "text"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// acceptingBackend registers every combo and never fires.
type acceptingBackend struct {
	mu     sync.Mutex
	nextID uint32
	events chan hotkey.Event
}

func newAcceptingBackend() *acceptingBackend {
	return &acceptingBackend{events: make(chan hotkey.Event)}
}

func (b *acceptingBackend) NewRegistrar() (hotkey.Registrar, error) {
	return &acceptingRegistrar{backend: b}, nil
}

func (b *acceptingBackend) Events() <-chan hotkey.Event {
	return b.events
}

type acceptingRegistrar struct {
	backend *acceptingBackend
}

func (r *acceptingRegistrar) Register(hotkey.Combo) (uint32, error) {
	r.backend.mu.Lock()
	defer r.backend.mu.Unlock()
	r.backend.nextID++
	return r.backend.nextID, nil
}

func (r *acceptingRegistrar) UnregisterAll() error {
	return nil
}
