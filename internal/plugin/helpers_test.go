// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package plugin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validManifest = `
[plugin]
name = "Screen Recorder"
description = "Record the screen"
version = "1.2.0"
platforms = ["linux", "macos"]

[menu]
label = "Recorder"

[[menu.items]]
type = "action"
id = "start"
label = "Start recording"
action = "run"

[[menu.items]]
type = "separator"

[[menu.items]]
type = "submenu"
id = "options"
label = "Options"

[[menu.items.items]]
type = "checkbox"
id = "audio"
label = "Record audio"
checked = true
action = "toggle-config"
config_key = "audio.enabled"

[daemon]
enabled = true
command = "./daemon.sh"
`

func minimalManifest(name string) string {
	return `
[plugin]
name = "` + name + `"
description = "test"
version = "0.1.0"

[menu]
label = "` + name + `"
items = []
`
}

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o750))
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func writePlugin(t *testing.T, pluginsDir, id, manifest string) string {
	t.Helper()
	dir := filepath.Join(pluginsDir, id)
	mkdirAll(t, dir)
	writeFile(t, filepath.Join(dir, "plugin.toml"), manifest)
	return dir
}
