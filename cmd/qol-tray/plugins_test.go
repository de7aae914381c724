// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPluginsList_Table(t *testing.T) {
	env := newTestEnv(t)
	env.writePlugin(t, "demo", demoManifest)
	env.writePlugin(t, "broken", "not toml [")

	out, err := env.execute(t, "plugins", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "1.0.0")
	assert.NotContains(t, out, "broken")
}

func TestPluginsList_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.writePlugin(t, "demo", demoManifest)

	out, err := env.execute(t, "plugins", "list", "--output", "json")
	require.NoError(t, err)

	var got []PluginSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "demo", got[0].ID)
	assert.Equal(t, "Demo", got[0].Name)
	assert.Equal(t, filepath.Join(env.pluginsDir, "demo"), got[0].Path)
}

func TestPluginsList_YAML(t *testing.T) {
	env := newTestEnv(t)
	env.writePlugin(t, "demo", demoManifest)

	out, err := env.execute(t, "plugins", "list", "-o", "yaml")
	require.NoError(t, err)

	var got []PluginSummary
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "1.0.0", got[0].Version)
}

func TestPluginsList_EmptyJSONIsArray(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "plugins", "list", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestPluginsList_RejectsUnknownOutput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "plugins", "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output must be")
}

func TestPluginsValidate(t *testing.T) {
	env := newTestEnv(t)
	env.writePlugin(t, "demo", demoManifest)
	env.writePlugin(t, "broken", "[plugin]\nname = \"x\"\n")

	out, err := env.execute(t, "plugins", "validate", filepath.Join(env.pluginsDir, "demo"))
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	_, err = env.execute(t, "plugins", "validate",
		filepath.Join(env.pluginsDir, "demo"),
		filepath.Join(env.pluginsDir, "broken", "plugin.toml"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 manifests invalid")
}

func TestPluginsValidate_MissingManifest(t *testing.T) {
	env := newTestEnv(t)
	empty := filepath.Join(env.pluginsDir, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o750))

	_, err := env.execute(t, "plugins", "validate", empty)
	require.Error(t, err)
}

func TestPluginsSchema(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "plugins", "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "qol-tray Plugin Manifest", schema["title"])
}
