// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package plugin_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qol-tools/qol-tray/internal/plugin"
	"github.com/qol-tools/qol-tray/pkg/errutil"
)

type recordingStopper struct {
	mu      sync.Mutex
	stopped []string
	err     error
}

func (s *recordingStopper) Stop(rt *plugin.Runtime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = append(s.stopped, rt.ID)
	rt.DetachDaemon()
	return s.err
}

type fakeHandle int

func (h fakeHandle) Pid() int { return int(h) }

func TestRegistry_Load(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "recorder", validManifest)
	writePlugin(t, dir, "tiny", minimalManifest("Tiny"))

	reg := plugin.NewRegistry(dir, plugin.WithPlatform("linux"))
	loaded, err := reg.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, loaded, 2)
	assert.Equal(t, filepath.Join(dir, "recorder"), loaded["recorder"].Dir)
	assert.Equal(t, "Tiny", loaded["tiny"].Manifest.Plugin.Name)
	assert.Equal(t, 2, reg.Len())

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "recorder", all[0].ID)
	assert.Equal(t, "tiny", all[1].ID)
}

func TestRegistry_Load_SkipsInvalidPlugins(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "valid", minimalManifest("Valid"))
	writePlugin(t, dir, "broken", "[plugin\nname=")
	writePlugin(t, dir, "incomplete", `[plugin]
name = "x"
`)
	mkdirAll(t, filepath.Join(dir, "no-manifest"))
	writeFile(t, filepath.Join(dir, "stray-file.txt"), "not a plugin")

	reg := plugin.NewRegistry(dir)
	loaded, err := reg.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, loaded, 1)
	_, ok := loaded["valid"]
	assert.True(t, ok)
}

func TestRegistry_Load_FiltersPlatform(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "recorder", validManifest)

	reg := plugin.NewRegistry(dir, plugin.WithPlatform("windows"))
	loaded, err := reg.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)

	reg = plugin.NewRegistry(dir, plugin.WithPlatform("darwin"))
	loaded, err = reg.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestRegistry_Load_MissingDirectory(t *testing.T) {
	reg := plugin.NewRegistry(filepath.Join(t.TempDir(), "absent"))
	loaded, err := reg.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRegistry_Load_UnreadableDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plugins")
	writeFile(t, file, "")

	reg := plugin.NewRegistry(file)
	_, err := reg.Load(context.Background())
	require.Error(t, err)
	errutil.RequireCode(t, err, plugin.CodePluginsDir)
}

func TestRegistry_Reload_StopsDaemonsAndSwaps(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "alpha", minimalManifest("Alpha"))
	writePlugin(t, dir, "beta", minimalManifest("Beta"))

	stopper := &recordingStopper{}
	reg := plugin.NewRegistry(dir, plugin.WithStopper(stopper))
	_, err := reg.Load(context.Background())
	require.NoError(t, err)

	alpha, ok := reg.Get("alpha")
	require.True(t, ok)
	alpha.AttachDaemon(fakeHandle(1234))

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "beta")))
	writePlugin(t, dir, "gamma", minimalManifest("Gamma"))

	loaded, err := reg.Reload(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alpha", "beta"}, stopper.stopped)
	assert.Nil(t, alpha.Daemon())
	assert.Len(t, loaded, 2)

	_, ok = reg.Get("beta")
	assert.False(t, ok)
	newAlpha, ok := reg.Get("alpha")
	require.True(t, ok)
	assert.NotSame(t, alpha, newAlpha)
	_, ok = reg.Get("gamma")
	assert.True(t, ok)
}

func TestRegistry_Reload_ContinuesPastStopErrors(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "alpha", minimalManifest("Alpha"))

	stopper := &recordingStopper{err: errors.New("stuck")}
	reg := plugin.NewRegistry(dir, plugin.WithStopper(stopper))
	_, err := reg.Load(context.Background())
	require.NoError(t, err)

	loaded, err := reg.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, []string{"alpha"}, stopper.stopped)
}

func TestRegistry_MustGet(t *testing.T) {
	reg := plugin.NewRegistry(t.TempDir())

	_, err := reg.MustGet("ghost")
	require.Error(t, err)
	oopsErr := errutil.RequireCode(t, err, plugin.CodePluginNotFound)
	assert.Equal(t, "ghost", oopsErr.Context()["plugin"])
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "alpha", minimalManifest("Alpha"))

	reg := plugin.NewRegistry(dir)
	_, err := reg.Load(context.Background())
	require.NoError(t, err)

	snap := reg.Snapshot()
	delete(snap, "alpha")
	assert.Equal(t, 1, reg.Len())
}
