// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package plugin

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/samber/oops"

	"github.com/qol-tools/qol-tray/pkg/errutil"
)

// DaemonStopper stops a runtime's daemon. Implemented by the process supervisor.
type DaemonStopper interface {
	Stop(rt *Runtime) error
}

// Registry holds the authoritative plugin id to Runtime map.
type Registry struct {
	dir     string
	goos    string
	stopper DaemonStopper

	mu      sync.RWMutex
	plugins map[string]*Runtime
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStopper sets the daemon stopper used by Reload and StopAll.
func WithStopper(s DaemonStopper) RegistryOption {
	return func(r *Registry) {
		r.stopper = s
	}
}

// WithPlatform overrides the GOOS value matched against manifest allow-lists.
func WithPlatform(goos string) RegistryOption {
	return func(r *Registry) {
		r.goos = goos
	}
}

// NewRegistry creates a registry reading plugins from dir.
func NewRegistry(dir string, opts ...RegistryOption) *Registry {
	r := &Registry{
		dir:     dir,
		goos:    runtime.GOOS,
		plugins: make(map[string]*Runtime),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the plugins directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Discover parses every plugin directory without touching the registry.
// Directories without a readable, valid manifest are logged and skipped;
// manifests excluding the current platform are skipped silently.
// Only failure to read the plugins directory itself is returned.
func (r *Registry) Discover(_ context.Context) (map[string]*Runtime, error) {
	found := make(map[string]*Runtime)

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("plugins directory does not exist", "dir", r.dir)
			return found, nil
		}
		return nil, oops.Code(CodePluginsDir).With("dir", r.dir).Wrapf(err, "failed to read plugins directory")
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		id := entry.Name()
		pluginDir := filepath.Join(r.dir, id)

		manifest, err := loadManifest(pluginDir)
		if err != nil {
			errutil.LogWarn(slog.Default(), "skipping plugin", ErrManifest(id, err), "dir", id)
			continue
		}

		if !manifest.Plugin.SupportsPlatform(r.goos) {
			slog.Debug("plugin does not support this platform", "plugin", id, "platform", r.goos)
			continue
		}

		found[id] = NewRuntime(id, manifest, pluginDir)
		slog.Info("loaded plugin",
			"plugin", id,
			"name", manifest.Plugin.Name,
			"version", manifest.Plugin.Version)
	}

	slog.Info("plugins discovered", "count", len(found))
	return found, nil
}

func loadManifest(pluginDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(pluginDir, ManifestFile)) //nolint:gosec // path built from ReadDir entries
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// Load discovers plugins and installs them as the registry contents.
// Runtimes already held are replaced without being stopped; use Reload when
// daemons may be running.
func (r *Registry) Load(ctx context.Context) (map[string]*Runtime, error) {
	found, err := r.Discover(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.plugins = found
	r.mu.Unlock()

	return r.Snapshot(), nil
}

// Reload stops every running daemon, then swaps in a freshly discovered map.
// Readers see either the old map or the new one, never an empty intermediate.
// On discovery failure the old runtimes stay registered with their daemons stopped.
func (r *Registry) Reload(ctx context.Context) (map[string]*Runtime, error) {
	slog.Info("reloading plugins", "dir", r.dir)
	r.StopAll()
	return r.Load(ctx)
}

// StopAll stops every runtime's daemon. Failures are logged per plugin.
func (r *Registry) StopAll() {
	if r.stopper == nil {
		return
	}
	for _, rt := range r.All() {
		if err := r.stopper.Stop(rt); err != nil {
			errutil.LogWarn(slog.Default(), "failed to stop daemon", err, "plugin", rt.ID)
		}
	}
}

// Get returns the runtime for id.
func (r *Registry) Get(id string) (*Runtime, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.plugins[id]
	return rt, ok
}

// MustGet returns the runtime for id or a PLUGIN_NOT_FOUND error.
func (r *Registry) MustGet(id string) (*Runtime, error) {
	rt, ok := r.Get(id)
	if !ok {
		return nil, ErrNotFound(id)
	}
	return rt, nil
}

// All returns the loaded runtimes sorted by id.
func (r *Registry) All() []*Runtime {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Runtime, 0, len(r.plugins))
	for _, rt := range r.plugins {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns a copy of the id to runtime map.
func (r *Registry) Snapshot() map[string]*Runtime {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Runtime, len(r.plugins))
	for id, rt := range r.plugins {
		out[id] = rt
	}
	return out
}

// Len returns the number of loaded plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}
