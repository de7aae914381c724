// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package host coordinates the plugin registry, daemon supervisor, event
// router and event bus behind one lifecycle.
package host

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pkg/browser"
	"github.com/samber/oops"

	"github.com/qol-tools/qol-tray/internal/events"
	"github.com/qol-tools/qol-tray/internal/hotkey"
	"github.com/qol-tools/qol-tray/internal/observability"
	"github.com/qol-tools/qol-tray/internal/plugin"
	"github.com/qol-tools/qol-tray/internal/router"
	"github.com/qol-tools/qol-tray/internal/supervisor"
	"github.com/qol-tools/qol-tray/internal/update"
	"github.com/qol-tools/qol-tray/pkg/errutil"
)

// DefaultUIBaseURL is where the plugin settings UI is served.
const DefaultUIBaseURL = "http://127.0.0.1:42700"

// ActionLauncher runs a plugin's script for a menu item.
type ActionLauncher interface {
	LaunchIn(ctx context.Context, rt *plugin.Runtime, action string) error
}

// URLOpener opens a URL in the user's browser.
type URLOpener func(url string) error

// Host owns the plugin lifecycle. Registry and daemon mutation is
// serialized behind one lock; routing reads an atomically swapped table.
type Host struct {
	mu sync.Mutex

	registry   *plugin.Registry
	supervisor *supervisor.Supervisor
	bus        *events.Bus

	launcher  ActionLauncher
	hotkeys   hotkey.ConfigSource
	reloader  hotkey.Reloader
	notice    *update.Notice
	openURL   URLOpener
	uiBaseURL string
	metrics   *observability.Metrics

	features *router.Features
	table    router.Table

	buildMu sync.Mutex
	menu    atomic.Pointer[router.Menu]
	ready   atomic.Bool
}

// Option configures a Host.
type Option func(*Host)

// WithLauncher replaces the script launcher used for run and custom actions.
func WithLauncher(l ActionLauncher) Option {
	return func(h *Host) {
		h.launcher = l
	}
}

// WithHotkeys supplies the binding source used to decorate menu entries.
func WithHotkeys(src hotkey.ConfigSource) Option {
	return func(h *Host) {
		h.hotkeys = src
	}
}

// WithHotkeyReloader sets the target of the "reload hotkeys" control.
func WithHotkeyReloader(r hotkey.Reloader) Option {
	return func(h *Host) {
		h.reloader = r
	}
}

// WithNotice enables the update entry once the notice holds a newer version.
func WithNotice(n *update.Notice) Option {
	return func(h *Host) {
		h.notice = n
	}
}

// WithURLOpener replaces the browser launcher.
func WithURLOpener(open URLOpener) Option {
	return func(h *Host) {
		h.openURL = open
	}
}

// WithUIBaseURL sets the settings UI base URL.
func WithUIBaseURL(base string) Option {
	return func(h *Host) {
		h.uiBaseURL = base
	}
}

// WithMetrics records routing metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// New creates a Host. The registry should stop daemons through sup.
func New(registry *plugin.Registry, sup *supervisor.Supervisor, bus *events.Bus, opts ...Option) *Host {
	h := &Host{
		registry:   registry,
		supervisor: sup,
		bus:        bus,
		launcher:   plugin.NewScriptLauncher(registry),
		openURL:    browser.OpenURL,
		uiBaseURL:  DefaultUIBaseURL,
		features:   &router.Features{},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.features.Register(&controls{host: h})
	return h
}

// Start recovers orphans, loads plugins, starts their daemons and builds
// the initial routes.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx, h.registry.Load)
}

// Reload stops every daemon, reloads manifests, and starts the new
// generation.
func (h *Host) Reload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	slog.Info("reloading plugins")
	return h.load(ctx, h.registry.Reload)
}

func (h *Host) load(ctx context.Context, discover func(context.Context) (map[string]*plugin.Runtime, error)) error {
	h.bus.Publish(events.DiscoveryStarted())

	if _, err := discover(ctx); err != nil {
		return oops.Wrapf(err, "load plugins")
	}
	runtimes := h.registry.All()

	infos := make([]events.PluginInfo, 0, len(runtimes))
	for _, rt := range runtimes {
		infos = append(infos, events.PluginInfo{ID: rt.ID, Name: rt.Manifest.Plugin.Name, Path: rt.Dir})
	}
	h.bus.Publish(events.DiscoveryComplete(infos))

	if err := h.supervisor.RecoverOrphans(ctx); err != nil {
		errutil.LogWarn(slog.Default(), "orphan recovery failed", err)
	}

	for id, err := range h.supervisor.StartAll(ctx, runtimes) {
		errutil.LogWarn(slog.Default(), "daemon failed to start", err, "plugin", id)
		h.bus.Publish(events.DaemonFailed(id, err))
	}

	if err := h.supervisor.PersistPIDs(supervisor.RunningPIDs(runtimes)); err != nil {
		errutil.LogWarn(slog.Default(), "failed to persist daemon pids", err)
	}

	h.RebuildMenu()
	h.ready.Store(true)
	h.bus.Publish(events.PluginsChanged())
	slog.Info("plugins loaded", "count", len(runtimes))
	return nil
}

// Shutdown stops every daemon and removes the orphan registry.
func (h *Host) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ready.Store(false)
	h.registry.StopAll()
	if err := h.supervisor.RemovePIDFile(); err != nil {
		errutil.LogWarn(slog.Default(), "failed to remove daemon pid file", err)
	}
	slog.Info("host stopped")
}

// RebuildMenu rebuilds the menu and swaps in a fresh router.
func (h *Host) RebuildMenu() {
	h.buildMu.Lock()
	defer h.buildMu.Unlock()

	builder := router.Builder{
		Plugins:       h.registry.All(),
		Features:      h.features,
		Hotkeys:       h.hotkeyConfig(),
		PluginHandler: h.pluginHandler,
		Update:        h.updateEntry(),
		Options:       []router.Option{router.WithMetrics(h.metrics)},
	}
	menu, rtr := builder.Build()
	h.menu.Store(menu)
	h.table.Swap(rtr)
	slog.Debug("routes rebuilt", "routes", rtr.Len())
}

func (h *Host) hotkeyConfig() *hotkey.Config {
	if h.hotkeys == nil {
		return nil
	}
	cfg, err := h.hotkeys.Load()
	if err != nil {
		errutil.LogWarn(slog.Default(), "hotkey config unavailable for menu", err)
		return nil
	}
	return cfg
}

// Dispatch routes a menu or hotkey event id.
func (h *Host) Dispatch(eventID string) (router.Result, error) {
	return h.table.Route(eventID)
}

// Menu returns the most recently built menu, or nil before Start.
func (h *Host) Menu() *router.Menu {
	return h.menu.Load()
}

// Ready reports whether the initial load completed.
func (h *Host) Ready() bool {
	return h.ready.Load()
}

// Registry returns the plugin registry.
func (h *Host) Registry() *plugin.Registry {
	return h.registry
}

// Features returns the feature registry; providers added after Start
// appear on the next rebuild.
func (h *Host) Features() *router.Features {
	return h.features
}

// HotkeysReloaded announces a completed hotkey registration and refreshes
// menu accelerators. It is safe to call from the dispatcher loop.
func (h *Host) HotkeysReloaded(active int) {
	h.bus.Publish(events.HotkeysReloaded(active))
	h.RebuildMenu()
}

// OfferUpdate records an available version and rebuilds the menu when it
// is newer than anything seen before.
func (h *Host) OfferUpdate(version string) (bool, error) {
	if h.notice == nil {
		return false, nil
	}
	newer, err := h.notice.Offer(version)
	if err != nil || !newer {
		return false, err
	}
	slog.Info("update available", "current", h.notice.Current(), "latest", version)
	h.RebuildMenu()
	return true, nil
}

func (h *Host) updateEntry() *router.UpdateEntry {
	version, ok := h.notice.Available()
	if !ok {
		return nil
	}
	return &router.UpdateEntry{
		Label: h.notice.Label(),
		Handler: func(string) (router.Result, error) {
			slog.Info("update requested", "version", version)
			h.bus.Publish(events.UpdateRequested(version))
			return router.Continue, nil
		},
	}
}
