// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package hotkey

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/qol-tools/qol-tray/internal/observability"
	"github.com/qol-tools/qol-tray/pkg/errutil"
)

// DefaultPollInterval is the dispatcher loop tick.
const DefaultPollInterval = 50 * time.Millisecond

// Skip reasons recorded in metrics.
const (
	skipParse    = "parse"
	skipRegister = "register"
)

// Action is the plugin action a hotkey triggers.
type Action struct {
	PluginID string
	Action   string
}

// Launcher runs a plugin action.
type Launcher interface {
	Launch(ctx context.Context, pluginID, action string) error
}

// ConfigSource loads the current hotkey configuration.
type ConfigSource interface {
	Load() (*Config, error)
}

// Dispatcher owns hotkey registration. Registration state is touched only
// by the goroutine running Run; other goroutines request changes with
// TriggerReload.
type Dispatcher struct {
	backend  Backend
	launcher Launcher
	source   ConfigSource
	interval time.Duration
	metrics  *observability.Metrics
	onReload func(active int)

	reload chan struct{}
	active atomic.Int64

	// Loop-owned.
	registrar Registrar
	bindings  map[uint32]Action
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPollInterval sets the loop tick.
func WithPollInterval(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.interval = d
	}
}

// WithMetrics records registration and press metrics.
func WithMetrics(m *observability.Metrics) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.metrics = m
	}
}

// WithReloadHook is called from the loop after each reload-triggered registration.
func WithReloadHook(fn func(active int)) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.onReload = fn
	}
}

// NewDispatcher creates a dispatcher in the idle state.
func NewDispatcher(backend Backend, launcher Launcher, source ConfigSource, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		backend:  backend,
		launcher: launcher,
		source:   source,
		interval: DefaultPollInterval,
		reload:   make(chan struct{}, 1),
		bindings: make(map[uint32]Action),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TriggerReload asks the loop to reload the config and re-register.
// Requests made while one is pending coalesce. Safe from any goroutine.
func (d *Dispatcher) TriggerReload() {
	select {
	case d.reload <- struct{}{}:
	default:
	}
}

// Active returns the number of live registrations. Safe from any goroutine.
func (d *Dispatcher) Active() int {
	return int(d.active.Load())
}

// Register replaces all registrations with the enabled bindings in cfg.
// Bindings that fail to parse or register are skipped with a warning.
// Only a failure to create the registration context is returned.
//
// Register must be called from the goroutine that runs Run, or before Run starts.
func (d *Dispatcher) Register(cfg *Config) error {
	d.unregisterAll()

	reg, err := d.backend.NewRegistrar()
	if err != nil {
		return oops.Code(CodeHotkeyBackend).Wrapf(err, "failed to create hotkey registration context")
	}
	d.registrar = reg

	for _, b := range cfg.Hotkeys {
		if !b.Enabled {
			continue
		}

		combo, err := ParseCombo(b.Key)
		if err != nil {
			d.metrics.HotkeySkipped(skipParse)
			errutil.LogWarn(slog.Default(), "skipping hotkey", err, "binding", b.ID)
			continue
		}

		id, err := reg.Register(combo)
		if err != nil {
			d.metrics.HotkeySkipped(skipRegister)
			errutil.LogWarn(slog.Default(), "skipping hotkey", errRegister(b.Key, b.ID, err))
			continue
		}

		d.bindings[id] = Action{PluginID: b.PluginID, Action: b.Action}
		slog.Info("registered hotkey",
			"hotkey", combo.String(),
			"plugin", b.PluginID,
			"action", b.Action)
	}

	d.active.Store(int64(len(d.bindings)))
	d.metrics.HotkeysActive(len(d.bindings))
	return nil
}

func (d *Dispatcher) unregisterAll() {
	if d.registrar != nil {
		if n := len(d.bindings); n > 0 {
			slog.Info("unregistering hotkeys", "count", n)
		}
		if err := d.registrar.UnregisterAll(); err != nil {
			errutil.LogWarn(slog.Default(), "failed to unregister hotkeys", err)
		}
	}
	d.registrar = nil
	d.bindings = make(map[uint32]Action)
	d.active.Store(0)
}

// Lookup returns the action bound to a registration id. Loop-confined like Register.
func (d *Dispatcher) Lookup(id uint32) (Action, bool) {
	a, ok := d.bindings[id]
	return a, ok
}

// Run registers the current config and polls until ctx is done, then
// releases every registration. A config that cannot be loaded at startup
// is logged and treated as empty; a registration context that cannot be
// created is returned.
func (d *Dispatcher) Run(ctx context.Context) error {
	cfg, err := d.source.Load()
	if err != nil {
		errutil.LogError(slog.Default(), "failed to load hotkey config", err)
		cfg = &Config{}
	}
	if err := d.Register(cfg); err != nil {
		return err
	}
	defer d.unregisterAll()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (d *Dispatcher) tick(ctx context.Context) error {
	select {
	case <-d.reload:
		if err := d.handleReload(); err != nil {
			return err
		}
	default:
	}

	select {
	case ev := <-d.backend.Events():
		d.handle(ctx, ev)
	default:
	}
	return nil
}

func (d *Dispatcher) handleReload() error {
	slog.Info("reloading hotkeys")
	cfg, err := d.source.Load()
	if err != nil {
		errutil.LogError(slog.Default(), "failed to reload hotkey config", err)
		return nil
	}
	if err := d.Register(cfg); err != nil {
		return err
	}
	if d.onReload != nil {
		d.onReload(d.Active())
	}
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	if ev.State != Pressed {
		return
	}
	action, ok := d.bindings[ev.ID]
	if !ok {
		slog.Debug("hotkey event for unknown registration", "id", ev.ID)
		return
	}

	d.metrics.HotkeyPressed()
	slog.Info("hotkey pressed", "plugin", action.PluginID, "action", action.Action)
	if err := d.launcher.Launch(ctx, action.PluginID, action.Action); err != nil {
		errutil.LogWarn(slog.Default(), "failed to run hotkey action", err,
			"plugin", action.PluginID,
			"action", action.Action)
	}
}
