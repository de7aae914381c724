// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/qol-tools/qol-tray/internal/config"
	"github.com/qol-tools/qol-tray/internal/events"
	"github.com/qol-tools/qol-tray/internal/host"
	"github.com/qol-tools/qol-tray/internal/hotkey"
	"github.com/qol-tools/qol-tray/internal/hotkey/native"
	"github.com/qol-tools/qol-tray/internal/logging"
	"github.com/qol-tools/qol-tray/internal/observability"
	"github.com/qol-tools/qol-tray/internal/plugin"
	"github.com/qol-tools/qol-tray/internal/router"
	"github.com/qol-tools/qol-tray/internal/supervisor"
	"github.com/qol-tools/qol-tray/internal/update"
	"github.com/qol-tools/qol-tray/pkg/errutil"
)

const serviceName = "qol-tray"

// ObservabilityServer is the metrics and health server used by run.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// RunDeps contains injectable dependencies for the run command.
// All fields with nil values will use their default implementations.
type RunDeps struct {
	// BackendFactory creates the global hotkey backend.
	// Default: native.New
	BackendFactory func() (hotkey.Backend, error)

	// ObservabilityServerFactory creates the metrics server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker) ObservabilityServer

	// URLOpener opens plugin settings pages.
	// Default: browser.OpenURL
	URLOpener host.URLOpener

	// Events supplies newline-separated event ids to dispatch.
	// Default: none; stdin with --events-from-stdin
	Events io.Reader

	// Ready is called once plugins are loaded and the loops are running.
	Ready func(h *host.Host)
}

// runConfig holds flags local to the run command.
type runConfig struct {
	eventsFromStdin bool
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	rc := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the tray host",
		Long: `Load plugins, start their daemons, register global hotkeys and
dispatch menu events until interrupted or until "__quit__" is dispatched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			deps := &RunDeps{}
			if rc.eventsFromStdin {
				deps.Events = cmd.InOrStdin()
			}
			return runWithDeps(cmd.Context(), cfg, deps)
		},
	}

	cmd.Flags().BoolVar(&rc.eventsFromStdin, "events-from-stdin", false, "dispatch event ids read line by line from stdin")

	return cmd
}

// runWithDeps runs the host with injectable dependencies.
// If deps is nil, default implementations are used.
func runWithDeps(ctx context.Context, cfg *config.Config, deps *RunDeps) error {
	if deps == nil {
		deps = &RunDeps{}
	}
	if deps.BackendFactory == nil {
		deps.BackendFactory = func() (hotkey.Backend, error) {
			return native.New()
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, ready)
		}
	}
	if deps.URLOpener == nil {
		deps.URLOpener = browser.OpenURL
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logging.SetDefault(serviceName, version, cfg.LogFormat, cfg.LogLevel)
	slog.Info("starting qol-tray",
		"version", version,
		"plugins_dir", cfg.PluginsDir,
		"config_dir", cfg.ConfigDir,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		h       *host.Host
		metrics *observability.Metrics
		obs     ObservabilityServer
	)
	if cfg.MetricsAddr != "" {
		obs = deps.ObservabilityServerFactory(cfg.MetricsAddr, func() bool {
			return h != nil && h.Ready()
		})
		metrics = obs.Metrics()
	}

	bus := events.NewBus(events.WithCapacity(cfg.EventCapacity), events.WithMetrics(metrics))
	sup := supervisor.New(
		supervisor.WithGracePeriod(cfg.DaemonGracePeriod),
		supervisor.WithStopTimeout(cfg.DaemonStopTimeout),
		supervisor.WithStopPoll(cfg.DaemonStopPoll),
		supervisor.WithOrphanWait(cfg.OrphanWait),
		supervisor.WithPIDFile(cfg.PIDFilePath()),
		supervisor.WithMetrics(metrics),
	)
	registry := plugin.NewRegistry(cfg.PluginsDir, plugin.WithStopper(sup))
	launcher := plugin.NewScriptLauncher(registry)
	store := hotkey.NewStore(cfg.HotkeysPath())

	hostOpts := []host.Option{
		host.WithLauncher(launcher),
		host.WithHotkeys(store),
		host.WithURLOpener(deps.URLOpener),
		host.WithUIBaseURL(cfg.UIBaseURL),
		host.WithMetrics(metrics),
	}
	if notice, err := update.NewNotice(version); err == nil {
		hostOpts = append(hostOpts, host.WithNotice(notice))
	} else {
		slog.Debug("update notices disabled", "version", version)
	}

	var dispatcher *hotkey.Dispatcher
	backend, err := deps.BackendFactory()
	if err != nil {
		errutil.LogWarn(slog.Default(), "global hotkeys unavailable", err)
	} else {
		dispatcher = hotkey.NewDispatcher(backend, launcher, store,
			hotkey.WithPollInterval(cfg.HotkeyPollInterval),
			hotkey.WithMetrics(metrics),
			hotkey.WithReloadHook(func(active int) {
				if h != nil {
					h.HotkeysReloaded(active)
				}
			}),
		)
		hostOpts = append(hostOpts, host.WithHotkeyReloader(dispatcher))
	}

	h = host.New(registry, sup, bus, hostOpts...)

	if obs != nil {
		obsErrs, err := obs.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		defer stopObservability(obs)
		go monitorServerErrors(ctx, cancel, obsErrs, "observability")
		slog.Info("observability server started", "addr", obs.Addr())
	}

	if err := h.Start(ctx); err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}
	defer h.Shutdown()

	if cfg.UpdateAvailable != "" {
		if _, err := h.OfferUpdate(cfg.UpdateAvailable); err != nil {
			errutil.LogWarn(slog.Default(), "ignoring update version", err, "version", cfg.UpdateAvailable)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	sub := bus.Subscribe()
	g.Go(func() error {
		defer sub.Close()
		logEvents(gctx, sub)
		return nil
	})

	if dispatcher != nil {
		g.Go(func() error {
			if err := dispatcher.Run(gctx); err != nil {
				errutil.LogWarn(slog.Default(), "global hotkeys disabled", err)
			}
			return nil
		})
		if cfg.HotkeyWatch {
			watcher := hotkey.NewWatcher(store.Path(), dispatcher)
			g.Go(func() error {
				if err := watcher.Run(gctx); err != nil {
					errutil.LogWarn(slog.Default(), "hotkey config watcher stopped", err)
				}
				return nil
			})
		}
	}

	if deps.Events != nil {
		lines := readLines(gctx, deps.Events)
		g.Go(func() error {
			return dispatchLines(gctx, h, lines, cancel)
		})
	}

	slog.Info("qol-tray ready", "plugins", h.Registry().Len())
	if deps.Ready != nil {
		deps.Ready(h)
	}

	<-gctx.Done()
	slog.Info("shutting down...")
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

// readLines feeds trimmed, non-empty lines from r into the returned channel
// until r is exhausted or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Warn("event input failed", "error", err)
		}
	}()
	return out
}

// dispatchLines routes each event id until the input ends, the context is
// cancelled, or a handler asks to quit.
func dispatchLines(ctx context.Context, h *host.Host, lines <-chan string, quit context.CancelFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-lines:
			if !ok {
				return nil
			}
			result, err := h.Dispatch(id)
			if err != nil {
				errutil.LogWarn(slog.Default(), "event handler failed", err, "event_id", id)
			}
			if result == router.Quit {
				slog.Info("quit requested", "event_id", id)
				quit()
				return nil
			}
		}
	}
}

// logEvents writes lifecycle events to the log until ctx is done.
func logEvents(ctx context.Context, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-sub.C():
			slog.Debug("lifecycle event",
				"type", e.Type,
				"plugin", e.Plugin,
				"count", e.Count,
				"error", e.Error,
			)
		}
	}
}

// monitorServerErrors cancels the run when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errs <-chan error, name string) {
	select {
	case <-ctx.Done():
	case err, ok := <-errs:
		if ok && err != nil {
			slog.Error("server failed", "server", name, "error", err)
			cancel()
		}
	}
}

func stopObservability(obs ObservabilityServer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := obs.Stop(ctx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}
}
