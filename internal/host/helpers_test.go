// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package host_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qol-tools/qol-tray/internal/events"
	"github.com/qol-tools/qol-tray/internal/host"
	"github.com/qol-tools/qol-tray/internal/plugin"
	"github.com/qol-tools/qol-tray/internal/supervisor"
)

const notesManifest = `
[plugin]
name = "Notes"
description = "Quick notes"
version = "1.0.0"

[menu]
label = "Notes"

[[menu.items]]
type = "action"
id = "new"
label = "New note"
action = "run"

[[menu.items]]
type = "action"
id = "prefs"
label = "Preferences"
action = "settings"

[[menu.items]]
type = "submenu"
id = "view"
label = "View"

[[menu.items.items]]
type = "checkbox"
id = "dark"
label = "Dark mode"
checked = false
action = "toggle-config"
config_key = "ui.dark"

[[menu.items.items]]
type = "checkbox"
id = "unbound"
label = "Unbound"
checked = false
action = "toggle-config"
`

func simpleManifest(name string) string {
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

func daemonManifest(name string) string {
	return simpleManifest(name) + `
[daemon]
enabled = true
command = "daemon.sh"
`
}

func writePlugin(t *testing.T, pluginsDir, id, manifest string) string {
	t.Helper()
	dir := filepath.Join(pluginsDir, id)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, plugin.ManifestFile), []byte(manifest), 0o600))
	return dir
}

func writeDaemonPlugin(t *testing.T, pluginsDir, id, script string) string {
	t.Helper()
	dir := writePlugin(t, pluginsDir, id, daemonManifest(id))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "daemon.sh"), []byte(script), 0o700)) //nolint:gosec // test script must be executable
	return dir
}

type launch struct {
	plugin string
	action string
}

type fakeLauncher struct {
	mu    sync.Mutex
	calls []launch
}

func (f *fakeLauncher) LaunchIn(_ context.Context, rt *plugin.Runtime, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, launch{plugin: rt.ID, action: action})
	return nil
}

func (f *fakeLauncher) launches() []launch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]launch(nil), f.calls...)
}

type urlRecorder struct {
	mu   sync.Mutex
	urls []string
}

func (r *urlRecorder) open(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return nil
}

func (r *urlRecorder) opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

type countingReloader struct {
	mu    sync.Mutex
	count int
}

func (c *countingReloader) TriggerReload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingReloader) triggered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

type fixture struct {
	pluginsDir string
	pidFile    string
	host       *host.Host
	bus        *events.Bus
	sub        *events.Subscription
	launcher   *fakeLauncher
	opener     *urlRecorder
}

func newFixture(t *testing.T, opts ...host.Option) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		pluginsDir: filepath.Join(root, "plugins"),
		pidFile:    filepath.Join(root, "daemon-pids"),
		bus:        events.NewBus(),
		launcher:   &fakeLauncher{},
		opener:     &urlRecorder{},
	}
	require.NoError(t, os.MkdirAll(f.pluginsDir, 0o750))

	sup := supervisor.New(
		supervisor.WithPIDFile(f.pidFile),
		supervisor.WithGracePeriod(50*time.Millisecond),
		supervisor.WithStopTimeout(time.Second),
		supervisor.WithOrphanWait(200*time.Millisecond),
	)
	reg := plugin.NewRegistry(f.pluginsDir, plugin.WithStopper(sup))

	base := []host.Option{
		host.WithLauncher(f.launcher),
		host.WithURLOpener(f.opener.open),
		host.WithUIBaseURL("http://ui.test"),
	}
	f.host = host.New(reg, sup, f.bus, append(base, opts...)...)
	f.sub = f.bus.Subscribe()
	t.Cleanup(func() {
		f.host.Shutdown()
		f.sub.Close()
	})
	return f
}

// drain returns every event currently buffered on the subscription.
func (f *fixture) drain() []events.Event {
	var out []events.Event
	for {
		select {
		case e := <-f.sub.C():
			out = append(out, e)
		default:
			return out
		}
	}
}

func eventTypes(evs []events.Event) []events.Type {
	out := make([]events.Type, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Type)
	}
	return out
}
