// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package supervisor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qol-tools/qol-tray/internal/plugin"
)

const (
	crashScript = "#!/bin/sh\necho boom >&2\nexit 3\n"
	cleanScript = "#!/bin/sh\nexit 0\n"
	sleepScript = "#!/bin/sh\nexec sleep 30\n"
	// forkingCrashScript leaves a child holding stderr after it exits.
	forkingCrashScript = "#!/bin/sh\necho boom >&2\nsleep 2 &\nexit 3\n"
	// stubbornScript ignores SIGTERM and signals readiness once the trap is installed.
	stubbornScript = "#!/bin/sh\ntrap '' TERM\ntouch ready\nwhile true; do sleep 0.05; done\n"
)

// daemonManifest returns a manifest whose daemon runs command.
func daemonManifest(name, command string, enabled bool) *plugin.Manifest {
	return &plugin.Manifest{
		Plugin: plugin.Info{Name: name, Description: name, Version: "1.0.0"},
		Menu:   plugin.Menu{Label: name},
		Daemon: &plugin.DaemonSpec{Enabled: enabled, Command: command},
	}
}

// writeDaemon creates a plugin directory holding an executable daemon.sh
// and returns a runtime for it.
func writeDaemon(dir, id, script string) (*plugin.Runtime, error) {
	pluginDir := filepath.Join(dir, id)
	if err := os.MkdirAll(pluginDir, 0o750); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "daemon.sh"), []byte(script), 0o700); err != nil { //nolint:gosec // test script must be executable
		return nil, err
	}
	return plugin.NewRuntime(id, daemonManifest(id, "daemon.sh", true), pluginDir), nil
}

func newDaemon(t *testing.T, script string) *plugin.Runtime {
	t.Helper()
	rt, err := writeDaemon(t.TempDir(), "daemon-plugin", script)
	require.NoError(t, err)
	return rt
}
