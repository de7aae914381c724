// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package supervisor

import (
	"github.com/samber/oops"
)

// Error codes for daemon lifecycle failures.
const (
	CodeDaemonSpawn    = "DAEMON_SPAWN"
	CodeDaemonCrash    = "DAEMON_CRASH"
	CodeDaemonStop     = "DAEMON_STOP"
	CodeOrphanRegistry = "ORPHAN_REGISTRY"
)

// ErrSpawn reports a missing daemon executable or a failed spawn.
func ErrSpawn(pluginID, command string, cause error) error {
	return oops.Code(CodeDaemonSpawn).
		With("plugin", pluginID).
		With("command", command).
		Wrapf(cause, "failed to spawn daemon")
}

// ErrCrash reports a daemon that exited unsuccessfully inside the startup
// grace period. stderr holds whatever the process wrote before exiting.
func ErrCrash(pluginID string, exitCode int, stderr string) error {
	return oops.Code(CodeDaemonCrash).
		With("plugin", pluginID).
		With("exit_code", exitCode).
		With("stderr", stderr).
		Errorf("daemon exited during startup with status %d: %s", exitCode, stderr)
}
