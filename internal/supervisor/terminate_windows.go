// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

//go:build windows

package supervisor

import (
	"os"
)

// Windows has no deliverable SIGTERM for console-less children.
func terminate(p *os.Process) error {
	return p.Kill()
}
