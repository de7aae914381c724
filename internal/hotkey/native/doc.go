// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package native is the operating-system hotkey backend. On Linux the X11
// backend is only built with cgo and the x11 build tag, since the
// underlying library aborts the process at init when no display is
// reachable. Other builds get a backend whose registrar always fails.
package native
