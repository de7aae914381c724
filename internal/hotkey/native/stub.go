// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

//go:build !((linux && cgo && x11) || (darwin && cgo) || windows)

package native

import (
	"runtime"

	"github.com/samber/oops"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

// Supported reports whether this build registers hotkeys with the OS.
const Supported = false

// Backend is unavailable in this build. Linux needs cgo and the x11 build
// tag; macOS needs cgo.
type Backend struct {
	events chan hotkey.Event
}

// New returns a backend whose registrar cannot be created.
func New() (*Backend, error) {
	return &Backend{events: make(chan hotkey.Event)}, nil
}

// Events implements hotkey.Backend.
func (b *Backend) Events() <-chan hotkey.Event {
	return b.events
}

// NewRegistrar implements hotkey.Backend.
func (b *Backend) NewRegistrar() (hotkey.Registrar, error) {
	return nil, oops.Code(hotkey.CodeHotkeyBackend).
		With("platform", runtime.GOOS).
		Errorf("global hotkeys are not supported in this build")
}
