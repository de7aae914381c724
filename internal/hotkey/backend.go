// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package hotkey

// State is a key transition reported by a backend.
type State int

// Key transitions.
const (
	Pressed State = iota
	Released
)

// Event is a hotkey transition for a registration id.
type Event struct {
	ID    uint32
	State State
}

// Backend is a source of global hotkey registrations and events.
type Backend interface {
	// NewRegistrar creates a fresh registration context.
	NewRegistrar() (Registrar, error)
	// Events delivers transitions for every registrar the backend created.
	Events() <-chan Event
}

// Registrar holds one generation of registrations. It is not safe for
// concurrent use; the dispatcher loop is its only caller.
type Registrar interface {
	// Register installs combo system-wide and returns its registration id.
	Register(c Combo) (uint32, error)
	// UnregisterAll releases every registration held.
	UnregisterAll() error
}
