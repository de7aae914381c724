// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

//go:build (linux && cgo && x11) || (darwin && cgo) || windows

package native

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	xhotkey "golang.design/x/hotkey"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

// Supported reports whether this build registers hotkeys with the OS.
const Supported = true

// eventBuffer bounds transitions queued between loop ticks.
const eventBuffer = 16

// Backend registers hotkeys with the operating system.
type Backend struct {
	events chan hotkey.Event
	nextID atomic.Uint32
}

// New creates the platform backend.
func New() (*Backend, error) {
	return &Backend{events: make(chan hotkey.Event, eventBuffer)}, nil
}

// Events implements hotkey.Backend.
func (b *Backend) Events() <-chan hotkey.Event {
	return b.events
}

// NewRegistrar implements hotkey.Backend.
func (b *Backend) NewRegistrar() (hotkey.Registrar, error) {
	return &registrar{backend: b, stop: make(chan struct{})}, nil
}

type registrar struct {
	backend  *Backend
	keys     []*xhotkey.Hotkey
	stop     chan struct{}
	stopOnce sync.Once
}

func (r *registrar) Register(c hotkey.Combo) (uint32, error) {
	key, ok := keyCodes[c.Key]
	if !ok {
		return 0, fmt.Errorf("key %s has no native code on this platform", c.Key)
	}

	hk := xhotkey.New(modifiers(c.Mods), key)
	if err := hk.Register(); err != nil {
		return 0, err
	}

	id := r.backend.nextID.Add(1)
	r.keys = append(r.keys, hk)
	go r.forward(id, hk)
	return id, nil
}

// forward relays one hotkey's transitions onto the shared event channel,
// dropping them when the loop is behind.
func (r *registrar) forward(id uint32, hk *xhotkey.Hotkey) {
	down, up := hk.Keydown(), hk.Keyup()
	for {
		var state hotkey.State
		select {
		case <-r.stop:
			return
		case _, ok := <-down:
			if !ok {
				return
			}
			state = hotkey.Pressed
		case _, ok := <-up:
			if !ok {
				return
			}
			state = hotkey.Released
		}

		select {
		case r.backend.events <- hotkey.Event{ID: id, State: state}:
		default:
		}
	}
}

func (r *registrar) UnregisterAll() error {
	r.stopOnce.Do(func() { close(r.stop) })

	var errs []error
	for _, hk := range r.keys {
		if err := hk.Unregister(); err != nil {
			errs = append(errs, err)
		}
	}
	r.keys = nil
	return errors.Join(errs...)
}
