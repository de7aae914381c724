// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package hotkey_test

import (
	"context"
	"errors"
	"sync"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

// fakeBackend records registrations and lets tests inject events.
type fakeBackend struct {
	mu          sync.Mutex
	events      chan hotkey.Event
	reject      map[string]bool
	failCreate  bool
	registrars  int
	nextID      uint32
	live        map[uint32]hotkey.Combo
	unregisters int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		events: make(chan hotkey.Event, 8),
		reject: make(map[string]bool),
		live:   make(map[uint32]hotkey.Combo),
	}
}

func (b *fakeBackend) Events() <-chan hotkey.Event {
	return b.events
}

func (b *fakeBackend) NewRegistrar() (hotkey.Registrar, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failCreate {
		return nil, errors.New("no display")
	}
	b.registrars++
	return &fakeRegistrar{backend: b}, nil
}

func (b *fakeBackend) registrarCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registrars
}

func (b *fakeBackend) liveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

func (b *fakeBackend) idFor(combo string) (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.live {
		if c.String() == combo {
			return id, true
		}
	}
	return 0, false
}

type fakeRegistrar struct {
	backend *fakeBackend
	ids     []uint32
}

func (r *fakeRegistrar) Register(c hotkey.Combo) (uint32, error) {
	b := r.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reject[c.String()] {
		return 0, errors.New("already grabbed")
	}
	b.nextID++
	b.live[b.nextID] = c
	r.ids = append(r.ids, b.nextID)
	return b.nextID, nil
}

func (r *fakeRegistrar) UnregisterAll() error {
	b := r.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unregisters++
	for _, id := range r.ids {
		delete(b.live, id)
	}
	r.ids = nil
	return nil
}

type launch struct {
	pluginID string
	action   string
}

type fakeLauncher struct {
	mu       sync.Mutex
	launches []launch
	err      error
}

func (l *fakeLauncher) Launch(_ context.Context, pluginID, action string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches = append(l.launches, launch{pluginID, action})
	return l.err
}

func (l *fakeLauncher) all() []launch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]launch(nil), l.launches...)
}

// memorySource serves a mutable in-memory config.
type memorySource struct {
	mu  sync.Mutex
	cfg *hotkey.Config
	err error
}

func (s *memorySource) Load() (*hotkey.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	cp := &hotkey.Config{Hotkeys: append([]hotkey.Binding(nil), s.cfg.Hotkeys...)}
	return cp, nil
}

func (s *memorySource) set(cfg *hotkey.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}
