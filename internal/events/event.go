// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package events announces plugin lifecycle changes to any number of observers.
package events

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Type identifies the kind of lifecycle event.
type Type string

// Lifecycle event types. The string values are the wire form of the "type" field.
const (
	TypePluginsChanged    Type = "plugins_changed"
	TypeDiscoveryStarted  Type = "discovery_started"
	TypeDiscoveryComplete Type = "discovery_complete"
	TypeDaemonFailed      Type = "daemon_failed"
	TypeHotkeysReloaded   Type = "hotkeys_reloaded"
	TypeUpdateRequested   Type = "update_requested"
)

// PluginInfo describes a plugin in discovery results.
type PluginInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Event is a lifecycle notification. Which payload fields are set depends on Type.
type Event struct {
	ID      ulid.ULID    `json:"id"`
	Type    Type         `json:"type"`
	Time    time.Time    `json:"time"`
	Plugins []PluginInfo `json:"plugins,omitempty"`
	Plugin  string       `json:"plugin,omitempty"`
	Error   string       `json:"error,omitempty"`
	Count   int          `json:"count,omitempty"`
	Version string       `json:"version,omitempty"`
}

func newEvent(t Type) Event {
	return Event{ID: ulid.Make(), Type: t, Time: time.Now().UTC()}
}

// PluginsChanged announces that the loaded plugin set was replaced.
func PluginsChanged() Event {
	return newEvent(TypePluginsChanged)
}

// DiscoveryStarted announces that a plugin discovery pass began.
func DiscoveryStarted() Event {
	return newEvent(TypeDiscoveryStarted)
}

// DiscoveryComplete carries the plugins found by a discovery pass.
// A nil slice is normalized to empty so observers always see a list.
func DiscoveryComplete(plugins []PluginInfo) Event {
	e := newEvent(TypeDiscoveryComplete)
	if plugins == nil {
		plugins = []PluginInfo{}
	}
	e.Plugins = plugins
	return e
}

// DaemonFailed reports a daemon that could not be started or crashed at startup.
func DaemonFailed(plugin string, err error) Event {
	e := newEvent(TypeDaemonFailed)
	e.Plugin = plugin
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// HotkeysReloaded reports the number of active bindings after a reload.
func HotkeysReloaded(count int) Event {
	e := newEvent(TypeHotkeysReloaded)
	e.Count = count
	return e
}

// UpdateRequested reports that the user picked the update menu entry.
func UpdateRequested(version string) Event {
	e := newEvent(TypeUpdateRequested)
	e.Version = version
	return e
}
