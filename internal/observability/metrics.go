// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Daemon failure reasons used as the "reason" label.
const (
	ReasonSpawn = "spawn"
	ReasonCrash = "crash"
	ReasonStop  = "stop"
)

// Route outcomes used as the "outcome" label.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Metrics holds the tray host's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	DaemonsRunning    prometheus.Gauge
	DaemonFailures    *prometheus.CounterVec
	DaemonsForceKill  prometheus.Counter
	OrphansReaped     prometheus.Counter
	HotkeysRegistered prometheus.Gauge
	HotkeysSkipped    *prometheus.CounterVec
	HotkeyPresses     prometheus.Counter
	RoutesDispatched  *prometheus.CounterVec
	EventsPublished   prometheus.Counter
	EventsDropped     prometheus.Counter
}

// NewMetrics creates and registers the tray host metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DaemonsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qoltray_daemons_running",
			Help: "Number of plugin daemons currently supervised",
		}),
		DaemonFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qoltray_daemon_failures_total",
			Help: "Plugin daemon failures by reason",
		}, []string{"reason"}),
		DaemonsForceKill: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qoltray_daemon_force_kills_total",
			Help: "Daemons that ignored graceful termination and were killed",
		}),
		OrphansReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qoltray_orphans_reaped_total",
			Help: "Daemons left by a previous run that were terminated at startup",
		}),
		HotkeysRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qoltray_hotkeys_registered",
			Help: "Number of active global hotkey registrations",
		}),
		HotkeysSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qoltray_hotkeys_skipped_total",
			Help: "Hotkey bindings skipped during registration by reason",
		}, []string{"reason"}),
		HotkeyPresses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qoltray_hotkey_presses_total",
			Help: "Hotkey presses that resolved to a plugin action",
		}),
		RoutesDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qoltray_routes_dispatched_total",
			Help: "Menu and hotkey event ids routed, by outcome",
		}, []string{"outcome"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qoltray_events_published_total",
			Help: "Lifecycle events published on the event bus",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qoltray_events_dropped_total",
			Help: "Lifecycle events evicted from a lagging subscriber",
		}),
	}

	reg.MustRegister(
		m.DaemonsRunning,
		m.DaemonFailures,
		m.DaemonsForceKill,
		m.OrphansReaped,
		m.HotkeysRegistered,
		m.HotkeysSkipped,
		m.HotkeyPresses,
		m.RoutesDispatched,
		m.EventsPublished,
		m.EventsDropped,
	)
	return m
}

// DaemonStarted records a daemon that survived its grace period.
func (m *Metrics) DaemonStarted() {
	if m == nil {
		return
	}
	m.DaemonsRunning.Inc()
}

// DaemonStopped records a supervised daemon being reaped.
func (m *Metrics) DaemonStopped(forced bool) {
	if m == nil {
		return
	}
	m.DaemonsRunning.Dec()
	if forced {
		m.DaemonsForceKill.Inc()
	}
}

// DaemonFailed records a daemon failure for reason.
func (m *Metrics) DaemonFailed(reason string) {
	if m == nil {
		return
	}
	m.DaemonFailures.WithLabelValues(reason).Inc()
}

// OrphanReaped records one orphan terminated during recovery.
func (m *Metrics) OrphanReaped() {
	if m == nil {
		return
	}
	m.OrphansReaped.Inc()
}

// HotkeysActive sets the number of live hotkey registrations.
func (m *Metrics) HotkeysActive(n int) {
	if m == nil {
		return
	}
	m.HotkeysRegistered.Set(float64(n))
}

// HotkeySkipped records a binding skipped during registration.
func (m *Metrics) HotkeySkipped(reason string) {
	if m == nil {
		return
	}
	m.HotkeysSkipped.WithLabelValues(reason).Inc()
}

// HotkeyPressed records a hotkey press that resolved to an action.
func (m *Metrics) HotkeyPressed() {
	if m == nil {
		return
	}
	m.HotkeyPresses.Inc()
}

// Routed records a router dispatch outcome.
func (m *Metrics) Routed(outcome string) {
	if m == nil {
		return
	}
	m.RoutesDispatched.WithLabelValues(outcome).Inc()
}

// EventPublished records one bus publish.
func (m *Metrics) EventPublished() {
	if m == nil {
		return
	}
	m.EventsPublished.Inc()
}

// EventDropped records one event evicted from a lagging subscriber.
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}
