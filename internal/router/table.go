// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package router

import (
	"log/slog"
	"sync/atomic"
)

// Table publishes the current Router. Swaps are atomic, so a concurrent
// Route sees either the complete old router or the complete new one.
type Table struct {
	current atomic.Pointer[Router]
}

// Swap installs r and returns the previous router, if any.
func (t *Table) Swap(r *Router) *Router {
	return t.current.Swap(r)
}

// Current returns the installed router, or nil before the first Swap.
func (t *Table) Current() *Router {
	return t.current.Load()
}

// Route dispatches through the installed router.
func (t *Table) Route(eventID string) (Result, error) {
	r := t.current.Load()
	if r == nil {
		slog.Warn("event received before routes were built", "event_id", eventID)
		return Continue, nil
	}
	return r.Route(eventID)
}
