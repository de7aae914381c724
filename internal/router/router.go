// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package router dispatches menu and hotkey event ids to handlers through an
// ordered, immutable route table.
package router

import (
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/qol-tools/qol-tray/internal/observability"
	"github.com/qol-tools/qol-tray/pkg/errutil"
)

// CodeRouteMiss marks an event id no route matched.
const CodeRouteMiss = "ROUTE_MISS"

// Fixed event ids.
const (
	QuitID   = "__quit__"
	UpdateID = "__update__"
)

// Separator joins a route prefix and a local item id.
const Separator = "::"

// Result tells the caller whether to keep running.
type Result int

// Handler results.
const (
	Continue Result = iota
	Quit
)

func (r Result) String() string {
	if r == Quit {
		return "quit"
	}
	return "continue"
}

// Handler handles a routed event id.
type Handler func(eventID string) (Result, error)

type patternKind int

const (
	exact patternKind = iota
	prefix
)

// Pattern matches event ids.
type Pattern struct {
	kind  patternKind
	value string
}

// Exact matches only the identical id.
func Exact(id string) Pattern {
	return Pattern{kind: exact, value: id}
}

// Prefix matches any id starting with p.
func Prefix(p string) Pattern {
	return Pattern{kind: prefix, value: p}
}

// Matches reports whether id satisfies the pattern.
func (p Pattern) Matches(id string) bool {
	if p.kind == exact {
		return id == p.value
	}
	return strings.HasPrefix(id, p.value)
}

func (p Pattern) String() string {
	if p.kind == exact {
		return "exact:" + p.value
	}
	return "prefix:" + p.value
}

// Route pairs a pattern with its handler.
type Route struct {
	Pattern Pattern
	Handler Handler
}

// Router holds an ordered route list. It is immutable after construction.
type Router struct {
	routes  []Route
	metrics *observability.Metrics
}

// Option configures a Router.
type Option func(*Router)

// WithMetrics records dispatch outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// New creates a router over a copy of routes.
func New(routes []Route, opts ...Option) *Router {
	r := &Router{routes: append([]Route(nil), routes...)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route invokes the handler of the first route matching eventID and returns
// its result. An id no route matches is logged and yields Continue.
func (r *Router) Route(eventID string) (Result, error) {
	for _, route := range r.routes {
		if !route.Pattern.Matches(eventID) {
			continue
		}
		res, err := route.Handler(eventID)
		if err != nil {
			r.metrics.Routed(observability.OutcomeError)
			return res, err
		}
		r.metrics.Routed(observability.OutcomeHit)
		return res, nil
	}

	r.metrics.Routed(observability.OutcomeMiss)
	errutil.LogWarn(slog.Default(), "no route for event",
		oops.Code(CodeRouteMiss).With("event_id", eventID).Errorf("no route for event %q", eventID))
	return Continue, nil
}

// Patterns returns the route patterns in order.
func (r *Router) Patterns() []Pattern {
	out := make([]Pattern, len(r.routes))
	for i, route := range r.routes {
		out[i] = route.Pattern
	}
	return out
}

// Len returns the number of routes.
func (r *Router) Len() int {
	return len(r.routes)
}

// LocalID strips a "<prefix>::" scope from a flattened event id.
func LocalID(eventID string) string {
	if _, local, ok := strings.Cut(eventID, Separator); ok {
		return local
	}
	return eventID
}

// ScopedID joins scope and local id into a flattened event id.
func ScopedID(scope, local string) string {
	return scope + Separator + local
}
