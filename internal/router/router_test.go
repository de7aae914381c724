// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package router_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/qol-tools/qol-tray/internal/observability"
	"github.com/qol-tools/qol-tray/internal/router"
)

// recorder returns a handler that appends its name and the event id to calls.
func recorder(name string, calls *[]string, result router.Result) router.Handler {
	return func(eventID string) (router.Result, error) {
		*calls = append(*calls, name+":"+eventID)
		return result, nil
	}
}

func TestRouter_PrefixAndExact(t *testing.T) {
	var calls []string
	r := router.New([]router.Route{
		{Pattern: router.Prefix("a::"), Handler: recorder("H1", &calls, router.Continue)},
		{Pattern: router.Exact("b"), Handler: recorder("H2", &calls, router.Continue)},
	})

	res, err := r.Route("a::x")
	require.NoError(t, err)
	assert.Equal(t, router.Continue, res)

	res, err = r.Route("b")
	require.NoError(t, err)
	assert.Equal(t, router.Continue, res)

	res, err = r.Route("a")
	require.NoError(t, err)
	assert.Equal(t, router.Continue, res)

	assert.Equal(t, []string{"H1:a::x", "H2:b"}, calls)
}

func TestRouter_FirstMatchWins(t *testing.T) {
	var calls []string
	r := router.New([]router.Route{
		{Pattern: router.Prefix("p::"), Handler: recorder("first", &calls, router.Continue)},
		{Pattern: router.Prefix("p::x"), Handler: recorder("second", &calls, router.Continue)},
		{Pattern: router.Exact("p::x"), Handler: recorder("third", &calls, router.Continue)},
	})

	_, err := r.Route("p::x")
	require.NoError(t, err)
	assert.Equal(t, []string{"first:p::x"}, calls)
}

func TestRouter_ExactRequiresEquality(t *testing.T) {
	var calls []string
	r := router.New([]router.Route{
		{Pattern: router.Exact(router.QuitID), Handler: recorder("quit", &calls, router.Quit)},
	})

	res, err := r.Route("__quit__extra")
	require.NoError(t, err)
	assert.Equal(t, router.Continue, res)
	assert.Empty(t, calls)

	res, err = r.Route(router.QuitID)
	require.NoError(t, err)
	assert.Equal(t, router.Quit, res)
}

func TestRouter_HandlerError(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	boom := errors.New("boom")
	r := router.New([]router.Route{
		{Pattern: router.Prefix("x::"), Handler: func(string) (router.Result, error) {
			return router.Continue, boom
		}},
	}, router.WithMetrics(metrics))

	_, err := r.Route("x::1")
	require.ErrorIs(t, err, boom)

	_, err = r.Route("nothing")
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RoutesDispatched.WithLabelValues(observability.OutcomeError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RoutesDispatched.WithLabelValues(observability.OutcomeMiss)), 0)
}

func TestRouter_CopiesRoutes(t *testing.T) {
	var calls []string
	routes := []router.Route{{Pattern: router.Exact("a"), Handler: recorder("A", &calls, router.Continue)}}
	r := router.New(routes)
	routes[0] = router.Route{Pattern: router.Exact("b"), Handler: recorder("B", &calls, router.Continue)}

	_, _ = r.Route("a")
	assert.Equal(t, []string{"A:a"}, calls)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "exact:a", r.Patterns()[0].String())
}

func TestLocalID(t *testing.T) {
	assert.Equal(t, "start", router.LocalID("recorder::start"))
	assert.Equal(t, "nested::id", router.LocalID("feature_0::nested::id"))
	assert.Equal(t, "plain", router.LocalID("plain"))
	assert.Equal(t, "recorder::start", router.ScopedID("recorder", "start"))
}

func TestPattern_Properties(t *testing.T) {
	ident := rapid.StringMatching(`[a-z_]{0,8}`)
	rapid.Check(t, func(t *rapid.T) {
		scope := ident.Draw(t, "scope")
		local := ident.Draw(t, "local")
		id := router.ScopedID(scope, local)

		if !router.Prefix(scope + "::").Matches(id) {
			t.Fatalf("prefix %q should match %q", scope+"::", id)
		}
		if !router.Exact(id).Matches(id) {
			t.Fatalf("exact %q should match itself", id)
		}
		if router.Prefix(scope + "::").Matches(scope) {
			t.Fatalf("prefix %q must not match bare scope", scope+"::")
		}
		other := ident.Draw(t, "other")
		if router.Exact(id).Matches(other) != (id == other) {
			t.Fatalf("exact %q vs %q", id, other)
		}
	})
}

func TestRouter_RoutesToFirstMatchProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "routes")
		prefixes := make([]string, n)
		var calls []string
		routes := make([]router.Route, n)
		for i := range prefixes {
			prefixes[i] = rapid.StringMatching(`[ab]{0,3}`).Draw(t, "prefix")
			name := strings.Repeat("r", i+1)
			routes[i] = router.Route{Pattern: router.Prefix(prefixes[i]), Handler: recorder(name, &calls, router.Continue)}
		}
		id := rapid.StringMatching(`[ab]{0,4}`).Draw(t, "id")

		want := ""
		for i, p := range prefixes {
			if strings.HasPrefix(id, p) {
				want = strings.Repeat("r", i+1) + ":" + id
				break
			}
		}

		if _, err := router.New(routes).Route(id); err != nil {
			t.Fatal(err)
		}
		if want == "" {
			if len(calls) != 0 {
				t.Fatalf("expected no handler, got %v", calls)
			}
			return
		}
		if len(calls) != 1 || calls[0] != want {
			t.Fatalf("calls = %v, want [%s]", calls, want)
		}
	})
}
