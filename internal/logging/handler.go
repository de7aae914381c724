// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package logging configures structured logging for the tray host.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Formats accepted by Setup.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// hostHandler stamps every record with the service identity and, when the
// context carries one, the active trace and span ids.
type hostHandler struct {
	next    slog.Handler
	service string
	version string
}

func (h *hostHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.next.Handle(ctx, r)
}

func (h *hostHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *hostHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &hostHandler{next: h.next.WithAttrs(attrs), service: h.service, version: h.version}
}

func (h *hostHandler) WithGroup(name string) slog.Handler {
	return &hostHandler{next: h.next.WithGroup(name), service: h.service, version: h.version}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a slog.Level.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Setup creates a configured slog.Logger.
// format is "json" or "text" (json when empty or unknown). If w is nil, writes to os.Stderr.
func Setup(service, version, format, level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var base slog.Handler
	if format == FormatText {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&hostHandler{next: base, service: service, version: version})
}

// SetDefault configures the process-wide default logger.
func SetDefault(service, version, format, level string) *slog.Logger {
	logger := Setup(service, version, format, level, nil)
	slog.SetDefault(logger)
	return logger
}
