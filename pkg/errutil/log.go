// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package errutil holds helpers for logging and inspecting oops errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level, expanding oops code and context when present.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	logAt(logger, slog.LevelError, msg, err, attrs...)
}

// LogWarn logs err at warn level. Used for per-item failures inside a batch
// that the batch itself survives.
func LogWarn(logger *slog.Logger, msg string, err error, attrs ...any) {
	logAt(logger, slog.LevelWarn, msg, err, attrs...)
}

func logAt(logger *slog.Logger, level slog.Level, msg string, err error, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
	} else {
		attrs = append(attrs, "error", err)
	}
	logger.Log(context.Background(), level, msg, attrs...)
}

// HasCode reports whether err is an oops error carrying code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	c, _ := oopsErr.Code().(string)
	return c == code
}
