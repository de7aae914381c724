// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package hotkey

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/oops"

	"github.com/qol-tools/qol-tray/pkg/errutil"
)

// DefaultDebounce coalesces bursts of writes to the config file.
const DefaultDebounce = 100 * time.Millisecond

// Reloader receives reload requests.
type Reloader interface {
	TriggerReload()
}

// Watcher triggers a reload whenever the hotkey config file changes.
type Watcher struct {
	path     string
	target   Reloader
	debounce time.Duration
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, target Reloader, opts ...WatcherOption) *Watcher {
	w := &Watcher{path: path, target: target, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the file's directory until ctx is done. Editors that save by
// rename are handled because the directory, not the file, is watched.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	name := filepath.Base(w.path)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return oops.Code(CodeHotkeyConfig).With("path", w.path).Wrap(err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return oops.Code(CodeHotkeyConfig).With("path", w.path).Wrapf(err, "failed to create file watcher")
	}
	defer func() {
		_ = fw.Close()
	}()

	if err := fw.Add(dir); err != nil {
		return oops.Code(CodeHotkeyConfig).With("path", dir).Wrapf(err, "failed to watch config directory")
	}
	slog.Debug("watching hotkey config", "path", w.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				slog.Info("hotkey config changed", "path", w.path)
				w.target.TriggerReload()
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			errutil.LogWarn(slog.Default(), "hotkey config watcher error", err, "path", w.path)
		}
	}
}
