// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package plugin

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/samber/oops"
)

// Runner is a script a plugin may ship to handle menu and hotkey actions.
type Runner struct {
	File    string
	Program string
	Args    []string
}

var (
	windowsRunners = []Runner{
		{File: "run.bat", Program: "cmd", Args: []string{"/c"}},
		{File: "run.ps1", Program: "powershell", Args: []string{"-ExecutionPolicy", "Bypass", "-File"}},
	}
	unixRunners = []Runner{
		{File: "run.sh", Program: "bash"},
	}
)

// RunnersFor returns the runner candidates for goos in preference order.
func RunnersFor(goos string) []Runner {
	if goos == "windows" {
		return windowsRunners
	}
	return unixRunners
}

// FindScript returns the first runner whose script exists in dir.
func FindScript(dir, goos string) (Runner, string, error) {
	for _, r := range RunnersFor(goos) {
		path := filepath.Join(dir, r.File)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return r, path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Runner{}, "", oops.Code(CodeScriptMissing).With("dir", dir).Wrap(err)
		}
	}
	return Runner{}, "", oops.Code(CodeScriptMissing).
		With("dir", dir).
		With("platform", goos).
		Errorf("no run script found")
}

// ScriptLauncher runs plugin actions through the plugin's run script.
type ScriptLauncher struct {
	registry *Registry
	goos     string
}

// NewScriptLauncher creates a launcher resolving plugins through registry.
func NewScriptLauncher(registry *Registry) *ScriptLauncher {
	return &ScriptLauncher{registry: registry, goos: runtime.GOOS}
}

// Launch starts the plugin's run script with action as its argument and
// returns once the process has started. Output is discarded and the child
// is reaped in the background.
func (l *ScriptLauncher) Launch(ctx context.Context, pluginID, action string) error {
	rt, err := l.registry.MustGet(pluginID)
	if err != nil {
		return err
	}
	return l.LaunchIn(ctx, rt, action)
}

// LaunchIn runs action in rt's directory.
func (l *ScriptLauncher) LaunchIn(_ context.Context, rt *Runtime, action string) error {
	runner, path, err := FindScript(rt.Dir, l.goos)
	if err != nil {
		return err
	}

	args := append(append([]string{}, runner.Args...), path, action)
	// Not bound to ctx: actions outlive the triggering request.
	cmd := exec.Command(runner.Program, args...) //nolint:gosec // script path comes from the plugin directory
	cmd.Dir = rt.Dir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return oops.Code(CodeScriptMissing).
			With("plugin", rt.ID).
			With("action", action).
			Wrapf(err, "failed to start run script")
	}

	slog.Debug("launched plugin action", "plugin", rt.ID, "action", action, "pid", cmd.Process.Pid)
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
