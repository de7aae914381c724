// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package supervisor starts and stops plugin daemons and reclaims daemons
// orphaned by a previous host process.
package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/qol-tools/qol-tray/internal/observability"
	"github.com/qol-tools/qol-tray/internal/plugin"
	"github.com/qol-tools/qol-tray/pkg/errutil"
)

// Default timings.
const (
	DefaultGracePeriod = 100 * time.Millisecond
	DefaultStopTimeout = 2 * time.Second
	DefaultStopPoll    = 50 * time.Millisecond
	DefaultOrphanWait  = 500 * time.Millisecond
)

// stderrDrain bounds how long stderr is read after the daemon exits while
// a grandchild still holds the pipe.
const stderrDrain = 100 * time.Millisecond

var errStillRunning = errors.New("process still running")

// Supervisor owns daemon processes for plugin runtimes.
//
// Calls for the same runtime must be serialized by the caller.
type Supervisor struct {
	gracePeriod time.Duration
	stopTimeout time.Duration
	stopPoll    time.Duration
	orphanWait  time.Duration
	pidFile     string
	metrics     *observability.Metrics
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithGracePeriod sets how long Start waits before treating a daemon as up.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		s.gracePeriod = d
	}
}

// WithStopTimeout sets how long Stop waits after the graceful signal before force-killing.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		s.stopTimeout = d
	}
}

// WithStopPoll sets the exit polling interval used by Stop and orphan recovery.
func WithStopPoll(d time.Duration) Option {
	return func(s *Supervisor) {
		s.stopPoll = d
	}
}

// WithOrphanWait sets how long an orphan gets to exit after the graceful signal.
func WithOrphanWait(d time.Duration) Option {
	return func(s *Supervisor) {
		s.orphanWait = d
	}
}

// WithPIDFile sets the orphan registry path. Without it orphan tracking is disabled.
func WithPIDFile(path string) Option {
	return func(s *Supervisor) {
		s.pidFile = path
	}
}

// WithMetrics records daemon lifecycle metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Supervisor) {
		s.metrics = m
	}
}

// New creates a Supervisor.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		gracePeriod: DefaultGracePeriod,
		stopTimeout: DefaultStopTimeout,
		stopPoll:    DefaultStopPoll,
		orphanWait:  DefaultOrphanWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CommandPath resolves a daemon command against the plugin directory.
func CommandPath(rt *plugin.Runtime) string {
	cmd := rt.Manifest.Daemon.Command
	if filepath.IsAbs(cmd) {
		return cmd
	}
	return filepath.Join(rt.Dir, cmd)
}

// Start spawns rt's daemon. It is a no-op when the manifest declares no
// enabled daemon or one is already attached. A daemon that exits
// unsuccessfully within the grace period yields a DAEMON_CRASH error
// carrying its stderr; the runtime is left without a handle.
func (s *Supervisor) Start(ctx context.Context, rt *plugin.Runtime) error {
	if !rt.Manifest.DaemonEnabled() {
		return nil
	}
	if rt.Daemon() != nil {
		return nil
	}

	command := rt.Manifest.Daemon.Command
	path := CommandPath(rt)
	if _, err := os.Stat(path); err != nil {
		s.metrics.DaemonFailed(observability.ReasonSpawn)
		return ErrSpawn(rt.ID, command, err)
	}

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		s.metrics.DaemonFailed(observability.ReasonSpawn)
		return ErrSpawn(rt.ID, command, err)
	}

	cmd := exec.Command(path) //nolint:gosec // path comes from the plugin manifest
	cmd.Dir = rt.Dir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = stderrW

	slog.Info("starting daemon", "plugin", rt.ID, "command", command)
	err = cmd.Start()
	_ = stderrW.Close()
	if err != nil {
		_ = stderrR.Close()
		s.metrics.DaemonFailed(observability.ReasonSpawn)
		return ErrSpawn(rt.ID, command, err)
	}

	proc := newProcess(rt.ID, cmd, stderrR)
	go proc.wait()

	grace := time.NewTimer(s.gracePeriod)
	defer grace.Stop()

	select {
	case <-proc.Done():
		if !proc.Success() {
			proc.awaitStderr(stderrDrain)
			s.metrics.DaemonFailed(observability.ReasonCrash)
			return ErrCrash(rt.ID, proc.ExitCode(), proc.Stderr())
		}
		slog.Info("daemon exited cleanly during startup", "plugin", rt.ID, "pid", proc.Pid())
		return nil
	case <-ctx.Done():
		s.stopProcess(proc)
		return oops.Code(CodeDaemonSpawn).With("plugin", rt.ID).Wrap(ctx.Err())
	case <-grace.C:
	}

	rt.AttachDaemon(proc)
	s.metrics.DaemonStarted()
	slog.Info("daemon started", "plugin", rt.ID, "pid", proc.Pid())
	return nil
}

// Stop terminates rt's daemon: graceful signal, bounded wait, then force-kill.
// The process is always reaped before Stop returns. A runtime without a
// daemon is a no-op.
func (s *Supervisor) Stop(rt *plugin.Runtime) error {
	h := rt.Daemon()
	if h == nil {
		return nil
	}

	proc, ok := h.(*Process)
	if !ok {
		return oops.Code(CodeDaemonStop).
			With("plugin", rt.ID).
			With("pid", h.Pid()).
			Errorf("daemon handle was not created by this supervisor")
	}
	rt.DetachDaemon()

	slog.Info("stopping daemon", "plugin", rt.ID, "pid", proc.Pid())
	forced := s.stopProcess(proc)
	if forced {
		slog.Warn("daemon did not exit in time, killed", "plugin", rt.ID, "pid", proc.Pid())
	}
	s.metrics.DaemonStopped(forced)
	return nil
}

// stopProcess runs the termination sequence to completion and reports
// whether a force-kill was needed.
func (s *Supervisor) stopProcess(proc *Process) bool {
	if proc.Exited() {
		return false
	}

	if err := terminate(proc.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		errutil.LogWarn(slog.Default(), "failed to signal daemon", err, "plugin", proc.PluginID, "pid", proc.Pid())
	}

	forced := false
	if !waitUntil(context.Background(), s.stopTimeout, s.stopPoll, proc.Exited) {
		forced = true
		if err := proc.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			s.metrics.DaemonFailed(observability.ReasonStop)
			errutil.LogWarn(slog.Default(), "failed to kill daemon", err, "plugin", proc.PluginID, "pid", proc.Pid())
		}
	}

	<-proc.Done()
	return forced
}

// StartAll starts every runtime's daemon. Failures are logged and returned
// keyed by plugin id; they never prevent the remaining daemons from starting.
func (s *Supervisor) StartAll(ctx context.Context, runtimes []*plugin.Runtime) map[string]error {
	failures := make(map[string]error)
	for _, rt := range runtimes {
		if err := s.Start(ctx, rt); err != nil {
			errutil.LogError(slog.Default(), "failed to start daemon", err, "plugin", rt.ID)
			failures[rt.ID] = err
		}
	}
	return failures
}

// RunningPIDs returns the pids of the daemons attached to runtimes.
func RunningPIDs(runtimes []*plugin.Runtime) []int {
	var pids []int
	for _, rt := range runtimes {
		if h := rt.Daemon(); h != nil {
			pids = append(pids, h.Pid())
		}
	}
	return pids
}

// waitUntil polls cond every interval until it holds or timeout elapses.
func waitUntil(ctx context.Context, timeout, interval time.Duration, cond func() bool) bool {
	if cond() {
		return true
	}
	backoff := retry.WithMaxDuration(timeout, retry.NewConstant(interval))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		if cond() {
			return nil
		}
		return retry.RetryableError(errStillRunning)
	})
	return err == nil
}
