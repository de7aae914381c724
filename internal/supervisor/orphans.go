// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package supervisor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/qol-tools/qol-tray/pkg/errutil"
)

// PIDFile returns the orphan registry path, or "" when tracking is disabled.
func (s *Supervisor) PIDFile() string {
	return s.pidFile
}

// ReadPIDs parses an orphan registry file: one decimal pid per line.
// Blank and malformed lines are ignored. A missing file yields no pids.
func ReadPIDs(path string) ([]int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the host's own registry file
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code(CodeOrphanRegistry).With("path", path).Wrapf(err, "failed to read daemon pid file")
	}

	var pids []int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pid, err := strconv.Atoi(line)
		if err != nil || pid <= 0 {
			slog.Warn("ignoring malformed pid file entry", "path", path, "entry", line)
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// RecoverOrphans terminates every still-running process named in the
// orphan registry, then deletes the registry. Run it before spawning a new
// generation of daemons.
func (s *Supervisor) RecoverOrphans(ctx context.Context) error {
	if s.pidFile == "" {
		return nil
	}

	pids, err := ReadPIDs(s.pidFile)
	if err != nil {
		return err
	}

	for _, pid := range pids {
		s.reapOrphan(ctx, pid)
	}

	return s.RemovePIDFile()
}

func (s *Supervisor) reapOrphan(ctx context.Context, pid int) {
	if pid == os.Getpid() {
		return
	}

	alive, err := process.PidExistsWithContext(ctx, int32(pid)) //nolint:gosec // pids fit in int32
	if err != nil || !alive {
		return
	}
	proc, err := process.NewProcessWithContext(ctx, int32(pid)) //nolint:gosec // pids fit in int32
	if err != nil {
		return
	}

	slog.Info("terminating orphaned daemon", "pid", pid)
	if err := proc.TerminateWithContext(ctx); err != nil {
		errutil.LogWarn(slog.Default(), "failed to signal orphaned daemon", err, "pid", pid)
	}

	gone := func() bool {
		running, err := proc.IsRunningWithContext(ctx)
		return err != nil || !running
	}
	if !waitUntil(ctx, s.orphanWait, s.stopPoll, gone) {
		slog.Warn("orphaned daemon still running, killing", "pid", pid)
		if err := proc.KillWithContext(ctx); err != nil {
			errutil.LogWarn(slog.Default(), "failed to kill orphaned daemon", err, "pid", pid)
			return
		}
	}
	s.metrics.OrphanReaped()
}

// PersistPIDs overwrites the orphan registry with pids, one per line.
// An empty list removes the registry.
func (s *Supervisor) PersistPIDs(pids []int) error {
	if s.pidFile == "" {
		return nil
	}
	if len(pids) == 0 {
		return s.RemovePIDFile()
	}

	var b strings.Builder
	for _, pid := range pids {
		b.WriteString(strconv.Itoa(pid))
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(s.pidFile), 0o750); err != nil {
		return oops.Code(CodeOrphanRegistry).With("path", s.pidFile).Wrap(err)
	}
	if err := os.WriteFile(s.pidFile, []byte(b.String()), 0o600); err != nil {
		return oops.Code(CodeOrphanRegistry).With("path", s.pidFile).Wrapf(err, "failed to write daemon pid file")
	}
	slog.Debug("persisted daemon pids", "path", s.pidFile, "count", len(pids))
	return nil
}

// RemovePIDFile deletes the orphan registry. A missing file is not an error.
func (s *Supervisor) RemovePIDFile() error {
	if s.pidFile == "" {
		return nil
	}
	if err := os.Remove(s.pidFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.Code(CodeOrphanRegistry).With("path", s.pidFile).Wrap(err)
	}
	return nil
}
