// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package supervisor

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// stderrLimit bounds how much daemon stderr is retained.
const stderrLimit = 16 * 1024

// tailBuffer keeps the last stderrLimit bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - stderrLimit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}

// Process is a running plugin daemon. It satisfies plugin.DaemonHandle.
type Process struct {
	PluginID string
	Started  time.Time

	cmd     *exec.Cmd
	stderr  *tailBuffer
	pipe    *os.File
	drained chan struct{}

	done     chan struct{}
	exitCode atomic.Int32
	exitErr  error
}

// newProcess wraps a started command whose stderr is the write end of pipe.
// The caller must have closed its copy of the write end.
func newProcess(pluginID string, cmd *exec.Cmd, pipe *os.File) *Process {
	p := &Process{
		PluginID: pluginID,
		Started:  time.Now(),
		cmd:      cmd,
		stderr:   &tailBuffer{},
		pipe:     pipe,
		drained:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.exitCode.Store(-1)
	go p.drain()
	return p
}

func (p *Process) drain() {
	defer close(p.drained)
	_, _ = io.Copy(p.stderr, p.pipe)
}

// awaitStderr waits up to d for stderr to reach end of file.
func (p *Process) awaitStderr(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.drained:
	case <-t.C:
	}
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}

// Done is closed once the process has exited and been reaped. It does not
// wait for descendants that inherited stderr.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Exited reports whether the process has been reaped.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit status, or -1 while running or when killed by a signal.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// Success reports whether the process exited with status zero.
// Only meaningful after Done is closed.
func (p *Process) Success() bool {
	return p.exitErr == nil
}

// Stderr returns the retained tail of the process's stderr.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

func (p *Process) wait() {
	err := p.cmd.Wait()
	p.exitErr = err

	code := 0
	if err != nil {
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}
	p.exitCode.Store(int32(code)) //nolint:gosec // exit codes fit in int32
	close(p.done)

	p.awaitStderr(stderrDrain)
	_ = p.pipe.Close()
}
