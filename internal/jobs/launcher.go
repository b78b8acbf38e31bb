// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matt-FFFFFF/nightshell/internal/commandinpath"
	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
	"golang.org/x/sys/unix"
)

const (
	// ExitNotFound is the status of a command that could not be resolved.
	ExitNotFound = 127
	// ExitFailure is the status recorded when a launch fails outright.
	ExitFailure = -1
)

const signalExitBase = 128

var (
	// ErrEmptyCommand is returned when Launch is called without arguments.
	ErrEmptyCommand = errors.New("empty command")
	// ErrCouldNotStartProcess is returned when the child process could not be created.
	ErrCouldNotStartProcess = errors.New("couldn't create child process")
	// ErrResourceExhausted is returned when a started process could not be tracked.
	// The shell must shut down when it sees this error.
	ErrResourceExhausted = errors.New("job table exhausted")
)

// Result describes the completion of a launch.
type Result struct {
	ExitCode    int
	Interrupted bool
	Slot        int
	Background  bool
}

// Launcher starts child processes and records them in a Table.
type Launcher struct {
	Table  *Table
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	// Out receives the launcher's own messages.
	Out io.Writer
	// PathList is searched for commands; empty means the PATH environment variable.
	PathList string
}

// NewLauncher returns a launcher for table wired to the process standard streams.
func NewLauncher(table *Table) *Launcher {
	return &Launcher{
		Table:  table,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Out:    os.Stdout,
	}
}

func (l *Launcher) pathList() string {
	if l.PathList != "" {
		return l.PathList
	}

	return os.Getenv("PATH")
}

// Launch runs argv[0] with argv as its arguments. A foreground launch blocks
// until the reaper has collected the child; a background launch records a new
// slot, prints it and returns at once.
//
// The child inherits the default disposition for SIGINT because the shell
// only catches it, so a foreground child can still be interrupted.
func (l *Launcher) Launch(ctx context.Context, argv []string, background bool) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: ExitFailure}, ErrEmptyCommand
	}

	logger := ctxlog.Logger(ctx).With("command", argv[0], "background", background)

	path, err := commandinpath.Find(argv[0], l.pathList())
	if err != nil {
		return Result{ExitCode: ExitNotFound}, err
	}

	attr := &os.ProcAttr{
		Env:   os.Environ(),
		Files: []*os.File{l.Stdin, l.Stdout, l.Stderr},
	}

	// The lock is held from process creation until the job is recorded so the
	// reaper cannot collect the child before it is known.
	l.Table.mu.Lock()

	if l.Table.closed {
		l.Table.mu.Unlock()
		return Result{ExitCode: ExitFailure}, ErrTableClosed
	}

	ps, err := os.StartProcess(path, argv, attr)
	if err != nil {
		l.Table.mu.Unlock()
		logger.Error("couldn't create child process", "path", path, "error", err)

		return Result{ExitCode: ExitFailure}, errors.Join(ErrCouldNotStartProcess, err)
	}

	pid := ps.Pid
	_ = ps.Release()

	logger.Debug("process started", "pid", pid)

	if background {
		slot, err := l.Table.appendBackgroundLocked(pid, argv[0])
		l.Table.mu.Unlock()

		if err != nil {
			_ = l.Table.signal(pid, unix.SIGTERM)
			logger.Error("couldn't record background task", "pid", pid, "error", err)

			return Result{ExitCode: ExitFailure}, errors.Join(ErrResourceExhausted, err)
		}

		fmt.Fprintf(l.Out, "[%d] task started\n", slot)

		return Result{Slot: slot, Background: true}, nil
	}

	done := l.Table.setForegroundLocked(pid)
	l.Table.mu.Unlock()

	select {
	case <-done:
	case <-l.Table.Done():
		return Result{ExitCode: ExitFailure}, ErrTableClosed
	}

	status, werr := l.Table.foregroundResult()
	if werr != nil {
		logger.Warn("couldn't track the completion of the process", "pid", pid, "error", werr)
		return Result{ExitCode: ExitFailure}, werr
	}

	res := Result{ExitCode: status.ExitStatus()}

	if status.Signaled() {
		res.ExitCode = signalExitBase + int(status.Signal())
		res.Interrupted = true

		fmt.Fprintln(l.Out)
	}

	logger.Debug("process finished", "pid", pid, "exitCode", res.ExitCode)

	return res, nil
}
