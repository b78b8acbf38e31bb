// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/nightshell/internal/commandregistry"
	"github.com/matt-FFFFFF/nightshell/internal/config"
	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
	"github.com/matt-FFFFFF/nightshell/internal/dispatch"
	"github.com/matt-FFFFFF/nightshell/internal/jobs"
	"github.com/matt-FFFFFF/nightshell/internal/lineeditor"
	"github.com/matt-FFFFFF/nightshell/internal/signalbroker"
)

const (
	// ExitSuccess is returned after exit or end of input.
	ExitSuccess = 0
	// ExitError is returned when the shell stops because of a failure.
	ExitError = 1
	// signalExitBase is added to the signal number when a termination signal ends the shell.
	signalExitBase = 128
)

var exitFunc = os.Exit

// LineReader produces one input line per call and io.EOF at the end of input.
type LineReader interface {
	ReadLine() (string, error)
}

// Shell is one interactive session.
type Shell struct {
	reader     LineReader
	terminal   lineeditor.RawMode
	registry   *commandregistry.Registry
	table      *jobs.Table
	reaper     *jobs.Reaper
	launcher   *jobs.Launcher
	dispatcher *dispatch.Dispatcher
	out        io.Writer

	stdin, stdout, stderr *os.File

	version string

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures a Shell.
type Option func(*Shell)

// WithReader replaces the terminal line editor.
func WithReader(r LineReader) Option {
	return func(s *Shell) {
		s.reader = r
	}
}

// WithTerminal sets the terminal restored at shutdown.
func WithTerminal(t lineeditor.RawMode) Option {
	return func(s *Shell) {
		s.terminal = t
	}
}

// WithOutput sets where the shell and its built-ins write.
func WithOutput(w io.Writer) Option {
	return func(s *Shell) {
		s.out = w
	}
}

// WithStdio sets the standard streams handed to child processes.
func WithStdio(stdin, stdout, stderr *os.File) Option {
	return func(s *Shell) {
		s.stdin, s.stdout, s.stderr = stdin, stdout, stderr
	}
}

// WithVersion sets the version reported by the version built-in.
func WithVersion(v string) Option {
	return func(s *Shell) {
		s.version = v
	}
}

// New builds a shell from cfg. Without WithReader, standard input is read by
// the raw-mode line editor when it is a terminal, and line by line otherwise.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Shell, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Shell{
		out:     os.Stdout,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		version: "dev",
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registry = commandregistry.New(commandregistry.DefaultCommands...)
	for _, name := range dispatch.BuiltinNames() {
		if !s.registry.Contains(name) {
			s.registry.Register(name)
		}
	}

	if cfg.RegisterPathCommands {
		n := s.registry.ScanPath(ctx, os.Getenv("PATH"))
		ctxlog.Debug(ctx, "registered commands from PATH", "count", n)
	}

	s.table = jobs.NewTable(jobs.WithMaxBackgroundJobs(cfg.MaxBackgroundJobs))
	s.reaper = jobs.NewReaper(s.table)

	s.launcher = jobs.NewLauncher(s.table)
	s.launcher.Stdin, s.launcher.Stdout, s.launcher.Stderr = s.stdin, s.stdout, s.stderr
	s.launcher.Out = s.out

	s.dispatcher = dispatch.New(s.launcher, s.table,
		dispatch.WithOutput(s.out),
		dispatch.WithVersion(s.version),
	)

	if s.reader == nil {
		reader, terminal, err := s.newReader(cfg)
		if err != nil {
			return nil, err
		}

		s.reader = reader

		if s.terminal == nil && terminal != nil {
			s.terminal = terminal
		}
	}

	return s, nil
}

func (s *Shell) newReader(cfg *config.Config) (LineReader, lineeditor.RawMode, error) {
	terminal := lineeditor.NewTerminal(s.stdin)
	if !terminal.IsTerminal() || !lineeditor.Supported() {
		return lineeditor.NewPiped(s.stdin, cfg.MaxInputLength), nil, nil
	}

	tmpl, err := cfg.PromptTemplate()
	if err != nil {
		return nil, nil, err
	}

	colors, err := cfg.EditorColors()
	if err != nil {
		return nil, nil, err
	}

	editor := lineeditor.New(s.stdin, s.out, s.registry, tmpl,
		lineeditor.WithRawMode(terminal),
		lineeditor.WithColors(colors),
		lineeditor.WithMaxSuggestions(cfg.MaxSuggestions),
		lineeditor.WithCapacity(cfg.MaxInputLength),
	)

	return editor, terminal, nil
}

// Run reads and dispatches lines until exit, end of input or a fatal error,
// then shuts down. It returns the process exit code.
func (s *Shell) Run(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.reaper.Start(ctx)

	sigCh := signalbroker.New(ctx)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		signalbroker.Watch(ctx, sigCh, signalbroker.Handlers{
			Interrupt: func() { s.interrupt(ctx) },
			Terminate: func(sig os.Signal) { s.terminate(ctx, sig) },
		})
	}()

	defer func() {
		signalbroker.Stop(sigCh)
		cancel()
		wg.Wait()
	}()

	code := s.loop(ctx)

	if err := s.Shutdown(ctx); err != nil {
		ctxlog.Error(ctx, "shutdown", "error", err)
		code = ExitError
	}

	return code
}

func (s *Shell) loop(ctx context.Context) int {
	for {
		s.announceFinished()

		line, err := s.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ExitSuccess
			}

			ctxlog.Error(ctx, "couldn't read input", "error", err)

			return ExitError
		}

		err = s.dispatcher.Run(ctx, line)

		switch {
		case err == nil:
		case errors.Is(err, dispatch.ErrExit):
			return ExitSuccess
		default:
			ctxlog.Error(ctx, "job table unusable, shutting down", "error", err)
			return ExitError
		}
	}
}

// announceFinished reports background jobs the reaper has collected since the
// last prompt.
func (s *Shell) announceFinished() {
	for _, slot := range s.table.DrainFinished() {
		fmt.Fprintf(s.out, "Task %d is finished\n", slot)
	}
}

func (s *Shell) interrupt(ctx context.Context) {
	killed, err := s.table.KillForeground()
	if err != nil {
		ctxlog.Warn(ctx, "couldn't interrupt foreground task", "error", err)
		return
	}

	if killed {
		ctxlog.Debug(ctx, "foreground task interrupted")
	}
}

// terminate handles a termination signal while the main loop may be blocked
// reading input, so it shuts down and exits the process itself.
func (s *Shell) terminate(ctx context.Context, sig os.Signal) {
	if err := s.Shutdown(ctx); err != nil {
		ctxlog.Error(ctx, "shutdown", "error", err)
	}

	code := ExitError
	if ss, ok := sig.(syscall.Signal); ok {
		code = signalExitBase + int(ss)
	}

	exitFunc(code)
}

// Shutdown stops reaping, terminates every unfinished job, releases the
// registry and restores the terminal. Only the first call has any effect.
func (s *Shell) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		var result error

		s.reaper.Stop()

		if err := s.table.Shutdown(); err != nil {
			result = multierror.Append(result, err)
		}

		s.registry.Reset()

		if s.terminal != nil {
			if err := s.terminal.Restore(); err != nil {
				result = multierror.Append(result, err)
			}
		}

		if c, ok := s.reader.(io.Closer); ok {
			if err := c.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}

		ctxlog.Debug(ctx, "shell shut down")

		s.shutdownErr = result
	})

	return s.shutdownErr
}
