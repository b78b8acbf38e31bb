// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/nightshell/internal/color"
	"github.com/matt-FFFFFF/nightshell/internal/commandinpath"
	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
	"github.com/matt-FFFFFF/nightshell/internal/jobs"
	"github.com/matt-FFFFFF/nightshell/internal/tokenizer"
)

const backgroundWord = "&"

var (
	// ErrExit is returned by Run when the line asked the shell to exit.
	ErrExit = errors.New("exit requested")
	// ErrUnknownCommand is reported when a command cannot be found.
	ErrUnknownCommand = errors.New("couldn't execute unknown command")
	// ErrArgumentCount is matched by ArgumentCountError.
	ErrArgumentCount = errors.New("argument count error")
)

// ArgumentCountError reports the first missing argument of a built-in.
type ArgumentCountError struct {
	Name  string
	Index int
	Hint  string
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("[Argument Count Error at %s:%d] %s", e.Name, e.Index, e.Hint)
}

// Is makes errors.Is(err, ErrArgumentCount) true.
func (e *ArgumentCountError) Is(target error) bool {
	return target == ErrArgumentCount
}

// Launcher runs external commands.
type Launcher interface {
	Launch(ctx context.Context, argv []string, background bool) (jobs.Result, error)
}

// JobTable exposes the background jobs to the bg and term built-ins.
type JobTable interface {
	Background() []jobs.BackgroundJob
	Terminate(index string) error
}

// Dispatcher evaluates input lines and keeps the status of the last command.
type Dispatcher struct {
	launcher Launcher
	jobs     JobTable
	env      Environment
	splitter *tokenizer.Splitter
	out      io.Writer
	version  string
	builtins map[string]*Builtin
	order    []*Builtin
	status   int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOutput sets where built-ins and user errors are printed.
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.out = w
	}
}

// WithEnvironment replaces the process environment.
func WithEnvironment(env Environment) Option {
	return func(d *Dispatcher) {
		d.env = env
	}
}

// WithVersion sets the string printed by the version built-in.
func WithVersion(v string) Option {
	return func(d *Dispatcher) {
		d.version = v
	}
}

// WithMaxTokens caps the number of segments or words in a line.
func WithMaxTokens(n int) Option {
	return func(d *Dispatcher) {
		d.splitter = tokenizer.New(n)
	}
}

// New creates a Dispatcher.
func New(launcher Launcher, table JobTable, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		launcher: launcher,
		jobs:     table,
		env:      OSEnvironment{},
		splitter: tokenizer.New(tokenizer.MaxTokens),
		out:      os.Stdout,
		version:  "dev",
	}

	for _, opt := range opts {
		opt(d)
	}

	d.order = builtinTable()
	d.builtins = make(map[string]*Builtin, len(d.order))

	for _, b := range d.order {
		d.builtins[b.Name] = b
	}

	return d
}

// Status is the status of the last command that ran.
func (d *Dispatcher) Status() int {
	return d.status
}

// Run evaluates one line. It returns ErrExit when the shell should exit, or
// an error wrapping jobs.ErrResourceExhausted or jobs.ErrTableClosed when the
// job table can no longer be used. Every other failure is reported to the
// user and only changes the status.
func (d *Dispatcher) Run(ctx context.Context, line string) error {
	segments, err := d.splitter.Segments(line)
	if err != nil {
		d.userError(err)
		d.status = 1

		return nil
	}

	segments = trimBlankTail(segments)
	cond := RunOnAlways

	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		if seg.IsOperator() {
			cond = ConditionFor(seg.Op)
			continue
		}

		background := false
		if i+2 == len(segments) && segments[i+1].Op == tokenizer.OpAnd {
			background = true
			i++
		}

		if !cond.ShouldRun(d.status) {
			ctxlog.Debug(ctx, "segment skipped", "segment", seg.Text, "condition", cond.String(), "status", d.status)
			continue
		}

		words, err := d.splitter.Words(seg.Text)
		if err != nil {
			d.userError(err)
			d.status = 1

			return nil
		}

		if len(words) > 1 && words[len(words)-1] == backgroundWord {
			words = words[:len(words)-1]
			background = true
		}

		if len(words) == 0 {
			continue
		}

		if err := d.execute(ctx, words, background); err != nil {
			return err
		}
	}

	return nil
}

func trimBlankTail(segments []tokenizer.Segment) []tokenizer.Segment {
	for len(segments) > 0 {
		last := segments[len(segments)-1]
		if last.IsOperator() || strings.TrimSpace(last.Text) != "" {
			break
		}

		segments = segments[:len(segments)-1]
	}

	return segments
}

func (d *Dispatcher) execute(ctx context.Context, argv []string, background bool) error {
	if b, ok := d.builtins[argv[0]]; ok {
		return d.runBuiltin(ctx, b, argv)
	}

	res, err := d.launcher.Launch(ctx, argv, background)
	d.status = res.ExitCode

	switch {
	case err == nil:
		return nil
	case errors.Is(err, commandinpath.ErrNotFound):
		d.userError(fmt.Errorf("%w: %s", ErrUnknownCommand, argv[0]))
		return nil
	case errors.Is(err, jobs.ErrResourceExhausted), errors.Is(err, jobs.ErrTableClosed):
		return err
	default:
		d.userError(err)
		return nil
	}
}

func (d *Dispatcher) runBuiltin(ctx context.Context, b *Builtin, argv []string) error {
	if len(argv)-1 < b.MinArgs {
		d.userError(&ArgumentCountError{Name: b.Name, Index: len(argv), Hint: b.Hint})
		d.status = 1

		return nil
	}

	err := b.Run(ctx, d, argv)

	switch {
	case err == nil:
		d.status = 0
	case errors.Is(err, ErrExit):
		d.status = 0
		return err
	default:
		d.userError(err)
		d.status = 1
	}

	return nil
}

func (d *Dispatcher) userError(err error) {
	fmt.Fprintln(d.out, color.Colorize(err.Error(), color.FgRed))
}
