// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matt-FFFFFF/nightshell/internal/color"
	"github.com/matt-FFFFFF/nightshell/internal/commandinpath"
	"github.com/matt-FFFFFF/nightshell/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type launchCall struct {
	argv       []string
	background bool
}

type fakeLauncher struct {
	calls []launchCall
}

func (f *fakeLauncher) Launch(_ context.Context, argv []string, background bool) (jobs.Result, error) {
	f.calls = append(f.calls, launchCall{argv: argv, background: background})

	switch argv[0] {
	case "false":
		return jobs.Result{ExitCode: 1}, nil
	case "missing":
		return jobs.Result{ExitCode: jobs.ExitNotFound}, commandinpath.ErrNotFound
	case "exhaust":
		return jobs.Result{ExitCode: jobs.ExitFailure}, errors.Join(jobs.ErrResourceExhausted, jobs.ErrJobTableFull)
	case "broken":
		return jobs.Result{ExitCode: jobs.ExitFailure}, jobs.ErrCouldNotStartProcess
	}

	return jobs.Result{Background: background}, nil
}

func (f *fakeLauncher) commands() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = strings.Join(c.argv, " ")
		if c.background {
			out[i] += " [bg]"
		}
	}

	return out
}

type fakeTable struct {
	bg         []jobs.BackgroundJob
	terminated []string
}

func (f *fakeTable) Background() []jobs.BackgroundJob { return f.bg }

func (f *fakeTable) Terminate(index string) error {
	slot, err := jobs.ParseSlot(index)
	if err != nil {
		return err
	}

	if slot >= len(f.bg) {
		return fmt.Errorf("%w: %s", jobs.ErrInvalidJobIndex, index)
	}

	f.terminated = append(f.terminated, index)

	return nil
}

type mapEnv map[string]string

func (m mapEnv) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapEnv) Set(name, value string) (string, error) {
	prev := m[name]
	m[name] = value

	return prev, nil
}

func newTestDispatcher(t *testing.T, opts ...Option) (*Dispatcher, *fakeLauncher, *fakeTable, *bytes.Buffer) {
	t.Helper()

	prev := color.Enabled()
	color.SetEnabled(false)
	t.Cleanup(func() { color.SetEnabled(prev) })

	var out bytes.Buffer

	l := &fakeLauncher{}
	tbl := &fakeTable{}
	opts = append([]Option{WithOutput(&out), WithEnvironment(mapEnv{}), WithVersion("1.2.3")}, opts...)

	return New(l, tbl, opts...), l, tbl, &out
}

func TestRun_Chaining(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		want       []string
		wantStatus int
	}{
		{name: "and skips after failure", line: "false & echo hi", want: []string{"false"}, wantStatus: 1},
		{name: "or runs after failure", line: "false | echo hi", want: []string{"false", "echo hi"}},
		{name: "and runs after success", line: "true & echo hi", want: []string{"true", "echo hi"}},
		{name: "or skips after success", line: "true | echo hi", want: []string{"true"}},
		{name: "sequence always runs", line: "false ; echo hi", want: []string{"false", "echo hi"}},
		{name: "sequence after skip", line: "false & echo a ; echo b", want: []string{"false", "echo b"}},
		{name: "skip keeps status", line: "false & echo a & echo b", want: []string{"false"}, wantStatus: 1},
		{name: "trailing operator backgrounds", line: "sleep 5 &", want: []string{"sleep 5 [bg]"}},
		{name: "trailing operator with spaces", line: "sleep 5 &  ", want: []string{"sleep 5 [bg]"}},
		{name: "trailing word backgrounds", line: "sleep 5 '&'", want: []string{"sleep 5 [bg]"}},
		{name: "chain then background", line: "true & sleep 5 &", want: []string{"true", "sleep 5 [bg]"}},
		{name: "quoted operators", line: `echo 'a & b' "c | d"`, want: []string{"echo a & b c | d"}},
		{name: "blank segments", line: " ; ls ;  ", want: []string{"ls"}},
		{name: "empty line", line: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, l, _, _ := newTestDispatcher(t)

			require.NoError(t, d.Run(context.Background(), tt.line))
			assert.Equal(t, tt.want, l.commands())
			assert.Equal(t, tt.wantStatus, d.Status())
		})
	}
}

func TestRun_StatusCarriesAcrossLines(t *testing.T) {
	d, l, _, _ := newTestDispatcher(t)

	require.NoError(t, d.Run(context.Background(), "false"))
	require.NoError(t, d.Run(context.Background(), "& echo skipped"))
	require.NoError(t, d.Run(context.Background(), "| echo ran"))

	assert.Equal(t, []string{"false", "echo ran"}, l.commands())
}

func TestRun_UnknownCommand(t *testing.T) {
	d, _, _, out := newTestDispatcher(t)

	require.NoError(t, d.Run(context.Background(), "missing arg"))
	assert.Equal(t, jobs.ExitNotFound, d.Status())
	assert.Equal(t, "couldn't execute unknown command: missing\n", out.String())
}

func TestRun_LaunchFailure(t *testing.T) {
	d, _, _, out := newTestDispatcher(t)

	require.NoError(t, d.Run(context.Background(), "broken"))
	assert.Equal(t, jobs.ExitFailure, d.Status())
	assert.Contains(t, out.String(), "couldn't create child process")
}

func TestRun_ResourceExhaustedStops(t *testing.T) {
	d, l, _, _ := newTestDispatcher(t)

	err := d.Run(context.Background(), "exhaust & ; echo after")
	require.ErrorIs(t, err, jobs.ErrResourceExhausted)
	assert.Equal(t, []string{"exhaust"}, l.commands())
}

func TestRun_Exit(t *testing.T) {
	for _, name := range []string{"exit", "quit"} {
		t.Run(name, func(t *testing.T) {
			d, l, _, _ := newTestDispatcher(t)

			err := d.Run(context.Background(), name+" ; echo after")
			require.ErrorIs(t, err, ErrExit)
			assert.Empty(t, l.calls)
		})
	}
}

func TestRun_TooManyTokens(t *testing.T) {
	d, l, _, out := newTestDispatcher(t, WithMaxTokens(2))

	require.NoError(t, d.Run(context.Background(), "a ; b ; c"))
	assert.Empty(t, l.calls)
	assert.Equal(t, 1, d.Status())
	assert.Contains(t, out.String(), "too many tokens")

	out.Reset()
	require.NoError(t, d.Run(context.Background(), "echo a b c"))
	assert.Empty(t, l.calls)
	assert.Contains(t, out.String(), "too many tokens")
}

func TestRun_ArgumentCount(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "cd", want: "[Argument Count Error at cd:1] Change directory: cd <dir>\n"},
		{line: "term", want: "[Argument Count Error at term:1] Terminate background task: term <idx>\n"},
		{line: "environment get", want: "[Argument Count Error at environment:2] Env vars: environment get <var> | set <var> <value>\n"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			d, l, _, out := newTestDispatcher(t)

			require.NoError(t, d.Run(context.Background(), tt.line+" | echo recovered"))
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, []string{"echo recovered"}, l.commands())
		})
	}
}

func TestArgumentCountError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &ArgumentCountError{Name: "cd", Index: 1, Hint: "h"})
	assert.ErrorIs(t, err, ErrArgumentCount)
}

func TestBuiltin_Echon(t *testing.T) {
	d, _, _, out := newTestDispatcher(t, WithEnvironment(mapEnv{"HOME": "/home/me"}))

	require.NoError(t, d.Run(context.Background(), "echon hi $HOME $ $NOPE"))
	assert.Equal(t, "hi /home/me $\nenvironment variable not found: 'NOPE'\n", out.String())
	assert.Equal(t, 1, d.Status())

	out.Reset()
	require.NoError(t, d.Run(context.Background(), "echon"))
	assert.Equal(t, "\n", out.String())
	assert.Equal(t, 0, d.Status())
}

func TestBuiltin_Environment(t *testing.T) {
	env := mapEnv{"USER": "me"}
	d, _, _, out := newTestDispatcher(t, WithEnvironment(env))
	ctx := context.Background()

	require.NoError(t, d.Run(ctx, "environment get USER"))
	assert.Equal(t, "me\n", out.String())

	out.Reset()
	require.NoError(t, d.Run(ctx, "environment set GANG shell"))
	assert.Equal(t, "shell", env["GANG"])
	assert.Equal(t, "ENV: GANG=shell (was \"\")\n", out.String())

	out.Reset()
	require.NoError(t, d.Run(ctx, "environment get NOPE"))
	assert.Equal(t, 1, d.Status())
	assert.Contains(t, out.String(), ErrVariableNotSet.Error())

	out.Reset()
	require.NoError(t, d.Run(ctx, "environment set ONLY"))
	assert.Contains(t, out.String(), ErrEnvironmentUsage.Error())

	out.Reset()
	require.NoError(t, d.Run(ctx, "environment frob X"))
	assert.Contains(t, out.String(), ErrEnvironmentUsage.Error())
}

func TestBuiltin_Sghint(t *testing.T) {
	d, _, _, out := newTestDispatcher(t)

	require.NoError(t, d.Run(context.Background(), "sghint cd"))
	assert.Equal(t, "sghint: Change directory: cd <dir>\n", out.String())

	out.Reset()
	require.NoError(t, d.Run(context.Background(), "sghint ls"))
	assert.Equal(t, 1, d.Status())
	assert.Contains(t, out.String(), ErrUnknownBuiltin.Error())
}

func TestBuiltin_Bg(t *testing.T) {
	d, _, tbl, out := newTestDispatcher(t)

	require.NoError(t, d.Run(context.Background(), "bg"))
	assert.Equal(t, "No background tasks\n", out.String())

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	tbl.bg = []jobs.BackgroundJob{
		{PID: 10, Command: "sleep", Started: started},
		{PID: 11, Command: "yes", Started: started, Finished: true},
	}

	out.Reset()
	require.NoError(t, d.Run(context.Background(), "bg"))
	assert.Equal(t,
		"[0] pid 10, sleep, started 2025-06-01 12:00:00, running\n"+
			"[1] pid 11, yes, started 2025-06-01 12:00:00, finished\n",
		out.String())
}

func TestBuiltin_Term(t *testing.T) {
	d, _, tbl, out := newTestDispatcher(t)
	tbl.bg = []jobs.BackgroundJob{{PID: 10}}

	require.NoError(t, d.Run(context.Background(), "term 0"))
	assert.Equal(t, []string{"0"}, tbl.terminated)
	assert.Equal(t, 0, d.Status())

	for _, idx := range []string{"1", "-1", "x1"} {
		out.Reset()
		require.NoError(t, d.Run(context.Background(), "term "+idx))
		assert.Equal(t, 1, d.Status(), idx)
		assert.Contains(t, out.String(), jobs.ErrInvalidJobIndex.Error(), idx)
	}
}

func TestBuiltin_Cd(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Chdir(wd)

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	d, _, _, out := newTestDispatcher(t)

	require.NoError(t, d.Run(context.Background(), "cd "+dir))
	assert.Equal(t, 0, d.Status())

	got, err := os.Getwd()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, gotResolved)

	require.NoError(t, d.Run(context.Background(), "cd "+file))
	assert.Equal(t, 1, d.Status())
	assert.Contains(t, out.String(), ErrNotADirectory.Error())

	out.Reset()
	require.NoError(t, d.Run(context.Background(), "cd "+filepath.Join(dir, "missing")))
	assert.Equal(t, 1, d.Status())
	assert.Contains(t, out.String(), "cd:")
}

func TestBuiltin_Misc(t *testing.T) {
	d, l, _, out := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, d.Run(ctx, "version"))
	assert.Equal(t, "nightshell 1.2.3\n", out.String())

	out.Reset()
	require.NoError(t, d.Run(ctx, "clear"))
	assert.Equal(t, clearScreen, out.String())

	out.Reset()
	require.NoError(t, d.Run(ctx, "help"))
	for _, name := range BuiltinNames() {
		assert.Contains(t, out.String(), " "+name+" ")
	}

	out.Reset()
	require.NoError(t, d.Run(ctx, "help term"))
	assert.Equal(t, "term - Terminate background task: term <idx>\n", out.String())

	out.Reset()
	require.NoError(t, d.Run(ctx, "help nope"))
	assert.Equal(t, 1, d.Status())

	assert.Empty(t, l.calls)
}

func TestBuiltinNames(t *testing.T) {
	names := BuiltinNames()

	assert.Contains(t, names, "cd")
	assert.Contains(t, names, "environment")
	assert.Equal(t, "cd", names[0])
}
