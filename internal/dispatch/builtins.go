// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matt-FFFFFF/nightshell/internal/color"
	"github.com/spf13/afero"
)

const clearScreen = "\033[H\033[2J"

var (
	// ErrNotADirectory is returned by cd.
	ErrNotADirectory = errors.New("not a directory")
	// ErrUnknownBuiltin is returned by sghint and help for names that are not built-ins.
	ErrUnknownBuiltin = errors.New("not a built-in command")
	// ErrVariableNotSet is returned when an environment variable is missing.
	ErrVariableNotSet = errors.New("environment variable not found")
	// ErrEnvironmentUsage is returned for a malformed environment command.
	ErrEnvironmentUsage = errors.New("usage: environment get <var> OR environment set <var> <value>")
)

// FsFactory returns the filesystem cd checks directories against.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// RunFunc implements a built-in. argv[0] is the built-in name.
type RunFunc func(ctx context.Context, d *Dispatcher, argv []string) error

// Builtin is a command handled by the shell itself.
type Builtin struct {
	Name    string
	MinArgs int
	Hint    string
	Run     RunFunc
}

func builtinTable() []*Builtin {
	return []*Builtin{
		{Name: "cd", MinArgs: 1, Hint: "Change directory: cd <dir>", Run: changeDirectory},
		{Name: "exit", Hint: "Quit/exit from shell: exit", Run: exitShell},
		{Name: "quit", Hint: "Quit/exit from shell: quit", Run: exitShell},
		{Name: "help", Hint: "Help command: help [built-in]", Run: help},
		{Name: "bg", Hint: "Print background tasks", Run: listBackground},
		{Name: "term", MinArgs: 1, Hint: "Terminate background task: term <idx>", Run: terminate},
		{Name: "environment", MinArgs: 2, Hint: "Env vars: environment get <var> | set <var> <value>", Run: environment},
		{Name: "echon", Hint: "echo with env vars: echon [$VAR|word]...", Run: echon},
		{Name: "sghint", MinArgs: 1, Hint: "Print the hint of a built-in: sghint <built-in>", Run: sghint},
		{Name: "version", Hint: "Print the shell version", Run: printVersion},
		{Name: "clear", Hint: "Clear the screen", Run: clearTerminal},
	}
}

// BuiltinNames lists every built-in in table order.
func BuiltinNames() []string {
	table := builtinTable()
	names := make([]string, len(table))

	for i, b := range table {
		names[i] = b.Name
	}

	return names
}

func changeDirectory(_ context.Context, _ *Dispatcher, argv []string) error {
	dir := argv[1]
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cd: %w", err)
		}

		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	ok, err := afero.IsDir(FsFactory(), dir)
	if err != nil {
		return fmt.Errorf("cd: %w", err)
	}

	if !ok {
		return fmt.Errorf("cd: %w: %s", ErrNotADirectory, dir)
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("cd: %w", err)
	}

	return nil
}

func exitShell(context.Context, *Dispatcher, []string) error {
	return ErrExit
}

func help(_ context.Context, d *Dispatcher, argv []string) error {
	if len(argv) > 1 {
		b, ok := d.builtins[argv[1]]
		if !ok {
			return fmt.Errorf("help: %w: %s", ErrUnknownBuiltin, argv[1])
		}

		fmt.Fprintf(d.out, "%s - %s\n", b.Name, b.Hint)

		return nil
	}

	var sb strings.Builder

	sb.WriteString("nightshell " + d.version + "\n\nBuilt-in commands:\n\n")

	for _, b := range d.order {
		fmt.Fprintf(&sb, " %-12s %s\n", b.Name, b.Hint)
	}

	sb.WriteString("\nOperators:\n\n")
	sb.WriteString(" a & b        run b if a succeeded\n")
	sb.WriteString(" a | b        run b if a failed\n")
	sb.WriteString(" a ; b        run b after a\n")
	sb.WriteString(" a &          run a in the background\n")

	_, err := fmt.Fprint(d.out, sb.String())

	return err
}

func listBackground(_ context.Context, d *Dispatcher, _ []string) error {
	tasks := d.jobs.Background()
	if len(tasks) == 0 {
		fmt.Fprintln(d.out, "No background tasks")
		return nil
	}

	for i, j := range tasks {
		state := "running"
		if j.Finished {
			state = "finished"
		}

		fmt.Fprintf(d.out, "[%d] pid %d, %s, started %s, %s\n", i, j.PID, j.Command, j.Started.Format(time.DateTime), state)
	}

	return nil
}

func terminate(_ context.Context, d *Dispatcher, argv []string) error {
	return d.jobs.Terminate(argv[1])
}

func environment(_ context.Context, d *Dispatcher, argv []string) error {
	switch argv[1] {
	case "get":
		v, ok := d.env.Get(argv[2])
		if !ok {
			return fmt.Errorf("%w: %s", ErrVariableNotSet, argv[2])
		}

		fmt.Fprintln(d.out, v)

		return nil
	case "set":
		if len(argv) < 4 {
			return ErrEnvironmentUsage
		}

		prev, err := d.env.Set(argv[2], argv[3])
		if err != nil {
			return fmt.Errorf("environment: %w", err)
		}

		fmt.Fprintf(d.out, "ENV: %s=%s (was %q)\n", argv[2], argv[3], prev)

		return nil
	default:
		return ErrEnvironmentUsage
	}
}

func echon(_ context.Context, d *Dispatcher, argv []string) error {
	words := make([]string, 0, len(argv)-1)

	var errs []error

	for _, arg := range argv[1:] {
		if name, ok := strings.CutPrefix(arg, "$"); ok && name != "" {
			v, set := d.env.Get(name)
			if !set {
				errs = append(errs, fmt.Errorf("%w: '%s'", ErrVariableNotSet, name))
				continue
			}

			arg = v
		}

		words = append(words, arg)
	}

	fmt.Fprintln(d.out, strings.Join(words, " "))

	return errors.Join(errs...)
}

func sghint(_ context.Context, d *Dispatcher, argv []string) error {
	b, ok := d.builtins[argv[1]]
	if !ok {
		return fmt.Errorf("sghint: %w: %s", ErrUnknownBuiltin, argv[1])
	}

	fmt.Fprintf(d.out, "%s: %s\n", color.Colorize("sghint", color.FgHiBlack), b.Hint)

	return nil
}

func printVersion(_ context.Context, d *Dispatcher, _ []string) error {
	fmt.Fprintf(d.out, "nightshell %s\n", d.version)
	return nil
}

func clearTerminal(_ context.Context, d *Dispatcher, _ []string) error {
	_, err := fmt.Fprint(d.out, clearScreen)
	return err
}
