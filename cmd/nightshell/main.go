// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the nightshell command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/nightshell"
	"github.com/matt-FFFFFF/nightshell/internal/config"
	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
	"github.com/matt-FFFFFF/nightshell/internal/shell"
	"github.com/urfave/cli/v3"
)

const (
	configFlag      = "config"
	printConfigFlag = "print-config"
)

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:  "nightshell",
		Usage: "an interactive command shell with job tracking",
		Description: `nightshell reads commands with live highlighting and tab completion,
runs them as child processes and tracks background jobs until they finish.
Commands joined by & run on success, by | on failure and by ; always.
A trailing & runs the last command in the background.`,
		Version:   fmt.Sprintf("%s (commit: %s)", nightshell.Version, nightshell.Commit),
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "path to a YAML configuration file (default: $XDG_CONFIG_HOME/nightshell/config.yaml)",
				TakesFile: true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:  printConfigFlag,
				Usage: "print the effective configuration and exit",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(ctx, cmd.String(configFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if cmd.Bool(printConfigFlag) {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to render configuration: %s", err.Error()), 1)
		}

		_, err = cmd.Root().Writer.Write(out)

		return err
	}

	if cmd.Args().Present() {
		ctxlog.Debug(ctx, "ignoring positional arguments", "args", cmd.Args().Slice())
	}

	s, err := shell.New(ctx, cfg, shell.WithVersion(cmd.Root().Version))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if code := s.Run(ctx); code != shell.ExitSuccess {
		return cli.Exit("", code)
	}

	return nil
}

func main() {
	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
