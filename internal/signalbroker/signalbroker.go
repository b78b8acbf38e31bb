// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker subscribes to OS signals and routes them to the shell.
// By default it listens for the interrupt and termination signals; the job
// reaper subscribes separately to SIGCHLD.
//
// Handlers run on the watcher goroutine, never inside a signal handler, but
// they may run while the main loop is blocked reading the terminal or waiting
// for a foreground job, so they must only touch state that is safe to share.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
)

// InterruptSignals are delivered to Handlers.Interrupt.
var InterruptSignals = []os.Signal{
	syscall.SIGINT,
}

// TerminateSignals are delivered to Handlers.Terminate.
var TerminateSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGQUIT,
	syscall.SIGHUP,
}

// New creates a buffered channel subscribed to sigs, or to the interrupt and
// termination signals when sigs is empty.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = append(append([]os.Signal{}, InterruptSignals...), TerminateSignals...)
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes ch. Signals already queued on ch are left in place.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
