// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"

	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
	"github.com/matt-FFFFFF/nightshell/internal/signalbroker"
	"golang.org/x/sys/unix"
)

// Wait4Func matches unix.Wait4.
type Wait4Func func(pid int, wstatus *unix.WaitStatus, options int, rusage *unix.Rusage) (int, error)

// Reaper collects exited children and records them in a Table.
type Reaper struct {
	table  *Table
	wait4  Wait4Func
	sigCh  chan os.Signal
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewReaper returns a reaper for table. It does nothing until Start is called.
func NewReaper(table *Table) *Reaper {
	return &Reaper{table: table, wait4: unix.Wait4}
}

// Start subscribes to SIGCHLD and reaps on every notification until Stop.
func (r *Reaper) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.sigCh = signalbroker.New(ctx, syscall.SIGCHLD)

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		// Children may have exited before the subscription was in place.
		r.Reap(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.sigCh:
				r.Reap(ctx)
			}
		}
	}()
}

// Stop disables automatic reaping and waits for the reaper goroutine to exit.
// It is safe to call more than once, and before Start.
func (r *Reaper) Stop() {
	r.once.Do(func() {
		if r.sigCh != nil {
			signalbroker.Stop(r.sigCh)
		}

		if r.cancel != nil {
			r.cancel()
		}

		r.wg.Wait()
	})
}

// Reap drains every currently exited child without blocking and returns how
// many were collected. An interrupted wait is retried; any other failure is
// logged and releases a pending foreground waiter.
func (r *Reaper) Reap(ctx context.Context) int {
	n := 0

	for {
		var ws unix.WaitStatus

		pid, err := r.wait4(-1, &ws, unix.WNOHANG, nil)

		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			return n
		case err != nil:
			ctxlog.Warn(ctx, "wait4 failed", "error", err)
			r.table.failForeground(err)

			return n
		case pid <= 0:
			return n
		}

		n++

		if !r.table.MarkExited(pid, ws) {
			ctxlog.Debug(ctx, "reaped untracked child", "pid", pid)
		}
	}
}
