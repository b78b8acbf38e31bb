// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"slices"

	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
)

// Handlers receive routed signals. A nil handler drops the signal.
type Handlers struct {
	Interrupt func()
	Terminate func(sig os.Signal)
}

// Watch routes signals from sigCh until ctx is done or sigCh is closed.
// An interrupt never terminates the shell itself.
func Watch(ctx context.Context, sigCh <-chan os.Signal, h Handlers) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			route(ctx, sig, h)
		}
	}
}

func route(ctx context.Context, sig os.Signal, h Handlers) {
	switch {
	case slices.Contains(InterruptSignals, sig) || sig == os.Interrupt:
		ctxlog.Debug(ctx, "watchdog", "detail", "interrupt received", "signal", sig.String())

		if h.Interrupt != nil {
			h.Interrupt()
		}
	case slices.Contains(TerminateSignals, sig):
		ctxlog.Info(ctx, "watchdog", "detail", "termination requested", "signal", sig.String())

		if h.Terminate != nil {
			h.Terminate(sig)
		}
	default:
		ctxlog.Debug(ctx, "watchdog", "detail", "ignoring signal", "signal", sig.String())
	}
}
