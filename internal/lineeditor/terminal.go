// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package lineeditor

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrRawMode is returned when the terminal mode cannot be changed.
var ErrRawMode = errors.New("could not change terminal mode")

// RawMode switches a terminal in and out of unbuffered, unechoed input.
type RawMode interface {
	EnableRaw() error
	Restore() error
}

// Terminal controls the mode of the terminal behind a file descriptor.
// Echo and canonical input are turned off while signal generation stays on,
// so the interrupt key still reaches the shell as a signal.
// It is safe to call Restore from any goroutine, any number of times.
type Terminal struct {
	fd    int
	mu    sync.Mutex
	saved *term.State
	raw   bool
}

// NewTerminal returns a Terminal for f.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{fd: int(f.Fd())}
}

// IsTerminal reports whether the descriptor refers to a terminal.
func (t *Terminal) IsTerminal() bool {
	return term.IsTerminal(t.fd)
}

// IsRaw reports whether raw mode is currently enabled.
func (t *Terminal) IsRaw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.raw
}

// EnableRaw captures the current mode and switches to raw input.
func (t *Terminal) EnableRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.raw {
		return nil
	}

	state, err := term.GetState(t.fd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRawMode, err)
	}

	tio, err := unix.IoctlGetTermios(t.fd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRawMode, err)
	}

	tio.Lflag &^= unix.ECHO | unix.ICANON
	tio.Cc[unix.VMIN] = 1
	tio.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(t.fd, ioctlWriteTermios, tio); err != nil {
		return fmt.Errorf("%w: %w", ErrRawMode, err)
	}

	t.saved = state
	t.raw = true

	return nil
}

// Restore puts back the mode captured by EnableRaw. It does nothing when raw
// mode is not enabled.
func (t *Terminal) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.raw {
		return nil
	}

	t.raw = false

	if err := term.Restore(t.fd, t.saved); err != nil {
		return fmt.Errorf("%w: %w", ErrRawMode, err)
	}

	return nil
}
