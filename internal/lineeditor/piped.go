// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package lineeditor

import (
	"errors"
	"io"

	"github.com/peterh/liner"
)

// Piped reads lines from standard input when it is not a terminal.
// No prompt is drawn and nothing is echoed. Input is read one byte at a time
// so bytes after the newline stay in the descriptor for child processes.
type Piped struct {
	in       io.Reader
	capacity int
}

// NewPiped reads lines from in, keeping at most capacity bytes per line.
// A capacity below 1 means DefaultCapacity.
func NewPiped(in io.Reader, capacity int) *Piped {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &Piped{in: in, capacity: capacity}
}

// Supported reports whether the terminal can take the editor's escape
// sequences. Dumb terminals get a Piped reader instead.
func Supported() bool {
	return liner.TerminalSupported()
}

// ReadLine returns the next line without its terminator, or io.EOF.
// A final line without a newline is returned before io.EOF.
// Bytes beyond the capacity are discarded up to the newline.
func (p *Piped) ReadLine() (string, error) {
	line := make([]byte, 0, 64)

	var one [1]byte

	for {
		_, err := io.ReadFull(p.in, one[:])

		switch {
		case errors.Is(err, io.EOF) && len(line) > 0:
			return trimCR(line), nil
		case err != nil:
			return "", err
		}

		if one[0] == '\n' {
			return trimCR(line), nil
		}

		if len(line) < p.capacity {
			line = append(line, one[0])
		}
	}
}

func trimCR(line []byte) string {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	return string(line)
}
