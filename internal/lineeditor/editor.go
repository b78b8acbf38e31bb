// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package lineeditor

import (
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/nightshell/internal/color"
	"github.com/matt-FFFFFF/nightshell/internal/commandregistry"
	"github.com/matt-FFFFFF/nightshell/internal/prompt"
)

// DefaultMaxSuggestions caps the completion list.
const DefaultMaxSuggestions = 5

const (
	keyEOT       = 0x04
	keyBackspace = 0x7f
	keyEscape    = 0x1b

	clearLine = "\033[2K\r"

	noSuggestions = "No suggestions"
)

// Colors used when drawing the line.
type Colors struct {
	Command    []color.Code
	Error      []color.Code
	Argument   []color.Code
	Suggestion []color.Code
}

// DefaultColors returns the stock colour scheme.
func DefaultColors() Colors {
	return Colors{
		Command:    []color.Code{color.FgGreen},
		Error:      []color.Code{color.FgRed},
		Argument:   []color.Code{color.FgCyan},
		Suggestion: []color.Code{color.FgYellow},
	}
}

// Editor reads lines from a raw terminal.
type Editor struct {
	in             io.Reader
	out            io.Writer
	raw            RawMode
	registry       *commandregistry.Registry
	prompt         *prompt.Template
	colors         Colors
	maxSuggestions int
	capacity       int
}

// Option configures an Editor.
type Option func(*Editor)

// WithRawMode sets the terminal switched to raw mode for the duration of each ReadLine.
func WithRawMode(r RawMode) Option {
	return func(e *Editor) {
		e.raw = r
	}
}

// WithColors overrides the highlighting colours.
func WithColors(c Colors) Option {
	return func(e *Editor) {
		e.colors = c
	}
}

// WithMaxSuggestions caps the number of completions listed.
func WithMaxSuggestions(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxSuggestions = n
		}
	}
}

// WithCapacity sets the maximum line length in bytes.
func WithCapacity(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.capacity = n
		}
	}
}

// New creates an Editor reading from in and drawing to out.
func New(in io.Reader, out io.Writer, registry *commandregistry.Registry, tmpl *prompt.Template, opts ...Option) *Editor {
	if tmpl == nil {
		tmpl = prompt.Default()
	}

	if registry == nil {
		registry = commandregistry.New()
	}

	e := &Editor{
		in:             in,
		out:            out,
		registry:       registry,
		prompt:         tmpl,
		colors:         DefaultColors(),
		maxSuggestions: DefaultMaxSuggestions,
		capacity:       DefaultCapacity,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ReadLine draws the prompt and edits a line until enter is pressed.
// Ctrl-D on an empty line and end of input return io.EOF. The terminal mode is
// restored before ReadLine returns, whatever the outcome.
func (e *Editor) ReadLine() (line string, err error) {
	if e.raw != nil {
		if err := e.raw.EnableRaw(); err != nil {
			return "", err
		}

		defer func() {
			if rerr := e.raw.Restore(); rerr != nil && err == nil {
				err = rerr
			}
		}()
	}

	buf := NewEditBuffer(e.capacity)
	e.redraw(buf)

	for {
		c, err := e.readByte()
		if err != nil {
			return buf.String(), err
		}

		switch {
		case c == '\n' || c == '\r':
			e.write("\n")
			return buf.String(), nil
		case c == keyEOT:
			if buf.Len() == 0 {
				e.write("\n")
				return "", io.EOF
			}
		case c == '\t':
			e.complete(buf)
		case c == keyBackspace || c == '\b':
			buf.Backspace()
			e.redraw(buf)
		case c == keyEscape:
			if err := e.escape(buf); err != nil {
				return buf.String(), err
			}

			e.redraw(buf)
		case isPrint(c):
			buf.Insert(c)
			e.redraw(buf)
		}
	}
}

func (e *Editor) readByte() (byte, error) {
	var one [1]byte
	if _, err := io.ReadFull(e.in, one[:]); err != nil {
		return 0, err
	}

	return one[0], nil
}

// escape consumes the two bytes of a CSI cursor sequence.
// Up, down and shift-tab are recognised and ignored.
func (e *Editor) escape(buf *EditBuffer) error {
	first, err := e.readByte()
	if err != nil {
		return err
	}

	second, err := e.readByte()
	if err != nil {
		return err
	}

	if first != '[' {
		return nil
	}

	switch second {
	case 'C':
		buf.Right()
	case 'D':
		buf.Left()
	case 'A', 'B', 'Z':
		// no history
	}

	return nil
}

func (e *Editor) complete(buf *EditBuffer) {
	word := buf.WordBeforeCursor()
	if word == "" {
		return
	}

	var sb strings.Builder

	sb.WriteString("\n")

	matches := e.registry.Complete(word, e.maxSuggestions)
	for _, m := range matches {
		sb.WriteString(color.Colorize(m, e.colors.Suggestion...))
		sb.WriteString("\n")
	}

	if len(matches) == 0 {
		sb.WriteString(color.Colorize(noSuggestions, e.colors.Error...))
		sb.WriteString("\n")
	}

	e.write(sb.String())
	e.redraw(buf)
}

func (e *Editor) redraw(buf *EditBuffer) {
	p := e.prompt.Render()

	var sb strings.Builder

	sb.WriteString(clearLine)
	sb.WriteString(p)
	sb.WriteString(e.highlight(buf.String()))
	fmt.Fprintf(&sb, "\033[%dG", prompt.VisibleLength(p)+buf.Cursor()+1)

	e.write(sb.String())
}

// highlight colours the first word by registry membership and every other word
// as an argument. Whitespace between words is kept as typed.
func (e *Editor) highlight(text string) string {
	var (
		sb    strings.Builder
		first = true
	)

	for i := 0; i < len(text); {
		if isSpace(text[i]) {
			sb.WriteByte(text[i])
			i++

			continue
		}

		j := i
		for j < len(text) && !isSpace(text[j]) {
			j++
		}

		word := text[i:j]
		codes := e.colors.Argument

		if first {
			codes = e.colors.Error
			if e.registry.Contains(word) {
				codes = e.colors.Command
			}

			first = false
		}

		sb.WriteString(color.Colorize(word, codes...))

		i = j
	}

	return sb.String()
}

func (e *Editor) write(s string) {
	_, _ = io.WriteString(e.out, s)
}
