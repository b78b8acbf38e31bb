// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package lineeditor

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/nightshell/internal/color"
	"github.com/matt-FFFFFF/nightshell/internal/commandregistry"
	"github.com/matt-FFFFFF/nightshell/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRaw struct {
	enabled, restored int
	enableErr         error
	restoreErr        error
}

func (f *fakeRaw) EnableRaw() error {
	if f.enableErr != nil {
		return f.enableErr
	}

	f.enabled++

	return nil
}

func (f *fakeRaw) Restore() error {
	f.restored++
	return f.restoreErr
}

func withColor(t *testing.T, on bool) {
	t.Helper()

	prev := color.Enabled()
	color.SetEnabled(on)
	t.Cleanup(func() { color.SetEnabled(prev) })
}

func newTestEditor(input string, opts ...Option) (*Editor, *bytes.Buffer) {
	var out bytes.Buffer

	reg := commandregistry.New("cd", "cat", "clear", "ls")
	e := New(strings.NewReader(input), &out, reg, &prompt.Template{Format: "> "}, opts...)

	return e, &out
}

func TestReadLine(t *testing.T) {
	withColor(t, false)

	tests := []struct {
		name    string
		input   string
		opts    []Option
		want    string
		wantErr error
	}{
		{name: "simple", input: "ls -la\n", want: "ls -la"},
		{name: "carriage return", input: "ls\r", want: "ls"},
		{name: "insert in the middle", input: "ac\x1b[Db\n", want: "abc"},
		{name: "backspace", input: "abd\x7fc\n", want: "abc"},
		{name: "ctrl-h backspace", input: "abd\bc\n", want: "abc"},
		{name: "backspace at start", input: "\x7f\x7fok\n", want: "ok"},
		{name: "right at end", input: "ab\x1b[C\x1b[Cc\n", want: "abc"},
		{name: "history keys ignored", input: "ab\x1b[A\x1b[B\x1b[Z\n", want: "ab"},
		{name: "non printable ignored", input: "a\x01\x02b\n", want: "ab"},
		{name: "capacity", input: "abcdef\n", opts: []Option{WithCapacity(3)}, want: "abc"},
		{name: "ctrl-d on empty line", input: "\x04", want: "", wantErr: io.EOF},
		{name: "ctrl-d with text", input: "a\x04b\n", want: "ab"},
		{name: "eof", input: "ab", want: "ab", wantErr: io.EOF},
		{name: "eof in escape", input: "ab\x1b[", want: "ab", wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &fakeRaw{}
			e, _ := newTestEditor(tt.input, append(tt.opts, WithRawMode(raw))...)

			got, err := e.ReadLine()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, raw.enabled)
			assert.Equal(t, 1, raw.restored)
		})
	}
}

func TestReadLine_RawModeFailure(t *testing.T) {
	raw := &fakeRaw{enableErr: ErrRawMode}
	e, out := newTestEditor("ls\n", WithRawMode(raw))

	_, err := e.ReadLine()
	require.ErrorIs(t, err, ErrRawMode)
	assert.Zero(t, raw.restored)
	assert.Empty(t, out.String())
}

func TestReadLine_RestoreFailure(t *testing.T) {
	restoreErr := errors.New("restore failed")
	raw := &fakeRaw{restoreErr: restoreErr}
	e, _ := newTestEditor("ls\n", WithRawMode(raw))

	got, err := e.ReadLine()
	require.ErrorIs(t, err, restoreErr)
	assert.Equal(t, "ls", got)
}

func TestReadLine_Redraw(t *testing.T) {
	withColor(t, false)

	e, out := newTestEditor("ab\x1b[D\n")

	_, err := e.ReadLine()
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, clearLine+"> \033[3G"))
	assert.Contains(t, s, clearLine+"> ab\033[5G")
	assert.Contains(t, s, clearLine+"> ab\033[4G")
	assert.True(t, strings.HasSuffix(s, "\n"))
}

func TestReadLine_Completion(t *testing.T) {
	withColor(t, false)

	e, out := newTestEditor("c\t\n", WithMaxSuggestions(2))

	got, err := e.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "c", got)

	s := out.String()
	assert.Contains(t, s, "\ncd\ncat\n"+clearLine+"> c")
	assert.NotContains(t, s, "clear")
}

func TestReadLine_CompletionIgnoresZeroLimit(t *testing.T) {
	withColor(t, false)

	e, out := newTestEditor("c\t\n", WithMaxSuggestions(0))

	_, err := e.ReadLine()
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "\ncd\ncat\nclear\n")
	assert.NotContains(t, s, noSuggestions)
}

func TestReadLine_NoSuggestions(t *testing.T) {
	withColor(t, false)

	e, out := newTestEditor("zz\t\n")

	_, err := e.ReadLine()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\nNo suggestions\n")
}

func TestReadLine_CompletionNeedsWord(t *testing.T) {
	withColor(t, false)

	e, out := newTestEditor("ls \t\n")

	_, err := e.ReadLine()
	require.NoError(t, err)
	assert.NotContains(t, out.String(), noSuggestions)
}

func TestHighlight(t *testing.T) {
	withColor(t, true)

	e, _ := newTestEditor("")

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "empty", text: "", want: ""},
		{
			name: "known command",
			text: "ls  -la",
			want: "\033[32mls\033[0m  \033[36m-la\033[0m",
		},
		{
			name: "unknown command",
			text: " nope x",
			want: " \033[31mnope\033[0m \033[36mx\033[0m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.highlight(tt.text))
		})
	}
}
