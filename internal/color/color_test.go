// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, isColorEnabled(), "Expected color output to be disabled")

	t.Setenv("FORCE_COLOR", "1")
	assert.False(t, isColorEnabled(), "Expected color output to be disabled as NO_COLOR is still set")

	t.Setenv("NO_COLOR", "")
	assert.True(t, isColorEnabled(), "Expected color output to be enabled as FORCE_COLOR is set and NO_COLOR is unset")
}

func TestColorize(t *testing.T) {
	prev := Enabled()
	t.Cleanup(func() { SetEnabled(prev) })

	SetEnabled(true)
	assert.Equal(t, "\033[32mls\033[0m", Colorize("ls", FgGreen))
	assert.Equal(t, "\033[1;34mx\033[0m", Colorize("x", Bold, FgBlue))
	assert.Equal(t, "plain", Colorize("plain"))
	assert.Equal(t, "\033[35m", ControlString(FgMagenta))

	SetEnabled(false)
	assert.Equal(t, "ls", Colorize("ls", FgGreen))
	assert.Empty(t, ControlString(FgMagenta))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Code
		wantErr bool
	}{
		{name: "lower", in: "red", want: FgRed},
		{name: "upper", in: "MAGENTA", want: FgMagenta},
		{name: "padded", in: " bold ", want: Bold},
		{name: "gray alias", in: "GRAY", want: FgHiBlack},
		{name: "unknown", in: "octarine", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownColor)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAll(t *testing.T) {
	codes, err := ParseAll([]string{"blue", "bold"})
	require.NoError(t, err)
	assert.Equal(t, []Code{FgBlue, Bold}, codes)

	_, err = ParseAll([]string{"blue", "nope"})
	assert.ErrorIs(t, err, ErrUnknownColor)
}
