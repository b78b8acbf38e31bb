// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package lineeditor

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPiped_ReadLine(t *testing.T) {
	p := NewPiped(strings.NewReader("echo hi\nls -la\r\n\nlast"), 0)

	for _, want := range []string{"echo hi", "ls -la", "", "last"} {
		line, err := p.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}

	_, err := p.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestPiped_LeavesRestOfInputUnread(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer r.Close()

	_, err = w.WriteString("cat\nhello\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	line, err := NewPiped(r, 0).ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "cat", line)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(rest), "a child sharing stdin must see the next line")
}

func TestPiped_TruncatesLongLines(t *testing.T) {
	p := NewPiped(strings.NewReader(strings.Repeat("x", 20)+"\nnext\n"), 8)

	line, err := p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "xxxxxxxx", line)

	line, err = p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "next", line)
}
