// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package lineeditor

// DefaultCapacity is the number of bytes a line may hold.
const DefaultCapacity = 1023

// EditBuffer holds the line being edited and the cursor position.
// 0 <= Cursor() <= Len() <= Cap() holds after every method returns.
type EditBuffer struct {
	text     []byte
	cursor   int
	capacity int
}

// NewEditBuffer creates an empty buffer. A capacity below one uses DefaultCapacity.
func NewEditBuffer(capacity int) *EditBuffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &EditBuffer{
		text:     make([]byte, 0, capacity),
		capacity: capacity,
	}
}

// Insert places c at the cursor and advances it.
// It returns false, leaving the buffer untouched, when the buffer is full.
func (b *EditBuffer) Insert(c byte) bool {
	if len(b.text) >= b.capacity {
		return false
	}

	b.text = append(b.text, 0)
	copy(b.text[b.cursor+1:], b.text[b.cursor:])
	b.text[b.cursor] = c
	b.cursor++

	return true
}

// Backspace removes the byte left of the cursor.
func (b *EditBuffer) Backspace() bool {
	if b.cursor == 0 {
		return false
	}

	copy(b.text[b.cursor-1:], b.text[b.cursor:])
	b.text = b.text[:len(b.text)-1]
	b.cursor--

	return true
}

// Left moves the cursor one position towards the start.
func (b *EditBuffer) Left() bool {
	if b.cursor == 0 {
		return false
	}

	b.cursor--

	return true
}

// Right moves the cursor one position towards the end.
func (b *EditBuffer) Right() bool {
	if b.cursor >= len(b.text) {
		return false
	}

	b.cursor++

	return true
}

// WordBeforeCursor returns the text between the previous whitespace (or the
// start of the line) and the cursor.
func (b *EditBuffer) WordBeforeCursor() string {
	start := b.cursor
	for start > 0 && !isSpace(b.text[start-1]) {
		start--
	}

	return string(b.text[start:b.cursor])
}

// Reset empties the buffer.
func (b *EditBuffer) Reset() {
	b.text = b.text[:0]
	b.cursor = 0
}

func (b *EditBuffer) String() string { return string(b.text) }

// Len is the number of bytes in the buffer.
func (b *EditBuffer) Len() int { return len(b.text) }

// Cursor is the offset of the cursor.
func (b *EditBuffer) Cursor() int { return b.cursor }

// Cap is the maximum number of bytes.
func (b *EditBuffer) Cap() int { return b.capacity }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}

	return false
}

func isPrint(c byte) bool {
	return c >= 0x20 && c < 0x7f
}
