// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxTokens is the default cap on segments per line and words per segment.
const MaxTokens = 64

// ErrTooManyTokens is returned when a line or segment exceeds the token cap.
// The accompanying result holds everything parsed before the cap was hit.
var ErrTooManyTokens = errors.New("too many tokens")

// Operator is one of the control characters that join segments.
type Operator byte

const (
	// OpNone marks a text segment.
	OpNone Operator = 0
	// OpAnd runs the next segment only if the previous one succeeded.
	OpAnd Operator = '&'
	// OpOr runs the next segment only if the previous one failed.
	OpOr Operator = '|'
	// OpSeq always runs the next segment.
	OpSeq Operator = ';'
)

// String returns the operator character.
func (o Operator) String() string {
	if o == OpNone {
		return ""
	}

	return string(rune(o))
}

// Segment is either a run of text or a single operator.
type Segment struct {
	Text string
	Op   Operator
}

// IsOperator reports whether the segment is an operator.
func (s Segment) IsOperator() bool {
	return s.Op != OpNone
}

func isOperator(c byte) bool {
	switch Operator(c) {
	case OpAnd, OpOr, OpSeq:
		return true
	default:
		return false
	}
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

// Splitter holds the token cap used by both stages.
type Splitter struct {
	Max int
}

// New returns a Splitter with the given cap, falling back to MaxTokens when max < 1.
func New(maxTokens int) *Splitter {
	if maxTokens < 1 {
		maxTokens = MaxTokens
	}

	return &Splitter{Max: maxTokens}
}

// Segments splits line into text and operator segments. Operator characters
// inside quotes are literal, whitespace is kept verbatim in text segments and
// empty text between two operators is not emitted.
func (s *Splitter) Segments(line string) ([]Segment, error) {
	var (
		out       []Segment
		start     int
		quoteChar byte
	)

	emit := func(seg Segment) error {
		if len(out) >= s.Max {
			return fmt.Errorf("%w: more than %d segments", ErrTooManyTokens, s.Max)
		}

		out = append(out, seg)

		return nil
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case quoteChar != 0:
			if c == quoteChar {
				quoteChar = 0
			}
		case isQuote(c):
			quoteChar = c
		case isOperator(c):
			if i > start {
				if err := emit(Segment{Text: line[start:i]}); err != nil {
					return out, err
				}
			}

			if err := emit(Segment{Op: Operator(c)}); err != nil {
				return out, err
			}

			start = i + 1
		}
	}

	if start < len(line) {
		if err := emit(Segment{Text: line[start:]}); err != nil {
			return out, err
		}
	}

	return out, nil
}

// Words splits a text segment into arguments on unquoted whitespace, removing
// the quote characters. A quote of the other kind inside quotes is literal.
// Empty words (such as "") are dropped.
func (s *Splitter) Words(segment string) ([]string, error) {
	var (
		out       []string
		word      strings.Builder
		quoteChar byte
	)

	flush := func() error {
		if word.Len() == 0 {
			return nil
		}

		if len(out) >= s.Max {
			return fmt.Errorf("%w: more than %d arguments", ErrTooManyTokens, s.Max)
		}

		out = append(out, word.String())
		word.Reset()

		return nil
	}

	for i := 0; i < len(segment); i++ {
		c := segment[i]

		switch {
		case quoteChar != 0 && c == quoteChar:
			quoteChar = 0
		case quoteChar != 0:
			word.WriteByte(c)
		case isQuote(c):
			quoteChar = c
		case unicode.IsSpace(rune(c)):
			if err := flush(); err != nil {
				return out, err
			}
		default:
			word.WriteByte(c)
		}
	}

	if err := flush(); err != nil {
		return out, err
	}

	return out, nil
}

// Segments splits line with the default cap.
func Segments(line string) ([]Segment, error) {
	return New(MaxTokens).Segments(line)
}

// Words splits segment with the default cap.
func Words(segment string) ([]string, error) {
	return New(MaxTokens).Words(segment)
}
