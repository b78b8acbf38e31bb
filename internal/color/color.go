// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

const (
	sbPadding = 16 // padding for the strings.Builder
)

// ErrUnknownColor is returned when a colour name cannot be mapped to a Code.
var ErrUnknownColor = errors.New("unknown color name")

// Code represents an ANSI control code for text formatting.
type Code int

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"
	// ResetSequence is the raw escape sequence that resets all attributes.
	ResetSequence = "\033[0m"
	prefix        = "\033["
	suffix        = "m"
)

// Control codes for text formatting.
const (
	Reset Code = iota
	Bold
	Faint
	Italic
	Underline
)

// Foreground text colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Foreground Hi-Intensity text colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

// names maps configuration names to codes. GRAY matches the hint colour used by sghint.
var names = map[string]Code{
	"reset":     Reset,
	"bold":      Bold,
	"faint":     Faint,
	"italic":    Italic,
	"underline": Underline,
	"black":     FgBlack,
	"red":       FgRed,
	"green":     FgGreen,
	"yellow":    FgYellow,
	"blue":      FgBlue,
	"magenta":   FgMagenta,
	"cyan":      FgCyan,
	"white":     FgWhite,
	"gray":      FgHiBlack,
	"grey":      FgHiBlack,
	"hired":     FgHiRed,
	"higreen":   FgHiGreen,
	"hiyellow":  FgHiYellow,
	"hiblue":    FgHiBlue,
	"himagenta": FgHiMagenta,
	"hicyan":    FgHiCyan,
	"hiwhite":   FgHiWhite,
}

var enabled atomic.Bool

func init() {
	enabled.Store(isColorEnabled())
}

// Parse converts a case-insensitive colour name such as "red" or "bold" into a Code.
func Parse(name string) (Code, error) {
	c, ok := names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Reset, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}

	return c, nil
}

// ParseAll converts a list of colour names, stopping at the first unknown name.
func ParseAll(list []string) ([]Code, error) {
	codes := make([]Code, 0, len(list))

	for _, n := range list {
		c, err := Parse(n)
		if err != nil {
			return nil, err
		}

		codes = append(codes, c)
	}

	return codes, nil
}

// ControlString generates the escape sequence for the given codes.
// It returns an empty string when color output is disabled or no codes are given.
func ControlString(c ...Code) string {
	if !enabled.Load() || len(c) == 0 {
		return ""
	}

	sb := strings.Builder{}
	sb.Grow(len(prefix) + len(suffix) + sbPadding)
	writeCodes(&sb, c)

	return sb.String()
}

// Colorize returns a string with ANSI color codes applied.
// It appends the reset code at the end of the string to reset the color.
func Colorize(str string, colorCodes ...Code) string {
	if !enabled.Load() || len(colorCodes) == 0 {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + len(ResetSequence) + sbPadding)
	writeCodes(&sb, colorCodes)
	sb.WriteString(str)
	sb.WriteString(ResetSequence)

	return sb.String()
}

func writeCodes(sb *strings.Builder, codes []Code) {
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)
}

// Enabled indicates whether color output is enabled.
//
// It is set to true if either the NO_COLOR environment variable is not set,
// and the FORCE_COLOR environment variable is set, or if the output is a terminal.
// Terminal detection is done using the golang.org/x/term package.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled overrides the detected colour support.
func SetEnabled(v bool) {
	enabled.Store(v)
}

func isColorEnabled() bool {
	if nc := os.Getenv(NoColor); nc != "" {
		return false
	}

	if fc := os.Getenv(ForceColor); fc != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
