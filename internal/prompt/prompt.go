// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package prompt

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/matt-FFFFFF/nightshell/internal/color"
)

// DefaultFormat is used when a Template has no format.
const DefaultFormat = "[%u@%w]%s "

const unknown = "?"

var (
	lookupUser = user.Current
	getwd      = os.Getwd
	getuid     = os.Getuid
)

// Template is read-only after configuration, apart from the values it caches.
type Template struct {
	Format      string
	UserColor   []color.Code
	DirColor    []color.Code
	SymbolColor []color.Code
	// Symbol overrides the automatic "#"/"$" choice when non-empty.
	Symbol string
	// DynamicDir re-reads the working directory on every render. When false the
	// first directory seen is reused.
	DynamicDir bool

	once      sync.Once
	username  string
	staticDir string
}

// Default returns the stock prompt: magenta user, cyan directory, green symbol.
func Default() *Template {
	return &Template{
		Format:      DefaultFormat,
		UserColor:   []color.Code{color.FgMagenta},
		DirColor:    []color.Code{color.FgCyan},
		SymbolColor: []color.Code{color.FgGreen},
		DynamicDir:  true,
	}
}

func (t *Template) user() string {
	t.once.Do(func() {
		t.username = unknown

		if u, err := lookupUser(); err == nil && u.Username != "" {
			t.username = u.Username
		}
	})

	return t.username
}

func (t *Template) dir() string {
	if !t.DynamicDir && t.staticDir != "" {
		return t.staticDir
	}

	wd, err := getwd()
	if err != nil {
		wd = unknown
	}

	if !t.DynamicDir {
		t.staticDir = wd
	}

	return wd
}

func (t *Template) symbol() string {
	if t.Symbol != "" {
		return t.Symbol
	}

	if getuid() == 0 {
		return "#"
	}

	return "$"
}

// Render expands the format into a printable prompt.
func (t *Template) Render() string {
	format := t.Format
	if format == "" {
		format = DefaultFormat
	}

	var sb strings.Builder

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			sb.WriteByte(c)
			continue
		}

		var (
			value string
			codes []color.Code
		)

		switch format[i+1] {
		case 'u':
			value, codes = t.user(), t.UserColor
		case 'd':
			value, codes = filepath.Base(t.dir()), t.DirColor
		case 'w':
			value, codes = t.dir(), t.DirColor
		case 's':
			value, codes = t.symbol(), t.SymbolColor
		case '%':
			value = "%"
		default:
			// unknown placeholder, keep the percent and let the next byte print itself
			sb.WriteByte('%')
			continue
		}

		i++

		sb.WriteString(color.Colorize(value, codes...))
	}

	return sb.String()
}

// VisibleLength returns the number of terminal columns s occupies, ignoring
// escape sequences.
func VisibleLength(s string) int {
	return ansi.StringWidth(s)
}
